// Package retrieval ranks transcript chunks against a question.
//
// Chunks and questions are embedded through an Embedder and compared with
// exact cosine similarity. There is no approximate index: transcripts are
// small, and a full scan keeps results deterministic. Equal scores keep the
// original chunk order.
package retrieval
