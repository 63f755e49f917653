// Package embedcache persists chunk embeddings in SQLite so repeated questions
// against the same transcript skip the embedding service.
//
// Rows are keyed by (model, sha256(text)). Vectors are stored as
// little-endian float32 blobs. Changing the embedding model therefore never
// returns stale vectors; the old rows are simply unused.
package embedcache
