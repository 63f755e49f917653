// Package services defines shared utilities consumed by the pipeline stages and
// their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, stage names, and correlation
//     identifiers for logging.
//   - The error taxonomy (download, model load, transcription, not found,
//     corrupt data, embedding, authentication, answer generation) plus the
//     Wrap helper and Kind/Describe for rendering failures on user surfaces.
//
// Use these helpers when wiring new stage logic so failures stay classifiable
// no matter which surface (shell, web, one-shot command) triggered them.
package services
