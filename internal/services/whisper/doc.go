// Package whisper turns an audio file into a timestamped transcript with a
// local Whisper model.
//
// Two backends are supported:
//   - faster-whisper: an embedded Python helper streams one JSON object per
//     line (an info record, then one record per segment)
//   - whisperx: the `uvx whisperx` CLI writes a JSON result file
//
// Both map failures onto the services taxonomy: a model that cannot be
// loaded is ErrModelLoad, anything else is ErrTranscription.
package whisper
