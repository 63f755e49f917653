// Package main hosts the ytqa CLI entrypoint and command graph.
//
// The Cobra command tree exposes the interactive shell, the browser UI, and
// one-shot transcribe/ask commands over the same pipeline, plus session
// housekeeping, readiness checks, and configuration scaffolding. Configuration
// resolution and logger setup live in commandContext so subcommands only deal
// with presentation.
package main
