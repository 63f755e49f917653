// Package llm provides an OpenAI-compatible chat completion client for the
// hosted model that answers questions (Groq by default).
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send system/user prompts, receive the reply verbatim.
// Client.HealthCheck: verify API key and model availability.
//
// # Errors
//
// A missing API key and HTTP 401/403 responses are services.ErrAuthentication.
// Every other failure, including an empty completion, is
// services.ErrAnswerGeneration.
//
// # Retry Behaviour
//
// One attempt is made by default. With WithRetryMaxAttempts the client
// retries HTTP 408/429/5xx errors, empty completions, and network timeouts
// with exponential backoff (base 1s, max 10s). Context cancellation aborts
// retries immediately.
package llm
