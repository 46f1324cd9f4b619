// Package openai implements the ai.Embedder interface over
// OpenAI-compatible embedding APIs via langchaingo. Transient API
// failures are retried with exponential backoff inside this adapter;
// callers see only the final outcome.
package openai
