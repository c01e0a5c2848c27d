// Package llm provides an OpenRouter chat client for script drafting.
//
// The generation pipeline uses it to turn an episode's topic list into a
// structured dialogue script, and the doctor command uses HealthCheck to
// verify the API key and model before a run.
//
// # Responses
//
// Requests ask for JSON output via response_format. Models still wrap
// payloads in code fences or prose, so DecodeLLMJSON strips fences and
// extracts the first JSON object/array before giving up. The response
// decoder also tolerates the streaming schema (delta), legacy text
// completions, and tool-call arguments, since OpenRouter fronts many
// providers with inconsistent shapes.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteJSON: send system/user prompts, receive JSON response.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors and network timeouts with
// exponential backoff (base 1s, max 10s, up to 5 attempts by default).
// Context cancellation aborts retries immediately.
package llm
