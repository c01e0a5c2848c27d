// Package scriptgen turns an episode request into a spoken-word script.
//
// A Provider produces a Script document: either structured segments with
// speaker roles, or a flat content body that resolves to a single narrator
// segment. Three providers exist, selected by script.provider:
//
//   - llm: OpenAI-compatible chat completions (OpenRouter)
//   - gemini: Google Gemini
//   - file: reads the oldest pending document from script.inbox_dir,
//     marking it consumed afterwards (development and testing)
//
// Model output is requested as JSON but never trusted to be JSON:
// completions that fail to decode become flat-content documents rather
// than hard failures. Documents with no usable speech are script-source
// errors.
package scriptgen
