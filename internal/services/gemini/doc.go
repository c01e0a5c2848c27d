// Package gemini provides a Google Gemini client for script drafting.
//
// It is the alternative to the OpenRouter client when script.provider is
// set to "gemini". Requests ask for application/json output and the
// response text is handed to the script parser unmodified.
//
// Transient API failures and empty responses retry with exponential
// backoff; safety blocks are permanent and surface immediately.
package gemini
