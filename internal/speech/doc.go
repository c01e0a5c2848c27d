// Package speech turns script segments into audio clips. The synthesizer is
// constructed once per daemon against the configured engine and invoked once
// per segment; each call writes one clip to a caller-designated scratch path.
package speech
