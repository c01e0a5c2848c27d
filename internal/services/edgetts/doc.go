// Package edgetts wraps the edge-tts command line tool, which synthesizes
// speech through the Microsoft Edge TTS endpoint. Podforge shells out per
// segment; the wrapper owns argument construction and error surfacing so
// callers only deal with text, voice, and destination path.
package edgetts
