// Package audio assembles per-segment clips into one publishable episode.
//
// Clips are concatenated strictly in input order with a fixed silence gap
// between adjacent pairs and exported as constant-bitrate MP3. Each clip is
// first normalized to a common PCM format so the concat demuxer never sees a
// stream parameter change mid-stitch. When ffmpeg is unavailable the
// assembler degrades to copying the first clip verbatim; the degradation is
// explicit in the result, never a silent partial merge.
package audio
