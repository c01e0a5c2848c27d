// Package textutil provides text processing utilities for filenames and
// display titles.
//
// The primary use cases are:
//   - Sanitizing episode titles for safe filesystem use
//   - Building artifact slugs for published audio files
//   - Deriving display titles from topic lists
package textutil
