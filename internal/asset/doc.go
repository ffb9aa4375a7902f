// Package asset writes the media track files that make up a reel.
//
// The picture track is a simple binary container: a fixed little-endian
// header, appended frame payloads, and a trailing index written at finalize
// time (the header is then patched with the frame count and index offset).
// The sound track is a standard WAV file with 24-bit PCM samples whose size
// fields are patched at finalize. Readers for both are provided for
// inspection and tests.
package asset
