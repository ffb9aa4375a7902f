// Package frameinfo persists per-reel frame metadata in SQLite.
//
// Every video write records (frame, eye) -> (offset, size, hash) here.
// Fake-writes read the store to recover the byte size of a slot written in a
// previous pass, and repeat-writes use it to locate the bytes of the
// preceding frame. Because the database survives the process, a re-encode
// run that skips unchanged frames can fake-write against metadata flushed by
// an earlier build.
package frameinfo
