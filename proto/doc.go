// Package proto implements the RouterOS API wire format.
//
// The API exchanges sentences, each sentence being a sequence of words
// terminated by a zero-length word. A word is a raw byte string prefixed
// with a variable-width length header (one to five bytes, depending on the
// word size).
//
// The package provides two decoding modes:
//
//   - buffer based (DecodeWord, DecodeSentence): zero-copy views into the
//     input buffer, returning ErrIncomplete when more bytes are needed.
//
//   - stream based (Reader): wraps an io.Reader, buffers internally and
//     retries on incomplete frames so callers only ever see complete
//     sentences or hard errors.
package proto
