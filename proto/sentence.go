package proto

import (
	"errors"
	"io"
)

// ErrEmptySentence is returned when encoding a sentence with no words.
// A zero-word sentence is never sent; decoding one is a protocol level
// keepalive and is reported as an empty (nil) Sentence instead.
var ErrEmptySentence = errors.New("proto: cannot encode empty sentence")

// Sentence is one complete protocol message: the ordered words of a command
// or a response, excluding the zero-length terminator word.
type Sentence [][]byte

// AppendSentence appends the wire encoding of s to dst: every word followed
// by the zero-length terminator word.
func AppendSentence(dst []byte, s Sentence) ([]byte, error) {
	if len(s) == 0 {
		return dst, ErrEmptySentence
	}
	var err error
	for _, w := range s {
		if dst, err = AppendWord(dst, w); err != nil {
			return dst, err
		}
	}
	return AppendLength(dst, 0), nil
}

// DecodeSentence decodes one sentence from the start of buf. The words of
// the returned Sentence are views into buf. n is the total number of bytes
// consumed including the terminator.
//
// A lone terminator decodes into an empty Sentence with no error; callers
// should treat it as a keepalive and ignore it.
func DecodeSentence(buf []byte) (s Sentence, n int, err error) {
	pos := 0
	for {
		w, wn, err := DecodeWord(buf[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += wn
		if len(w) == 0 {
			return s, pos, nil
		}
		s = append(s, w)
	}
}

const defaultBufferSize = 4096

// Reader decodes sentences from a byte stream. It accumulates bytes in an
// internal buffer and retries buffer decoding until a full sentence is
// available, so ErrIncomplete never escapes to the caller.
//
// The words of a returned Sentence alias the internal buffer and are only
// valid until the next call to ReadSentence. Callers that hand words to
// other goroutines must copy them first.
type Reader struct {
	r     io.Reader
	buf   []byte
	start int
	end   int
}

// NewReader returns a Reader decoding sentences from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, buf: make([]byte, defaultBufferSize)}
}

// ReadSentence blocks until one full sentence has been read and decoded.
// It returns the underlying reader's error verbatim on transport failure;
// io.EOF in the middle of a sentence is reported as io.ErrUnexpectedEOF.
func (rd *Reader) ReadSentence() (Sentence, error) {
	for {
		s, n, err := DecodeSentence(rd.buf[rd.start:rd.end])
		if err == nil {
			rd.start += n
			return s, nil
		}
		if !errors.Is(err, ErrIncomplete) {
			return nil, err
		}

		// Make room, then pull more bytes from the stream.
		if rd.start > 0 {
			copy(rd.buf, rd.buf[rd.start:rd.end])
			rd.end -= rd.start
			rd.start = 0
		}
		if rd.end == len(rd.buf) {
			rd.buf = append(rd.buf, make([]byte, len(rd.buf))...)
		}

		n, rerr := rd.r.Read(rd.buf[rd.end:])
		rd.end += n
		if rerr != nil && n == 0 {
			if rerr == io.EOF && rd.end > rd.start {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, rerr
		}
	}
}
