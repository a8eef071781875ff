// Package buffer contains the bounded string assembler used by the tokenizer
// to materialize decoded text without allocating per character.
package buffer

import (
	"unicode/utf8"

	enc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// ScratchSize is the capacity of the scratch byte buffer. Appends that would
// pass it trigger a flush through the codec first, so the write cursor can
// never run past capacity.
const ScratchSize = 1 << 16

// Writer accumulates raw bytes in a fixed scratch buffer and decodes them
// into an owned string on flush. Bytes below 0x80 take the fast path; higher
// code points are re-encoded into the configured charset so that the flush
// decode round-trips. A Writer is reused across tokens, cleared rather than
// reallocated.
type Writer struct {
	text    []byte // finalized decoded text
	scratch []byte
	pos     int

	decoder *enc.Decoder
	encoder *enc.Encoder
}

// NewWriter returns an empty Writer with no codec configured, decoding the
// scratch buffer as raw UTF-8/ASCII.
func NewWriter() *Writer {
	return &Writer{
		text:    make([]byte, 0, 64),
		scratch: make([]byte, ScratchSize),
	}
}

// SetEncoding sets the codec used by subsequent appends and flushes. It does
// not affect already-flushed text. unicode.UTF8 and nil both select the raw
// fast path. Undecodable input and unencodable runes are substituted, never
// reported: the caller is a lenient tokenizer with no error channel.
func (w *Writer) SetEncoding(e enc.Encoding) {
	w.flush()
	if e == nil || e == unicode.UTF8 {
		w.decoder = nil
		w.encoder = nil
		return
	}
	w.decoder = e.NewDecoder()
	w.encoder = enc.ReplaceUnsupported(e.NewEncoder())
}

// WriteByte appends a single byte of source data to the scratch buffer.
func (w *Writer) WriteByte(c byte) error {
	if w.pos == len(w.scratch) {
		w.flush()
	}
	w.scratch[w.pos] = c
	w.pos++
	return nil
}

// WriteRune appends a decoded character, for instance one produced by entity
// resolution. ASCII is stored directly; anything higher is encoded with the
// configured codec so it survives the flush decode. A rune the codec cannot
// represent becomes the codec's substitute character.
func (w *Writer) WriteRune(r rune) {
	if r < utf8.RuneSelf {
		w.WriteByte(byte(r))
		return
	}
	if w.pos+utf8.UTFMax > len(w.scratch) {
		w.flush()
	}
	if w.encoder == nil {
		w.pos += utf8.EncodeRune(w.scratch[w.pos:], r)
		return
	}
	var tmp [utf8.UTFMax]byte
	b, err := w.encoder.Bytes(tmp[:utf8.EncodeRune(tmp[:], r)])
	if err != nil {
		b = []byte{'?'}
	}
	if w.pos+len(b) > len(w.scratch) {
		w.flush()
	}
	w.pos += copy(w.scratch[w.pos:], b)
}

// WriteString appends decoded characters rune by rune.
func (w *Writer) WriteString(s string) {
	for _, r := range s {
		w.WriteRune(r)
	}
}

// Write appends raw source bytes, flushing whenever the scratch buffer runs
// full. It implements io.Writer and never fails.
func (w *Writer) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		if w.pos == len(w.scratch) {
			w.flush()
		}
		m := copy(w.scratch[w.pos:], p)
		w.pos += m
		p = p[m:]
	}
	return n, nil
}

func (w *Writer) flush() {
	if w.pos == 0 {
		return
	}
	if w.decoder == nil {
		w.text = append(w.text, w.scratch[:w.pos]...)
	} else if b, err := w.decoder.Bytes(w.scratch[:w.pos]); err == nil {
		w.text = append(w.text, b...)
	} else {
		// decoders substitute bad input instead of failing; if one does
		// fail keep the raw bytes rather than dropping text
		w.text = append(w.text, w.scratch[:w.pos]...)
	}
	w.pos = 0
}

// Flush decodes any pending scratch bytes and returns the owned string built
// so far.
func (w *Writer) Flush() string {
	w.flush()
	return string(w.text)
}

// Len returns the number of finalized bytes plus pending scratch bytes.
func (w *Writer) Len() int {
	return len(w.text) + w.pos
}

// Clear resets the owned string and the scratch cursor for reuse.
func (w *Writer) Clear() {
	w.text = w.text[:0]
	w.pos = 0
}
