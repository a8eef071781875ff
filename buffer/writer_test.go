package buffer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func TestWriterASCII(t *testing.T) {
	w := NewWriter()
	w.WriteByte('a')
	w.WriteByte('b')
	w.Write([]byte("cd"))
	assert.Equal(t, "abcd", w.Flush())

	// flushing again without new writes returns the same owned string
	assert.Equal(t, "abcd", w.Flush())
	assert.Equal(t, 4, w.Len())
}

func TestWriterRuneWithoutCodec(t *testing.T) {
	w := NewWriter()
	w.WriteString("héllo")
	assert.Equal(t, "héllo", w.Flush())
}

func TestWriterCharmapDecode(t *testing.T) {
	w := NewWriter()
	w.SetEncoding(charmap.ISO8859_1)
	w.Write([]byte{'a', 0xe9, 'b'})
	assert.Equal(t, "aéb", w.Flush())
}

func TestWriterCharmapRuneRoundTrip(t *testing.T) {
	w := NewWriter()
	w.SetEncoding(charmap.ISO8859_1)
	w.WriteByte('x')
	w.WriteRune('é') // re-encoded to 0xE9, decoded back on flush
	assert.Equal(t, "xé", w.Flush())
}

func TestWriterUnsupportedRune(t *testing.T) {
	w := NewWriter()
	w.SetEncoding(charmap.ISO8859_1)
	w.WriteRune('漢')
	s := w.Flush()
	assert.NotContains(t, s, "漢", "the codec cannot represent the rune")
	assert.NotEmpty(t, s, "a substitute must be emitted, not silence")
}

func TestWriterUTF8Codec(t *testing.T) {
	w := NewWriter()
	w.SetEncoding(unicode.UTF8)
	w.WriteString("héllo")
	assert.Equal(t, "héllo", w.Flush())
}

func TestWriterOverflowFlushes(t *testing.T) {
	w := NewWriter()
	chunk := strings.Repeat("x", 1000)
	for i := 0; i < ScratchSize/1000+2; i++ {
		w.WriteString(chunk)
	}
	s := w.Flush()
	assert.Equal(t, (ScratchSize/1000+2)*1000, len(s))
	assert.Equal(t, strings.Repeat("x", len(s)), s)
}

func TestWriterClear(t *testing.T) {
	w := NewWriter()
	w.WriteString("abc")
	w.Flush()
	w.WriteString("def")
	w.Clear()
	assert.Equal(t, "", w.Flush())
	assert.Equal(t, 0, w.Len())

	w.WriteString("ghi")
	assert.Equal(t, "ghi", w.Flush())
}

func TestWriterEncodingChangeDoesNotRewrite(t *testing.T) {
	w := NewWriter()
	w.Write([]byte{'a', 0xe9})
	w.SetEncoding(charmap.ISO8859_1)
	w.Write([]byte{0xe9})
	s := w.Flush()
	// the first span was still pending, so it decodes with the new codec;
	// only already-flushed text is immune to SetEncoding
	assert.Contains(t, s, "é")
}
