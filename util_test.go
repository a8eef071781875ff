package yahap

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestToLower(t *testing.T) {
	test.String(t, string(ToLower([]byte("AbC123-xyz"))), "abc123-xyz")
	test.String(t, string(ToLower([]byte(""))), "")
}

func TestCopy(t *testing.T) {
	src := []byte("abc")
	dst := Copy(src)
	dst[0] = 'x'
	test.String(t, string(src), "abc", "the source must be untouched")
}

func TestIsWhitespace(t *testing.T) {
	for _, c := range []byte{' ', '\t', '\n', '\r'} {
		test.That(t, IsWhitespace(c), "whitespace byte", c)
	}
	for _, c := range []byte{'a', '<', 0, '\f'} {
		test.That(t, !IsWhitespace(c), "non-whitespace byte", c)
	}
}

func TestEqualFold(t *testing.T) {
	test.That(t, equalFold([]byte("SCRIPT"), "script"), "upper-case must match")
	test.That(t, equalFold([]byte("ScRiPt"), "script"), "mixed case must match")
	test.That(t, !equalFold([]byte("scripts"), "script"), "length mismatch must fail")
	test.That(t, !equalFold([]byte("scripx"), "script"), "content mismatch must fail")
}
