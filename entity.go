package yahap

import (
	"unicode/utf8"

	"golang.org/x/net/html"
)

// maxEntityLength bounds the scan for an entity name; the longest named HTML
// references are under 32 bytes.
const maxEntityLength = 32

// miniEntities is the restricted subset resolved in mini mode: the handful of
// references that dominate real-world markup.
var miniEntities = map[string]rune{
	"nbsp": '\u00a0',
	"amp":  '&',
	"lt":   '<',
	"gt":   '>',
	"quot": '"',
	"apos": '\'',
}

// DecodeEntity resolves the character reference at the start of b, which must
// begin with '&'. It returns the decoded text and the number of source bytes
// consumed. n == 0 means b does not start with a well-formed reference and
// the caller should emit the bytes verbatim; decoding never fails harder than
// that. In mini mode only the miniEntities subset of named references is
// resolved, trading completeness for speed; numeric references are always
// resolved.
func DecodeEntity(b []byte, mini bool) (string, int) {
	if len(b) < 3 || b[0] != '&' {
		return "", 0
	}
	if b[1] == '#' {
		return decodeNumericEntity(b)
	}
	i := 1
	for i < len(b) && i < maxEntityLength && (isLetter(b[i]) || isDigit(b[i])) {
		i++
	}
	if i == 1 || i >= len(b) || b[i] != ';' {
		return "", 0
	}
	name := string(b[1:i])
	if mini {
		if r, ok := miniEntities[name]; ok {
			return string(r), i + 1
		}
		return "", 0
	}
	ref := string(b[:i+1])
	if dec := html.UnescapeString(ref); dec != ref {
		return dec, i + 1
	}
	return "", 0
}

// decodeNumericEntity handles &#NNNN; and &#xHHHH; forms. References without
// a closing semicolon, empty digit runs and code points outside the Unicode
// range all pass through undecoded.
func decodeNumericEntity(b []byte) (string, int) {
	i := 2
	hex := false
	if i < len(b) && (b[i] == 'x' || b[i] == 'X') {
		hex = true
		i++
	}
	var n rune
	start := i
	for i < len(b) && i < maxEntityLength {
		c := b[i]
		if hex {
			switch {
			case isDigit(c):
				n = n<<4 | rune(c-'0')
			case 'a' <= c && c <= 'f':
				n = n<<4 | rune(c-'a'+10)
			case 'A' <= c && c <= 'F':
				n = n<<4 | rune(c-'A'+10)
			default:
				goto done
			}
		} else if isDigit(c) {
			n = n*10 + rune(c-'0')
		} else {
			goto done
		}
		if n > utf8.MaxRune {
			return "", 0
		}
		i++
	}
done:
	if i == start || i >= len(b) || b[i] != ';' {
		return "", 0
	}
	if !utf8.ValidRune(n) {
		return "", 0
	}
	return string(n), i + 1
}
