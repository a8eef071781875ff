// Package encoding maps character set labels to the codecs in
// golang.org/x/text/encoding. It exists so the tokenizer can be pointed at a
// charset by its WHATWG label without callers importing the x/text packages
// themselves (whose names, such as "unicode", also clash with the stdlib).
package encoding

import (
	"strings"

	"github.com/pkg/errors"
	enc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// Load returns the codec registered for the given label. Labels are matched
// case-insensitively. An unknown label is an error; UTF-8 and ASCII both
// resolve to unicode.UTF8, which the caller may treat as a no-op codec.
func Load(label string) (enc.Encoding, error) {
	switch strings.ToLower(label) {
	case "utf8", "utf-8", "ascii", "us-ascii":
		return unicode.UTF8, nil
	case "utf-16", "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	case "euc-jp":
		return japanese.EUCJP, nil
	case "shift_jis", "shift-jis", "shiftjis", "cp932":
		return japanese.ShiftJIS, nil
	case "jis", "iso-2022-jp":
		return japanese.ISO2022JP, nil
	case "big5":
		return traditionalchinese.Big5, nil
	case "euc-kr":
		return korean.EUCKR, nil
	case "gbk":
		return simplifiedchinese.GBK, nil
	case "gb18030":
		return simplifiedchinese.GB18030, nil
	case "hz-gb2312":
		return simplifiedchinese.HZGB2312, nil
	case "cp437":
		return charmap.CodePage437, nil
	case "cp866", "ibm866":
		return charmap.CodePage866, nil
	case "iso-8859-1", "latin1", "windows-1252", "windows1252":
		return charmap.Windows1252, nil
	case "iso-8859-2":
		return charmap.ISO8859_2, nil
	case "iso-8859-3":
		return charmap.ISO8859_3, nil
	case "iso-8859-4":
		return charmap.ISO8859_4, nil
	case "iso-8859-5":
		return charmap.ISO8859_5, nil
	case "iso-8859-6":
		return charmap.ISO8859_6, nil
	case "iso-8859-7":
		return charmap.ISO8859_7, nil
	case "iso-8859-8":
		return charmap.ISO8859_8, nil
	case "iso-8859-10":
		return charmap.ISO8859_10, nil
	case "iso-8859-13":
		return charmap.ISO8859_13, nil
	case "iso-8859-14":
		return charmap.ISO8859_14, nil
	case "iso-8859-15":
		return charmap.ISO8859_15, nil
	case "iso-8859-16":
		return charmap.ISO8859_16, nil
	case "koi8-r", "koi8r":
		return charmap.KOI8R, nil
	case "koi8-u", "koi8u":
		return charmap.KOI8U, nil
	case "macintosh":
		return charmap.Macintosh, nil
	case "x-mac-cyrillic", "macintoshcyrillic":
		return charmap.MacintoshCyrillic, nil
	case "windows-1250", "windows1250":
		return charmap.Windows1250, nil
	case "windows-1251", "windows1251":
		return charmap.Windows1251, nil
	case "windows-1253", "windows1253":
		return charmap.Windows1253, nil
	case "windows-1254", "windows1254":
		return charmap.Windows1254, nil
	case "windows-1255", "windows1255":
		return charmap.Windows1255, nil
	case "windows-1256", "windows1256":
		return charmap.Windows1256, nil
	case "windows-1257", "windows1257":
		return charmap.Windows1257, nil
	case "windows-1258", "windows1258":
		return charmap.Windows1258, nil
	case "windows-874", "windows874":
		return charmap.Windows874, nil
	}
	return nil, errors.Errorf("unsupported encoding %q", label)
}
