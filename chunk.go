package yahap

import (
	"strconv"
	"strings"
)

// ChunkType determines the type of chunk, eg. text or an open tag.
type ChunkType uint32

// ChunkType values.
const (
	Text ChunkType = iota // plain text run
	OpenTag
	CloseTag
	Comment // also covers CDATA sections, see Chunk.Tag
	Script
)

// String returns the string representation of a ChunkType.
func (ct ChunkType) String() string {
	switch ct {
	case Text:
		return "Text"
	case OpenTag:
		return "OpenTag"
	case CloseTag:
		return "CloseTag"
	case Comment:
		return "Comment"
	case Script:
		return "Script"
	}
	return "Invalid(" + strconv.Itoa(int(ct)) + ")"
}

// MaxParams bounds the ordered attribute storage of one chunk.
const MaxParams = 256

// quoteThreshold is the value length beyond which a regenerated attribute is
// always quoted regardless of content.
const quoteThreshold = 20

// Chunk is one parsed token: a text run, an open or close tag, a comment or
// CDATA section, or a script block.
//
// The parser owns a single Chunk and reuses it for every token, clearing it
// instead of reallocating; callers that keep data across ParseNext calls must
// Clone it or copy the fields out first.
//
// Offset and Length always locate the chunk's raw bytes in the parsed buffer
// even when HTML was not populated. For Comment and Script chunks HTML is
// filled only when the parser is configured to capture it, or on demand via
// Parser.Finalize.
type Chunk struct {
	// Type shows whether this is text, an open or close tag, a comment or
	// a script.
	Type ChunkType

	// Tag is the lower-cased tag name. Comments carry "!--" and CDATA
	// sections "![CDATA[".
	Tag string

	// HTML is the decoded payload: text content, comment/script body, or
	// raw tag markup when the parser keeps it.
	HTML string

	// Offset and Length span the chunk's raw bytes in the parsed buffer.
	Offset int
	Length int

	// Closure is set on tags opened with "</".
	Closure bool

	// EndClosure marks a solo tag whose closing slash sat before '>'.
	EndClosure bool

	// Comments is set for comment and CDATA chunks.
	Comments bool

	// Entities records that character references were decoded while
	// producing HTML, so HTML is a lossy form of the source bytes.
	Entities bool

	// LtEntity records that an escaped tag start (&lt;) was decoded.
	LtEntity bool

	hashMode    bool
	params      map[string]string
	paramNames  []string
	paramValues []string
	paramQuotes []byte
}

// NewChunk returns an empty chunk. With hashMode set, attributes are stored
// in a name-to-value map instead of the ordered triples; that is slower to
// parse into but more convenient to consume. The mode is fixed for the
// chunk's lifetime.
func NewChunk(hashMode bool) *Chunk {
	c := &Chunk{hashMode: hashMode}
	if hashMode {
		c.params = make(map[string]string)
	}
	return c
}

// HashMode reports whether attributes go into the map form.
func (c *Chunk) HashMode() bool {
	return c.hashMode
}

// ParamsCount returns the number of stored attributes.
func (c *Chunk) ParamsCount() int {
	if c.hashMode {
		return len(c.params)
	}
	return len(c.paramNames)
}

// Param returns the ith attribute of the ordered form. It is meaningless in
// hash mode.
func (c *Chunk) Param(i int) (name, value string, quote byte) {
	return c.paramNames[i], c.paramValues[i], c.paramQuotes[i]
}

// Params returns the attribute map. It is nil until the chunk is in hash
// mode or ConvertParamsToHash has been called.
func (c *Chunk) Params() map[string]string {
	return c.params
}

// AddParam appends an attribute. In the ordered form it returns false once
// MaxParams attributes are stored and drops the attribute; callers must
// check it. quote records the value's quote byte from the source, 0 for
// unquoted values.
func (c *Chunk) AddParam(name, value string, quote byte) bool {
	if c.hashMode {
		c.params[name] = value
		return true
	}
	if len(c.paramNames) >= MaxParams {
		return false
	}
	c.paramNames = append(c.paramNames, name)
	c.paramValues = append(c.paramValues, value)
	c.paramQuotes = append(c.paramQuotes, quote)
	return true
}

// GetParamValue returns the value of the named attribute.
func (c *Chunk) GetParamValue(name string) (string, bool) {
	if c.hashMode {
		v, ok := c.params[name]
		return v, ok
	}
	for i, n := range c.paramNames {
		if n == name {
			return c.paramValues[i], true
		}
	}
	return "", false
}

// ConvertParamsToHash copies the ordered attributes into the map form. The
// conversion is one-way and on demand: the ordered data stays intact, but
// the map is not maintained by later AddParam calls unless the chunk was
// created in hash mode.
func (c *Chunk) ConvertParamsToHash() {
	if c.params == nil {
		c.params = make(map[string]string, len(c.paramNames))
	} else {
		clear(c.params)
	}
	for i, n := range c.paramNames {
		c.params[n] = c.paramValues[i]
	}
}

// Clear resets the chunk for reuse by the parser. The storage mode and the
// underlying attribute capacity are kept.
func (c *Chunk) Clear() {
	c.Type = Text
	c.Tag = ""
	c.HTML = ""
	c.Offset = 0
	c.Length = 0
	c.Closure = false
	c.EndClosure = false
	c.Comments = false
	c.Entities = false
	c.LtEntity = false
	c.paramNames = c.paramNames[:0]
	c.paramValues = c.paramValues[:0]
	c.paramQuotes = c.paramQuotes[:0]
	if c.hashMode {
		clear(c.params)
	}
}

// Clone returns an independent copy, for callers that must retain a token
// past the next ParseNext call.
func (c *Chunk) Clone() *Chunk {
	d := *c
	d.paramNames = append([]string(nil), c.paramNames...)
	d.paramValues = append([]string(nil), c.paramValues...)
	d.paramQuotes = append([]byte(nil), c.paramQuotes...)
	if c.params != nil {
		d.params = make(map[string]string, len(c.params))
		for k, v := range c.params {
			d.params[k] = v
		}
	}
	return &d
}

// GenerateHTML reconstructs canonical markup from the parsed fields. It is a
// canonicalizing regeneration, not a byte-exact echo: attribute quoting is
// normalized and conflicting quote characters inside values are re-escaped
// as numeric references. For the original bytes use Offset and Length
// against the parsed buffer instead.
func (c *Chunk) GenerateHTML() string {
	switch c.Type {
	case OpenTag:
		var b strings.Builder
		b.WriteByte('<')
		b.WriteString(c.Tag)
		if c.ParamsCount() > 0 {
			b.WriteByte(' ')
			b.WriteString(c.generateParamsHTML())
		}
		b.WriteByte('>')
		return b.String()
	case CloseTag:
		if c.ParamsCount() > 0 || c.EndClosure {
			var b strings.Builder
			b.WriteByte('<')
			b.WriteString(c.Tag)
			if c.ParamsCount() > 0 {
				b.WriteByte(' ')
				b.WriteString(c.generateParamsHTML())
			}
			b.WriteString("/>")
			return b.String()
		}
		return "</" + c.Tag + ">"
	case Script:
		if c.HTML == "" {
			return "<script>n/a</script>"
		}
		return c.HTML
	case Comment:
		if c.Tag == "![CDATA[" {
			if c.HTML == "" {
				return "<![CDATA[ n/a \n]]>"
			}
			return "<![CDATA[" + c.HTML + "]]>"
		}
		if c.HTML == "" {
			return "<!-- n/a -->"
		}
		return "<!--" + c.HTML + "-->"
	}
	return c.HTML
}

func (c *Chunk) generateParamsHTML() string {
	var b strings.Builder
	if c.hashMode || len(c.paramNames) == 0 && len(c.params) > 0 {
		for name, value := range c.params {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(generateParamHTML(name, value, 0))
		}
	} else {
		for i, name := range c.paramNames {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(generateParamHTML(name, c.paramValues[i], c.paramQuotes[i]))
		}
	}
	return b.String()
}

// generateParamHTML emits one name=value pair. Values longer than
// quoteThreshold are always quoted; shorter values only when they contain
// whitespace or a quote character, otherwise they are emitted bare.
func generateParamHTML(name, value string, quote byte) string {
	if value == "" {
		return name
	}
	if len(value) > quoteThreshold {
		q := pickQuote(value, quote)
		return name + "=" + string(q) + escapeParamValue(value, q) + string(q)
	}
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case ' ', '\t', '\n', '\r', '\'', '"':
			q := pickQuote(value, quote)
			return name + "=" + string(q) + escapeParamValue(value, q) + string(q)
		}
	}
	return name + "=" + value
}

// pickQuote chooses the quote character for a regenerated value: the quote
// seen in the source when the value does not contain it, otherwise whichever
// of ' and " needs fewer escapes.
func pickQuote(value string, quote byte) byte {
	if (quote == '\'' || quote == '"') && strings.IndexByte(value, quote) < 0 {
		return quote
	}
	singles := strings.Count(value, "'")
	doubles := strings.Count(value, "\"")
	if doubles > singles {
		return '\''
	}
	return '"'
}

// escapeParamValue replaces every occurrence of the wrapping quote character
// with its numeric character reference, keeping the regenerated attribute
// well-formed.
func escapeParamValue(value string, quote byte) string {
	if strings.IndexByte(value, quote) < 0 {
		return value
	}
	return strings.ReplaceAll(value, string(quote), "&#"+strconv.Itoa(int(quote))+";")
}
