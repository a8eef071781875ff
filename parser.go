// Package yahap is a lenient single-pass HTML tokenizer. It splits a byte
// buffer of HTML or XML-like markup into typed chunks (text runs, open and
// close tags, comments, CDATA sections, script bodies) without building a
// DOM, scanning each byte once and allocating only when a decoded string is
// actually materialized. Malformed markup never produces an error, only a
// best-effort chunk.
package yahap

import (
	"bytes"

	"github.com/shmutalov/yahap/buffer"
	yenc "github.com/shmutalov/yahap/encoding"
)

var (
	commentOpen  = []byte("<!--")
	commentClose = []byte("-->")
	cdataOpen    = []byte("<![CDATA[")
	cdataClose   = []byte("]]>")
)

// Parser splits an assigned byte buffer into successive chunks.
//
// Reuse a single instance across many parses: the heuristics table and the
// internal buffers are built once and amortized. An instance is not safe for
// concurrent use and must not be handed a new buffer while a scan over the
// previous one is in progress. The returned *Chunk is owned by the parser
// and overwritten by the next ParseNext call; Clone it to retain it.
type Parser struct {
	// DecodeEntities resolves character references in text and attribute
	// values. When off, source bytes pass through verbatim.
	DecodeEntities bool

	// DecodeMiniEntities restricts named-entity decoding to the small
	// common subset instead of the full table, trading completeness for
	// speed.
	DecodeMiniEntities bool

	// KeepRawHTML stores the raw markup span on open/close tag chunks,
	// not only on comments. Keep it off for speed: the span is always
	// recoverable through Chunk.Offset and Chunk.Length.
	KeepRawHTML bool

	// KeepComments and KeepScripts control whether comment/CDATA and
	// script bodies are captured into Chunk.HTML during the scan. When
	// off, Finalize fills the text on demand.
	KeepComments bool
	KeepScripts  bool

	// ExtractBetweenTagsOnly captures comment and script text without the
	// delimiter markup itself.
	ExtractBetweenTagsOnly bool

	// MarkClosedTagsWithParamsAsOpen reclassifies a close tag carrying
	// attributes as an open tag, matching lenient real-world markup. Turn
	// it off for stricter XML-style interpretation.
	MarkClosedTagsWithParamsAsOpen bool

	// CompressWhitespaceBeforeTag collapses a whitespace run immediately
	// preceding a tag to a single space byte.
	CompressWhitespaceBeforeTag bool

	// Heuristics is the fast-match table consulted for tag and attribute
	// names. It comes pre-seeded with common HTML tags; more can be added
	// before parsing.
	Heuristics *Heuristics

	chunk *Chunk
	text  *buffer.Writer

	html       []byte
	pos        int
	length     int
	whitespace [256]bool
}

// NewParser returns a parser with default flags and ordered attribute
// storage.
func NewParser() *Parser {
	return NewParserOptions(false)
}

// NewParserOptions returns a parser whose chunk stores attributes in hash
// mode when hashMode is set. The storage mode is fixed at construction.
func NewParserOptions(hashMode bool) *Parser {
	p := &Parser{
		DecodeEntities:                 true,
		KeepComments:                   true,
		KeepScripts:                    true,
		ExtractBetweenTagsOnly:         true,
		MarkClosedTagsWithParamsAsOpen: true,
		CompressWhitespaceBeforeTag:    true,
		Heuristics:                     NewHeuristics(),
		chunk:                          NewChunk(hashMode),
		text:                           buffer.NewWriter(),
	}
	p.whitespace['\t'] = true
	p.whitespace['\n'] = true
	p.whitespace['\r'] = true
	p.whitespace[' '] = true
	seedHeuristics(p.Heuristics)
	return p
}

// seedHeuristics registers the tags most likely to occur in real-world HTML,
// most frequent first: a later registration sharing its first two bytes with
// an earlier one loses the fast path.
func seedHeuristics(h *Heuristics) {
	h.AddTag("a", "href")
	h.AddTag("b", "")
	h.AddTag("p", "class")
	h.AddTag("i", "")
	h.AddTag("s", "")
	h.AddTag("u", "")

	h.AddTag("td", "align,valign,bgcolor,rowspan,colspan")
	h.AddTag("table", "border,width,cellpadding")
	h.AddTag("span", "")
	h.AddTag("option", "")
	h.AddTag("select", "")

	h.AddTag("tr", "")
	h.AddTag("div", "class,align")
	h.AddTag("img", "src,width,height,title,alt")
	h.AddTag("input", "")
	h.AddTag("br", "")
	h.AddTag("li", "")
	h.AddTag("ul", "")
	h.AddTag("ol", "")
	h.AddTag("hr", "")
	h.AddTag("h1", "")
	h.AddTag("h2", "")
	h.AddTag("h3", "")
	h.AddTag("h4", "")
	h.AddTag("h5", "")
	h.AddTag("h6", "")
	h.AddTag("font", "size,color")
	h.AddTag("meta", "name,content,http-equiv")
	h.AddTag("base", "href")

	// these are pretty rare
	h.AddTag("script", "")
	h.AddTag("style", "")
	h.AddTag("html", "")
	h.AddTag("body", "")
}

// Init assigns the buffer to scan and rewinds the cursor. The buffer is not
// copied; it must stay untouched until the scan is done.
func (p *Parser) Init(html []byte) {
	p.html = html
	p.length = len(html)
	p.pos = 0
}

// InitString assigns a string to scan.
func (p *Parser) InitString(html string) {
	p.Init([]byte(html))
}

// Reset rewinds the cursor to the start of the current buffer, restarting
// the token stream.
func (p *Parser) Reset() {
	p.pos = 0
}

// CurrentPosition returns the cursor's byte offset into the buffer.
func (p *Parser) CurrentPosition() int {
	return p.pos
}

// SetEncoding selects the character set used to decode source bytes into
// chunk text, by its WHATWG label. It applies to subsequent chunks only.
func (p *Parser) SetEncoding(label string) error {
	e, err := yenc.Load(label)
	if err != nil {
		return err
	}
	p.text.SetEncoding(e)
	return nil
}

// Raw returns the chunk's original source bytes, zero-copy. Valid for every
// chunk kind whether or not HTML was materialized.
func (p *Parser) Raw(c *Chunk) []byte {
	return p.html[c.Offset : c.Offset+c.Length]
}

// SetRawHTML fills the chunk's HTML with its full decoded source span,
// delimiters included.
func (p *Parser) SetRawHTML(c *Chunk) {
	c.HTML = p.decodeSpan(p.Raw(c))
}

// Finalize fills the deferred text of a comment, CDATA or script chunk that
// was scanned with capture off. It honors ExtractBetweenTagsOnly. On other
// chunk kinds it does nothing: text chunks already carry their text and tag
// chunks have none.
func (p *Parser) Finalize(c *Chunk) {
	switch c.Type {
	case Comment:
		raw := p.Raw(c)
		if p.ExtractBetweenTagsOnly {
			if c.Tag == "![CDATA[" {
				raw = trimDelimiters(raw, cdataOpen, cdataClose)
			} else {
				raw = trimDelimiters(raw, commentOpen, commentClose)
			}
		}
		c.HTML = p.decodeSpan(raw)
	case Script:
		raw := p.Raw(c)
		if p.ExtractBetweenTagsOnly {
			raw = scriptBody(raw)
		}
		c.HTML = p.decodeSpan(raw)
	}
}

// ParseNext scans the next chunk and returns it, or nil once the end of the
// buffer is reached. The chunk is reused across calls.
func (p *Parser) ParseNext() *Chunk {
	if p.pos >= p.length {
		return nil
	}
	c := p.chunk
	c.Clear()
	c.Offset = p.pos
	if p.html[p.pos] == '<' {
		switch p.tagKindAt(p.pos) {
		case tagKindComment:
			return p.parseComment(c)
		case tagKindCDATA:
			return p.parseCDATA(c)
		case tagKindOpen, tagKindClose:
			return p.parseTag(c)
		}
	}
	return p.parseText(c)
}

type tagKind int

const (
	tagKindNone tagKind = iota
	tagKindOpen
	tagKindClose
	tagKindComment
	tagKindCDATA
)

// tagKindAt classifies the '<' at offset i. Anything that does not open a
// tag, comment or CDATA section is ordinary text.
func (p *Parser) tagKindAt(i int) tagKind {
	if p.html[i] != '<' || i+1 >= p.length {
		return tagKindNone
	}
	switch c := p.html[i+1]; {
	case c == '!':
		if p.at(i, commentOpen) {
			return tagKindComment
		}
		if p.at(i, cdataOpen) {
			return tagKindCDATA
		}
		return tagKindNone
	case c == '/':
		if i+2 < p.length {
			return tagKindClose
		}
		return tagKindNone
	case isLetter(c):
		return tagKindOpen
	}
	return tagKindNone
}

func (p *Parser) at(i int, pat []byte) bool {
	if i+len(pat) > p.length {
		return false
	}
	return bytes.Equal(p.html[i:i+len(pat)], pat)
}

// decodeSpan pushes raw source bytes through the assembler and returns the
// decoded string.
func (p *Parser) decodeSpan(b []byte) string {
	w := p.text
	w.Clear()
	w.Write(b)
	return w.Flush()
}

// parseText scans a text run up to the next tag start or the end of the
// buffer. A '<' that does not open a tag is kept as literal text. A decoded
// &lt; is recorded on the chunk as an escaped tag start rather than being
// reinterpreted.
func (p *Parser) parseText(c *Chunk) *Chunk {
	w := p.text
	w.Clear()
	i := p.pos
	for i < p.length {
		b := p.html[i]
		if b == '<' && i > p.pos && p.tagKindAt(i) != tagKindNone {
			break
		}
		if b == '&' && p.DecodeEntities {
			if s, n := DecodeEntity(p.html[i:], p.DecodeMiniEntities); n > 0 {
				c.Entities = true
				if s == "<" {
					c.LtEntity = true
				}
				w.WriteString(s)
				i += n
				continue
			}
		}
		if p.whitespace[b] && p.CompressWhitespaceBeforeTag {
			j := i + 1
			for j < p.length && p.whitespace[p.html[j]] {
				j++
			}
			if j < p.length && p.tagKindAt(j) != tagKindNone {
				w.WriteByte(' ')
			} else {
				w.Write(p.html[i:j])
			}
			i = j
			continue
		}
		w.WriteByte(b)
		i++
	}
	c.Type = Text
	c.HTML = w.Flush()
	c.Length = i - c.Offset
	p.pos = i
	return c
}

// parseComment consumes a <!-- --> block. An unterminated comment runs to
// the end of the buffer instead of failing.
func (p *Parser) parseComment(c *Chunk) *Chunk {
	return p.parseDelimited(c, "!--", commentOpen, commentClose, p.KeepComments)
}

// parseCDATA consumes a <![CDATA[ ]]> section, which is reported as a
// comment chunk tagged "![CDATA[".
func (p *Parser) parseCDATA(c *Chunk) *Chunk {
	return p.parseDelimited(c, "![CDATA[", cdataOpen, cdataClose, p.KeepComments)
}

func (p *Parser) parseDelimited(c *Chunk, tag string, opener, closer []byte, keep bool) *Chunk {
	c.Type = Comment
	c.Comments = true
	c.Tag = tag
	body := p.pos + len(opener)
	end := p.length
	stop := p.length
	if k := bytes.Index(p.html[body:], closer); k >= 0 {
		end = body + k
		stop = end + len(closer)
	}
	if keep {
		if p.ExtractBetweenTagsOnly {
			c.HTML = p.decodeSpan(p.html[body:end])
		} else {
			c.HTML = p.decodeSpan(p.html[p.pos:stop])
		}
	}
	p.pos = stop
	c.Length = stop - c.Offset
	return c
}

// parseTag scans an open or close tag: the name (heuristics fast path
// first), then attributes with optional quoted or bare values, then the
// closing '>'. Truncated tags and unmatched quotes degrade to best-effort
// chunks.
func (p *Parser) parseTag(c *Chunk) *Chunk {
	i := p.pos + 1
	if p.html[i] == '/' {
		c.Closure = true
		i++
	}
	var tagID int16
	i, tagID = p.scanTagName(c, i)

loop:
	for i < p.length {
		for i < p.length && p.whitespace[p.html[i]] {
			i++
		}
		if i >= p.length {
			break
		}
		switch b := p.html[i]; {
		case b == '>':
			i++
			break loop
		case b == '/':
			if i+1 < p.length && p.html[i+1] == '>' {
				c.Closure = true
				c.EndClosure = true
				i += 2
				break loop
			}
			i++
		case b == '=':
			// value without a name, skip it
			i++
		default:
			var name string
			name, i = p.scanAttrName(i, tagID)
			for i < p.length && p.whitespace[p.html[i]] {
				i++
			}
			var value string
			var quote byte
			if i < p.length && p.html[i] == '=' {
				i++
				for i < p.length && p.whitespace[p.html[i]] {
					i++
				}
				value, quote, i = p.scanAttrValue(c, i)
			}
			c.AddParam(name, value, quote)
		}
	}

	c.Type = OpenTag
	if c.Closure {
		c.Type = CloseTag
	}
	if c.Type == CloseTag && !c.EndClosure && c.ParamsCount() > 0 && p.MarkClosedTagsWithParamsAsOpen {
		c.Type = OpenTag
	}
	if c.Type == OpenTag && c.Tag == "script" {
		return p.parseScript(c, i)
	}
	p.pos = i
	c.Length = i - c.Offset
	if p.KeepRawHTML {
		c.HTML = p.decodeSpan(p.Raw(c))
	}
	return c
}

// scanTagName reads the tag name at offset i and returns the new offset and
// the heuristics id when the fast path hit. On a hit the canonical string is
// reused; otherwise the name is extracted lower-cased, two-character names
// through the shared pair cache.
func (p *Parser) scanTagName(c *Chunk, i int) (int, int16) {
	if i+1 < p.length {
		if id := p.Heuristics.MatchTag(p.html[i], p.html[i+1]); id != 0 {
			if id < 0 {
				// single-char tag, the second byte was its terminator
				c.Tag = p.Heuristics.TagString(id)
				return i + 1, id
			}
			data := p.Heuristics.TagData(id)
			if p.at(i, data) && p.terminatesName(i+len(data)) {
				c.Tag = p.Heuristics.TagString(id)
				return i + len(data), id
			}
		}
	}
	start := i
	for i < p.length {
		b := p.html[i]
		if p.whitespace[b] || b == '>' || b == '/' {
			break
		}
		i++
	}
	name := ToLower(Copy(p.html[start:i]))
	if len(name) == 2 {
		c.Tag = TwoCharString(name[0], name[1])
	} else {
		c.Tag = string(name)
	}
	return i, 0
}

func (p *Parser) terminatesName(i int) bool {
	if i >= p.length {
		return true
	}
	b := p.html[i]
	return p.whitespace[b] || b == '>' || b == '/'
}

// scanAttrName reads an attribute name, trying the per-tag first-byte
// heuristic before the general lower-cased extraction.
func (p *Parser) scanAttrName(i int, tagID int16) (string, int) {
	if tagID != 0 {
		if id := p.Heuristics.MatchAttr(p.html[i], tagID); id > 0 {
			data := p.Heuristics.AttrData(id)
			if p.at(i, data) && p.terminatesAttrName(i+len(data)) {
				return p.Heuristics.AttrString(id), i + len(data)
			}
		}
	}
	start := i
	for i < p.length {
		b := p.html[i]
		if p.whitespace[b] || b == '=' || b == '>' || b == '/' {
			break
		}
		i++
	}
	return string(ToLower(Copy(p.html[start:i]))), i
}

func (p *Parser) terminatesAttrName(i int) bool {
	if i >= p.length {
		return true
	}
	b := p.html[i]
	return p.whitespace[b] || b == '=' || b == '>' || b == '/'
}

// scanAttrValue reads a quoted or bare attribute value, decoding entities
// and recording the quote byte verbatim for regeneration. An unmatched quote
// consumes to the end of the buffer.
func (p *Parser) scanAttrValue(c *Chunk, i int) (string, byte, int) {
	if i >= p.length {
		return "", 0, i
	}
	w := p.text
	w.Clear()
	if quote := p.html[i]; quote == '"' || quote == '\'' {
		i++
		for i < p.length {
			b := p.html[i]
			if b == quote {
				i++
				break
			}
			if b == '&' && p.DecodeEntities {
				if s, n := DecodeEntity(p.html[i:], p.DecodeMiniEntities); n > 0 {
					c.Entities = true
					w.WriteString(s)
					i += n
					continue
				}
			}
			w.WriteByte(b)
			i++
		}
		return w.Flush(), quote, i
	}
	for i < p.length {
		b := p.html[i]
		if p.whitespace[b] || b == '>' {
			break
		}
		if b == '&' && p.DecodeEntities {
			if s, n := DecodeEntity(p.html[i:], p.DecodeMiniEntities); n > 0 {
				c.Entities = true
				w.WriteString(s)
				i += n
				continue
			}
		}
		w.WriteByte(b)
		i++
	}
	return w.Flush(), 0, i
}

// parseScript consumes the opaque body of a script element up to the
// matching close tag. Script bodies may contain literal '<', so the content
// is never re-entered into tag scanning; an unterminated script runs to the
// end of the buffer.
func (p *Parser) parseScript(c *Chunk, i int) *Chunk {
	c.Type = Script
	bodyStart := i
	bodyEnd := p.length
	stop := p.length
	for j := i; j+8 <= p.length; j++ {
		if p.html[j] == '<' && p.html[j+1] == '/' && equalFold(p.html[j+2:j+8], "script") &&
			(j+8 == p.length || p.whitespace[p.html[j+8]] || p.html[j+8] == '>') {
			bodyEnd = j
			k := j + 8
			for k < p.length && p.html[k] != '>' {
				k++
			}
			if k < p.length {
				k++
			}
			stop = k
			break
		}
	}
	if p.KeepScripts {
		if p.ExtractBetweenTagsOnly {
			c.HTML = p.decodeSpan(p.html[bodyStart:bodyEnd])
		} else {
			c.HTML = p.decodeSpan(p.html[c.Offset:stop])
		}
	}
	p.pos = stop
	c.Length = stop - c.Offset
	return c
}

// trimDelimiters strips the opening and, when present, closing markers of a
// comment or CDATA span.
func trimDelimiters(raw, opener, closer []byte) []byte {
	raw = raw[len(opener):]
	if len(raw) >= len(closer) && bytes.Equal(raw[len(raw)-len(closer):], closer) {
		raw = raw[:len(raw)-len(closer)]
	}
	return raw
}

// scriptBody strips the <script ...> and </script ...> markup from a raw
// script span.
func scriptBody(raw []byte) []byte {
	if k := bytes.IndexByte(raw, '>'); k >= 0 {
		raw = raw[k+1:]
	}
	for j := len(raw) - 8; j >= 0; j-- {
		if raw[j] == '<' && raw[j+1] == '/' && equalFold(raw[j+2:j+8], "script") &&
			(j+8 == len(raw) || IsWhitespace(raw[j+8]) || raw[j+8] == '>') {
			return raw[:j]
		}
	}
	return raw
}
