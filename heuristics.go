package yahap

import (
	"strings"
	"sync"
)

// MaxNames is the maximum number of tag names, and independently of attribute
// names, one Heuristics table can hold.
const MaxNames = 255

// MaxNameLength is the longest registrable tag or attribute name in bytes.
const MaxNameLength = 32

// tagTerminators are the bytes that may legally follow a single-character tag
// name; they key the negative-id entries in the byte-pair table.
var tagTerminators = [...]byte{'\t', '\n', '\r', ' ', '>'}

// Heuristics recognizes pre-registered tag and attribute names from their
// first one or two bytes with a single dense-array lookup, so the hot path of
// the tokenizer never builds a string or folds case for a known name.
//
// Every registered name owns a pair of ids: the even id stands for its
// lower-case byte form and the odd id for its upper-case form, and both
// resolve to the same canonical lower-case string. Id 0 means no match. A
// negative id marks a single-character tag name whose table slot is keyed by
// (name byte, terminator byte) instead of the first two name bytes.
//
// The byte-pair table is a deliberate space-for-time trade (128KB per
// instance); do not replace it with a map.
type Heuristics struct {
	chars [256][256]int16

	tagStrings [2*MaxNames + 2]string
	tagData    [2*MaxNames + 2][]byte
	addedTags  map[string]int16
	tagCount   int16

	attrStrings [2*MaxNames + 2]string
	attrData    [2*MaxNames + 2][]byte
	addedAttrs  map[string]int16
	attrCount   int16

	// per-tag attribute dispatch: first name byte -> attribute id
	attrs [MaxNames + 1]*[256]int16
}

// NewHeuristics returns an empty table.
func NewHeuristics() *Heuristics {
	return &Heuristics{
		addedTags:  make(map[string]int16),
		addedAttrs: make(map[string]int16),
	}
}

// AddTag registers a tag name together with a comma-separated list of its
// common attribute names. It returns false when the name is empty, longer
// than MaxNameLength, already registered, or the table is full; the table is
// left unchanged in that case. Registration is append-only: when two names
// share their first two bytes the one registered first wins the fast path,
// so the most frequent names should be added first.
func (h *Heuristics) AddTag(tag string, attributes string) bool {
	tag = strings.ToLower(tag)
	if len(tag) == 0 || len(tag) > MaxNameLength {
		return false
	}
	if _, ok := h.addedTags[tag]; ok {
		return false
	}
	if h.tagCount >= MaxNames {
		return false
	}
	h.tagCount++
	n := h.tagCount
	upper := strings.ToUpper(tag)
	even := 2 * n
	h.tagStrings[even] = tag
	h.tagStrings[even+1] = tag
	h.tagData[even] = []byte(tag)
	h.tagData[even+1] = []byte(upper)
	h.addedTags[tag] = n

	if len(tag) == 1 {
		for _, t := range tagTerminators {
			if h.chars[tag[0]][t] == 0 {
				h.chars[tag[0]][t] = -even
			}
			if h.chars[upper[0]][t] == 0 {
				h.chars[upper[0]][t] = -(even + 1)
			}
		}
	} else {
		if h.chars[tag[0]][tag[1]] == 0 {
			h.chars[tag[0]][tag[1]] = even
		}
		if h.chars[upper[0]][upper[1]] == 0 {
			h.chars[upper[0]][upper[1]] = even + 1
		}
	}

	for _, attr := range strings.Split(attributes, ",") {
		if attr == "" {
			continue
		}
		h.addAttribute(n, strings.ToLower(attr))
	}
	return true
}

// addAttribute records an attribute for the given tag index, keyed by its
// first byte in both cases. An attribute whose first byte is already claimed
// for this tag is skipped, which bounds per-tag lookup to one array access.
// Attribute ids are global so the same name shares one id across tags.
func (h *Heuristics) addAttribute(tagIdx int16, attr string) {
	if len(attr) > MaxNameLength {
		return
	}
	table := h.attrs[tagIdx]
	if table == nil {
		table = new([256]int16)
		h.attrs[tagIdx] = table
	}
	lo := attr[0]
	up := lo
	if lo >= 'a' && lo <= 'z' {
		up = lo - ('a' - 'A')
	}
	if table[lo] != 0 || table[up] != 0 {
		return
	}
	a, ok := h.addedAttrs[attr]
	if !ok {
		if h.attrCount >= MaxNames {
			return
		}
		h.attrCount++
		a = h.attrCount
		even := 2 * a
		h.attrStrings[even] = attr
		h.attrStrings[even+1] = attr
		h.attrData[even] = []byte(attr)
		h.attrData[even+1] = []byte(strings.ToUpper(attr))
		h.addedAttrs[attr] = a
	}
	table[lo] = 2 * a
	table[up] = 2*a + 1
}

// MatchTag looks up the id registered for the first two bytes of a tag name.
// 0 means no fast-path match; a negative id identifies a single-character tag
// whose second byte was a terminator.
func (h *Heuristics) MatchTag(b1, b2 byte) int16 {
	return h.chars[b1][b2]
}

// MatchAttr looks up the attribute id registered under the given first byte
// for the tag matched as tagID (the raw id returned by MatchTag).
func (h *Heuristics) MatchAttr(first byte, tagID int16) int16 {
	if tagID < 0 {
		tagID = -tagID
	}
	idx := tagID >> 1
	if idx == 0 || idx > h.tagCount {
		return 0
	}
	table := h.attrs[idx]
	if table == nil {
		return 0
	}
	return table[first]
}

// TagString returns the canonical lower-case name for a matched tag id, or
// the empty string for an unknown id.
func (h *Heuristics) TagString(id int16) string {
	if id < 0 {
		id = -id
	}
	if id < 2 || int(id) >= len(h.tagStrings) {
		return ""
	}
	return h.tagStrings[id]
}

// TagData returns the name bytes in the case form the id stands for: the
// even id's bytes are lower-case, the odd id's upper-case.
func (h *Heuristics) TagData(id int16) []byte {
	if id < 0 {
		id = -id
	}
	if id < 2 || int(id) >= len(h.tagData) {
		return nil
	}
	return h.tagData[id]
}

// AttrString returns the canonical lower-case name for a matched attribute
// id.
func (h *Heuristics) AttrString(id int16) string {
	if id < 2 || int(id) >= len(h.attrStrings) {
		return ""
	}
	return h.attrStrings[id]
}

// AttrData returns the attribute name bytes in the case form the id stands
// for.
func (h *Heuristics) AttrData(id int16) []byte {
	if id < 2 || int(id) >= len(h.attrData) {
		return nil
	}
	return h.attrData[id]
}

var (
	twoCharOnce    sync.Once
	twoCharStrings *[256][256]string
)

// TwoCharString returns the interned two-byte string for any byte pair. The
// table is pure derived data built once per process and shared by all
// parsers; it lets the general name path hand out two-character tag names
// without constructing a string.
func TwoCharString(b1, b2 byte) string {
	twoCharOnce.Do(func() {
		t := new([256][256]string)
		for i := 0; i < 256; i++ {
			for j := 0; j < 256; j++ {
				t[i][j] = string([]byte{byte(i), byte(j)})
			}
		}
		twoCharStrings = t
	})
	return twoCharStrings[b1][b2]
}
