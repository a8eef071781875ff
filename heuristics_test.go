package yahap

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

func TestAddTagIdempotent(t *testing.T) {
	h := NewHeuristics()
	test.That(t, h.AddTag("td", ""), "first registration must succeed")
	id := h.MatchTag('t', 'd')
	test.That(t, !h.AddTag("td", ""), "second registration must fail")
	test.That(t, !h.AddTag("TD", ""), "re-registration is case-insensitive")
	test.That(t, h.MatchTag('t', 'd') == id, "the table must be unchanged")
}

func TestAddTagValidation(t *testing.T) {
	h := NewHeuristics()
	test.That(t, !h.AddTag("", ""), "empty name must fail")
	test.That(t, !h.AddTag(strings.Repeat("x", MaxNameLength+1), ""), "overlong name must fail")
	test.That(t, h.AddTag(strings.Repeat("x", MaxNameLength), ""), "name at the length cap must succeed")
}

func TestCaseInsensitiveMatch(t *testing.T) {
	h := NewHeuristics()
	test.That(t, h.AddTag("table", ""), "registration must succeed")

	lower := h.MatchTag('t', 'a')
	upper := h.MatchTag('T', 'A')
	test.That(t, lower > 0, "lower-case pair must match")
	test.That(t, upper > 0, "upper-case pair must match")
	test.That(t, lower%2 == 0, "lower-case form takes the even id")
	test.That(t, upper == lower+1, "upper-case form takes the odd id")
	test.String(t, h.TagString(lower), "table")
	test.String(t, h.TagString(upper), "table")
	test.String(t, string(h.TagData(lower)), "table")
	test.String(t, string(h.TagData(upper)), "TABLE")
}

func TestSingleCharTag(t *testing.T) {
	h := NewHeuristics()
	test.That(t, h.AddTag("b", ""), "registration must succeed")

	id := h.MatchTag('b', '>')
	test.That(t, id < 0, "single-char tag must match with a negative id")
	test.String(t, h.TagString(id), "b")
	test.That(t, h.MatchTag('b', ' ') < 0, "whitespace terminator must match")
	test.That(t, h.MatchTag('B', '>') < 0, "upper-case form must match")
	test.That(t, h.MatchTag('b', 'x') == 0, "a name byte after 'b' must not match")
}

func TestRegistrationOrderWins(t *testing.T) {
	h := NewHeuristics()
	test.That(t, h.AddTag("table", ""), "first registration must succeed")
	test.That(t, h.AddTag("tab", ""), "second registration must succeed")
	id := h.MatchTag('t', 'a')
	test.String(t, h.TagString(id), "table", "the first registered name keeps the fast path")
}

func TestTagCapacity(t *testing.T) {
	h := NewHeuristics()
	for i := 0; i < MaxNames; i++ {
		test.That(t, h.AddTag(fmt.Sprintf("t%03d", i), ""), "registration", i, "must succeed")
	}
	test.That(t, !h.AddTag("onemore", ""), "registration past the cap must fail")

	// the table still answers for earlier names
	id := h.MatchTag('t', '0')
	test.That(t, id > 0, "first registered name must still match")
	test.String(t, h.TagString(id), "t000")
}

func TestAttributeMatch(t *testing.T) {
	h := NewHeuristics()
	test.That(t, h.AddTag("img", "src,width"), "registration must succeed")
	tagID := h.MatchTag('i', 'm')
	test.That(t, tagID > 0, "tag must match")

	aid := h.MatchAttr('s', tagID)
	test.That(t, aid > 0, "attribute first byte must match")
	test.String(t, h.AttrString(aid), "src")
	test.String(t, string(h.AttrData(aid)), "src")

	upper := h.MatchAttr('S', tagID)
	test.That(t, upper == aid+1, "upper-case form takes the odd id")
	test.String(t, h.AttrString(upper), "src")
	test.String(t, string(h.AttrData(upper)), "SRC")

	test.That(t, h.MatchAttr('w', tagID) > 0, "second attribute must match")
	test.That(t, h.MatchAttr('z', tagID) == 0, "unregistered first byte must not match")
	test.That(t, h.MatchAttr('s', 0) == 0, "unmatched tag has no attribute table")
}

func TestAttributeFirstByteCollision(t *testing.T) {
	h := NewHeuristics()
	test.That(t, h.AddTag("td", "size,src"), "registration must succeed")
	tagID := h.MatchTag('t', 'd')
	aid := h.MatchAttr('s', tagID)
	test.String(t, h.AttrString(aid), "size", "only the first attribute per first byte is kept")
}

func TestAttributeSharedAcrossTags(t *testing.T) {
	h := NewHeuristics()
	test.That(t, h.AddTag("a", "href"), "registration must succeed")
	test.That(t, h.AddTag("base", "href"), "registration must succeed")
	aID := h.MatchAttr('h', h.MatchTag('a', '>'))
	baseID := h.MatchAttr('h', h.MatchTag('b', 'a'))
	test.That(t, aID == baseID, "the same attribute name shares one global id")
}

func TestTwoCharString(t *testing.T) {
	test.String(t, TwoCharString('a', 'b'), "ab")
	test.String(t, TwoCharString('<', '>'), "<>")
	test.That(t, TwoCharString('x', 'y') == TwoCharString('x', 'y'), "repeated lookups return the same string")
}
