package ahocorasick

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var textbookWords = []string{"a", "aa", "aab", "baa", "baab", "aac"}

// nodeOf walks the trie along prefix and fails the test if it is missing.
func nodeOf(t *testing.T, a *Automaton, prefix string) int32 {
	t.Helper()
	n := int32(rootNode)
	for i := 0; i < len(prefix); i++ {
		n = a.kid(n, prefix[i])
		require.NotEqual(t, int32(none), n, "prefix %q not in trie", prefix)
	}
	return n
}

func TestFailLinks(t *testing.T) {
	a := MustCompile(textbookWords...)

	tests := []struct {
		prefix string
		fail   string
	}{
		{"a", ""},
		{"b", ""},
		{"aa", "a"},
		{"ba", "a"},
		{"aab", "b"},
		{"aac", ""},
		{"baa", "aa"},
		{"baab", "aab"},
	}

	for _, tt := range tests {
		n := nodeOf(t, a, tt.prefix)
		assert.Equal(t, nodeOf(t, a, tt.fail), a.nodes[n].fail, "fail(%q)", tt.prefix)
	}

	assert.Equal(t, int32(none), a.nodes[rootNode].fail)
}

func TestMatchChains(t *testing.T) {
	a := MustCompile(textbookWords...)

	// "ba" ends no pattern, but inherits "a" through its fail link.
	ba := nodeOf(t, a, "ba")
	assert.Equal(t, int32(a.IndexOf("a")), a.nodes[ba].word)

	// "baab" ends "baab", which chains to "aab" and then to nothing.
	baab := a.nodes[nodeOf(t, a, "baab")].word
	assert.Equal(t, int32(a.IndexOf("baab")), baab)
	aab := a.words[baab].suffix
	assert.Equal(t, int32(a.IndexOf("aab")), aab)
	assert.Equal(t, int32(none), a.words[aab].suffix)

	// "baa" -> "aa" -> "a"
	chain := []int{}
	for w := a.nodes[nodeOf(t, a, "baa")].word; w != none; w = a.words[w].suffix {
		chain = append(chain, int(a.words[w].size))
	}
	assert.Equal(t, []int{3, 2, 1}, chain)
}

func TestFailDepthDecreases(t *testing.T) {
	a := MustCompile("abcab", "bcab", "cab", "ab", "b", "abcabcab")
	require.NoError(t, a.check())
}

func TestCounters(t *testing.T) {
	a := MustCompile(textbookWords...)
	assert.Equal(t, 6, a.NumPatterns())
	// root, a, aa, aab, aac, b, ba, baa, baab
	assert.Equal(t, 9, a.NumNodes())
	assert.Equal(t, 8, a.NumEdges())
	assert.Equal(t, 4, a.PatternLen(a.IndexOf("baab")))
}

func TestIndexOf(t *testing.T) {
	a := MustCompile("cat", "catnip", "cats", "cat", "blip")

	assert.Equal(t, 0, a.IndexOf("cat"))
	assert.Equal(t, 1, a.IndexOf("catnip"))
	assert.Equal(t, 2, a.IndexOf("cats"))
	assert.Equal(t, 3, a.IndexOf("blip"))
	assert.Equal(t, -1, a.IndexOf("ca"))
	assert.Equal(t, -1, a.IndexOf("catsup"))
	assert.Equal(t, -1, a.IndexOf(""))
}

func TestIndexOfIgnoresInheritedWords(t *testing.T) {
	// "xa" is a node whose word "a" comes from its fail link.
	a := MustCompile("a", "xab")
	assert.Equal(t, -1, a.IndexOf("xa"))
	assert.Equal(t, 0, a.IndexOf("a"))
}

func TestCompileRejectsEmpty(t *testing.T) {
	_, err := Compile([]string{"ok", ""})
	require.ErrorIs(t, err, ErrEmptyPattern)
	assert.Contains(t, err.Error(), "pattern 1")

	assert.Panics(t, func() { MustCompile("") })
}

func TestEnumerate(t *testing.T) {
	a := MustCompile("cat", "blip", "catnip", "cats")

	type entry struct {
		index  int
		prefix string
		final  bool
	}

	var got []entry
	a.Enumerate(func(index int, prefix []byte, final bool) EnumerationResult {
		got = append(got, entry{index, string(prefix), final})
		return Continue
	})

	assert.Equal(t, []entry{
		{-1, "", false},
		{-1, "b", false},
		{-1, "bl", false},
		{-1, "bli", false},
		{1, "blip", true},
		{-1, "c", false},
		{-1, "ca", false},
		{0, "cat", true},
		{-1, "catn", false},
		{-1, "catni", false},
		{2, "catnip", true},
		{3, "cats", true},
	}, got)
}

func TestEnumerateSkipAndStop(t *testing.T) {
	a := MustCompile("cat", "blip", "catnip", "cats")

	var finals []string
	a.Enumerate(func(index int, prefix []byte, final bool) EnumerationResult {
		if string(prefix) == "b" {
			return Skip
		}
		if final {
			finals = append(finals, string(prefix))
		}
		if string(prefix) == "catnip" {
			return Stop
		}
		return Continue
	})
	assert.Equal(t, []string{"cat", "catnip"}, finals)
}

func TestPrint(t *testing.T) {
	a := MustCompile("ab", "b")

	var buf bytes.Buffer
	require.NoError(t, a.Print(&buf))

	out := buf.String()
	assert.Contains(t, out, "Automaton: 2 patterns, 4 nodes, 3 edges")
	assert.Contains(t, out, "node 0 fail=- word=-")
	assert.Contains(t, out, "pattern 0 len=2 suffix=1")
	assert.Contains(t, out, "'b' -> ")
}

func TestSearcher(t *testing.T) {
	var s Searcher = MustCompile(textbookWords...)

	assert.Equal(t, len(textbookWords), s.NumPatterns())
	assert.Equal(t, s.NumNodes()-1, s.NumEdges())
	for i, w := range textbookWords {
		assert.Equal(t, i, s.IndexOf(w))
	}
	assert.True(t, s.Contains("aabaab"))
	assert.Len(t, s.FindAll("aabaab"), 10)
	assert.False(t, s.Search("ccc").Next())
}
