package ahocorasick_test

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milden6/ahocorasick"
)

type found struct {
	Word  string
	Start int
}

func collect(a *ahocorasick.Automaton, text string) []found {
	var result []found
	for c := a.Search(text); c.Next(); {
		result = append(result, found{Word: c.Text(), Start: c.Match().Start})
	}
	return result
}

func TestSearchTextbook(t *testing.T) {
	a := ahocorasick.MustCompile("a", "aa", "aab", "baa", "baab", "aac")

	assert.Equal(t, []found{
		{"a", 0},
		{"aa", 0},
		{"a", 1},
		{"aab", 0},
		{"a", 3},
		{"baa", 2},
		{"aa", 3},
		{"a", 4},
		{"aa", 4},
		{"a", 5},
		{"aab", 4},
		{"a", 7},
		{"baa", 6},
		{"aa", 7},
		{"a", 8},
		{"baab", 6},
		{"aab", 7},
	}, collect(a, "aabaaabaab"))
}

func TestSearchReportsIndexAndOffsets(t *testing.T) {
	a := ahocorasick.MustCompile("he", "she", "his", "hers")

	assert.Equal(t, []ahocorasick.Match{
		{Index: 1, Start: 1, End: 4},
		{Index: 0, Start: 2, End: 4},
		{Index: 3, Start: 2, End: 6},
	}, a.FindAll("ushers"))
}

func TestEmptyDictionary(t *testing.T) {
	a := ahocorasick.New().Finish()

	c := a.Search("anything at all")
	assert.False(t, c.Next())
	assert.False(t, c.Next())
	assert.Nil(t, a.FindAll("anything"))
	assert.False(t, a.Contains("anything"))
	assert.Equal(t, 0, a.Count(""))
}

func TestEmptyText(t *testing.T) {
	a := ahocorasick.MustCompile("a", "b")
	assert.False(t, a.Search("").Next())
	assert.Nil(t, a.FindAll(""))
}

func TestNoMatch(t *testing.T) {
	a := ahocorasick.MustCompile("auth", "login")
	assert.Nil(t, a.FindAll("hello world"))
	assert.False(t, a.Contains("hello world"))
}

func TestCursorStaysExhausted(t *testing.T) {
	a := ahocorasick.MustCompile("ab")
	c := a.Search("xab")
	require.True(t, c.Next())
	assert.Equal(t, "ab", c.Text())
	assert.False(t, c.Next())
	assert.False(t, c.Next())
	assert.Equal(t, ahocorasick.Match{}, c.Match())
}

func TestDuplicateInsertion(t *testing.T) {
	once := ahocorasick.MustCompile("ab", "b")
	twice := ahocorasick.MustCompile("ab", "b", "ab", "b")

	text := "abab bab"
	assert.Equal(t, once.FindAll(text), twice.FindAll(text))
	assert.Equal(t, 7, twice.Count(text))
}

func TestSearchBytes(t *testing.T) {
	a := ahocorasick.MustCompile("\x00\xff", "\xff")
	text := []byte{0x00, 0xff, 0xff}

	var got []ahocorasick.Match
	for c := a.SearchBytes(text); c.Next(); {
		got = append(got, c.Match())
	}
	assert.Equal(t, []ahocorasick.Match{
		{Index: 0, Start: 0, End: 2},
		{Index: 1, Start: 1, End: 2},
		{Index: 1, Start: 2, End: 3},
	}, got)
}

func TestAllStopsEarly(t *testing.T) {
	a := ahocorasick.MustCompile("a")

	var got []int
	for m := range a.All("aaaaa") {
		got = append(got, m.Start)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []int{0, 1}, got)
}

func TestMatchLen(t *testing.T) {
	m := ahocorasick.Match{Start: 3, End: 7}
	assert.Equal(t, 4, m.Len())
}

// naive finds every occurrence by checking every pattern at every position,
// in the order the automaton reports them.
func naive(patterns []string, text string) []found {
	seen := make(map[string]bool)
	var result []found
	for _, p := range patterns {
		if seen[p] {
			continue
		}
		seen[p] = true
		for i := 0; i+len(p) <= len(text); i++ {
			if text[i:i+len(p)] == p {
				result = append(result, found{Word: p, Start: i})
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		ei := result[i].Start + len(result[i].Word)
		ej := result[j].Start + len(result[j].Word)
		if ei != ej {
			return ei < ej
		}
		return len(result[i].Word) > len(result[j].Word)
	})
	return result
}

func randomString(r *rand.Rand, alphabet string, maxLen int) string {
	n := r.Intn(maxLen) + 1
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(alphabet[r.Intn(len(alphabet))])
	}
	return b.String()
}

func TestSearchMatchesNaive(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for round := 0; round < 300; round++ {
		alphabet := "ab"
		if round%3 == 1 {
			alphabet = "abc"
		} else if round%3 == 2 {
			alphabet = "acgt"
		}

		patterns := make([]string, r.Intn(12))
		for i := range patterns {
			patterns[i] = randomString(r, alphabet, 6)
		}
		text := randomString(r, alphabet, 80)

		a, err := ahocorasick.Compile(patterns)
		require.NoError(t, err)

		got := collect(a, text)
		want := naive(patterns, text)
		if len(want) == 0 {
			assert.Empty(t, got)
			continue
		}
		require.Equal(t, want, got, "patterns %q text %q", patterns, text)
	}
}

func TestMatchesAreOrdered(t *testing.T) {
	a := ahocorasick.MustCompile("a", "ab", "bab", "abab", "b")
	matches := a.FindAll("abababbab")
	require.NotEmpty(t, matches)

	for i := 1; i < len(matches); i++ {
		prev, cur := matches[i-1], matches[i]
		require.LessOrEqual(t, prev.End, cur.End)
		if prev.End == cur.End {
			require.Greater(t, prev.Len(), cur.Len())
		}
	}
}

func TestConcurrentSearch(t *testing.T) {
	patterns := []string{"GATTACA", "TACA", "ACA", "CA", "GAT"}
	a := ahocorasick.MustCompile(patterns...)
	text := strings.Repeat("GATTACAGATCA", 50)
	want := naive(patterns, text)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				assert.Equal(t, want, collect(a, text))
			}
		}()
	}
	wg.Wait()
}
