package ahocorasick

import "iter"

// Match is an occurrence of a dictionary pattern in a searched text. The
// matched bytes are text[Start:End].
type Match struct {
	// Index is the order in which the pattern was first added.
	Index int
	Start int
	End   int
}

// Len returns the length of the match.
func (m Match) Len() int {
	return m.End - m.Start
}

// Cursor walks the matches of one text. It is created by Search, yields each
// match once, and cannot be rewound. A Cursor must not be shared between
// goroutines, but any number of cursors may search the same Automaton.
type Cursor struct {
	a     *Automaton
	text  string
	state int32
	next  int   // offset of the next unread byte
	word  int32 // pending match, or none
	match Match
}

// Search returns a Cursor over the matches of the dictionary in text.
func (a *Automaton) Search(text string) *Cursor {
	c := &Cursor{
		a:     a,
		text:  text,
		state: rootNode,
		word:  none,
	}
	if len(a.words) == 0 {
		// nothing can match
		c.next = len(text)
	}
	return c
}

// SearchBytes is like Search but takes the text as a byte slice. The slice is
// copied.
func (a *Automaton) SearchBytes(text []byte) *Cursor {
	return a.Search(string(text))
}

// Next advances to the next match, which is then available through Match. It
// returns false when there are no more matches.
func (c *Cursor) Next() bool {
	// Drain the patterns ending at the current position first.
	if c.word != none {
		c.word = c.a.words[c.word].suffix
	}

	for c.word == none && c.next < len(c.text) {
		c.state = c.a.step(c.state, c.text[c.next])
		c.next++
		c.word = c.a.nodes[c.state].word
	}

	if c.word == none {
		c.match = Match{}
		return false
	}

	c.match = Match{
		Index: int(c.word),
		Start: c.next - int(c.a.words[c.word].size),
		End:   c.next,
	}
	return true
}

// Match returns the most recent match found by Next.
func (c *Cursor) Match() Match {
	return c.match
}

// Text returns the bytes of the most recent match.
func (c *Cursor) Text() string {
	return c.text[c.match.Start:c.match.End]
}

// FindAll returns all matches in text, ordered by end offset, and by
// decreasing length among matches ending at the same offset.
func (a *Automaton) FindAll(text string) []Match {
	var matches []Match
	for c := a.Search(text); c.Next(); {
		matches = append(matches, c.Match())
	}
	return matches
}

// All returns an iterator over the matches in text, in the same order as
// FindAll.
func (a *Automaton) All(text string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for c := a.Search(text); c.Next(); {
			if !yield(c.Match()) {
				return
			}
		}
	}
}

// Contains reports whether any pattern occurs in text.
func (a *Automaton) Contains(text string) bool {
	return a.Search(text).Next()
}

// Count returns the number of matches in text.
func (a *Automaton) Count(text string) int {
	count := 0
	for c := a.Search(text); c.Next(); {
		count++
	}
	return count
}
