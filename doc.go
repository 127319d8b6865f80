/*
Package ahocorasick is an implementation of the Aho-Corasick multi-pattern string
matching automaton.

Given a dictionary of patterns, the automaton scans a text once, left to right, and
reports every occurrence of every pattern, including overlapping ones. Matches are
reported in order of where they end in the text. When several patterns end at the
same position, the longest is reported first.

Patterns and texts are treated as sequences of bytes. There is no Unicode folding or
normalization; callers that need it should normalize both sides first.

To use it, first create a PatternSet using ahocorasick.New(), and add patterns to it.
Adding the same pattern twice has no effect. Patterns may be added in any order, but
empty patterns are rejected.

After all the patterns are added, call Finish(), which returns an *Automaton. The
PatternSet cannot be added to after that. The Automaton never changes once built,
so it can be shared by any number of goroutines searching at the same time.
Compile() does both steps for a slice of patterns.

Each call to Search() returns a new Cursor over the given text. Call Next() until it
returns false, reading Match() after each call. A Match holds the offsets of the
matched span and the index of the pattern, which is the order in which the pattern was
first added.

A finished Automaton may be written to disk with Save() or WriteTo() and opened later
with Load() or Read(). A summary of the data format is found at the top of disk.go.
*/
package ahocorasick
