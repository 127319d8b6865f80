package ahocorasick

import (
	"errors"
	"slices"
)

// ErrEmptyPattern is returned when adding a pattern of length zero.
var ErrEmptyPattern = errors.New("ahocorasick: empty pattern")

// ErrFinished is returned when adding to a PatternSet after Finish was called.
var ErrFinished = errors.New("ahocorasick: pattern set already finished")

const (
	rootNode = 0
	none     = -1
)

type edge struct {
	ch   byte
	node int32
}

type node struct {
	// kept sorted by ch
	edges []edge

	// longest proper suffix of this node's prefix that is also a prefix in the
	// trie. none for the root.
	fail int32

	// longest pattern that is a suffix of this node's prefix, or none.
	word int32
}

type dictEntry struct {
	size int32

	// next shorter pattern that is a suffix of this one, or none.
	suffix int32
}

// PatternSet collects the patterns of a dictionary into a prefix tree. Once all
// patterns are added, Finish turns it into an Automaton.
type PatternSet struct {
	nodes    []node
	words    []dictEntry
	numEdges int
	finished *Automaton
}

// New creates an empty PatternSet.
func New() *PatternSet {
	return &PatternSet{
		nodes: []node{{fail: none, word: none}},
	}
}

// CanAdd returns true if the pattern can be added to the set.
func (ps *PatternSet) CanAdd(pattern string) bool {
	return ps.finished == nil && len(pattern) > 0
}

// Add adds a pattern to the set. Adding a pattern that is already present does
// nothing.
func (ps *PatternSet) Add(pattern string) error {
	if ps.finished != nil {
		return ErrFinished
	}
	if len(pattern) == 0 {
		return ErrEmptyPattern
	}

	n := int32(rootNode)
	for i := 0; i < len(pattern); i++ {
		n = ps.child(n, pattern[i])
	}

	if ps.nodes[n].word == none {
		ps.words = append(ps.words, dictEntry{size: int32(len(pattern)), suffix: none})
		ps.nodes[n].word = int32(len(ps.words) - 1)
	}
	return nil
}

// AddBytes is like Add but takes the pattern as a byte slice.
func (ps *PatternSet) AddBytes(pattern []byte) error {
	return ps.Add(string(pattern))
}

// NumAdded returns the number of distinct patterns added.
func (ps *PatternSet) NumAdded() int {
	if ps.finished != nil {
		return ps.finished.NumPatterns()
	}
	return len(ps.words)
}

// child returns the child of parent along ch, creating it if needed.
func (ps *PatternSet) child(parent int32, ch byte) int32 {
	edges := ps.nodes[parent].edges
	i, found := slices.BinarySearchFunc(edges, ch, compareEdge)
	if found {
		return edges[i].node
	}

	id := int32(len(ps.nodes))
	ps.nodes = append(ps.nodes, node{fail: none, word: none})
	ps.nodes[parent].edges = slices.Insert(edges, i, edge{ch: ch, node: id})
	ps.numEdges++
	return id
}

func compareEdge(e edge, ch byte) int {
	return int(e.ch) - int(ch)
}
