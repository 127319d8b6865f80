package ahocorasick

import (
	"fmt"
	"io"
	"slices"
	"strconv"
)

// Automaton is a finished dictionary, ready for searching. It is never
// modified after it is built and may be used from many goroutines at once.
type Automaton struct {
	nodes    []node
	words    []dictEntry
	numEdges int
}

// Searcher is the read-only query surface of a finished dictionary.
type Searcher interface {
	Search(text string) *Cursor
	FindAll(text string) []Match
	Contains(text string) bool
	IndexOf(pattern string) int
	Enumerate(fn EnumFn)
	NumPatterns() int
	NumNodes() int
	NumEdges() int
	Print(w io.Writer) error
}

var _ Searcher = (*Automaton)(nil)

// EnumFn is called by Enumerate for every prefix in the dictionary. index is
// the pattern index when final is true, and -1 otherwise.
type EnumFn = func(index int, prefix []byte, final bool) EnumerationResult

// EnumerationResult is returned by the enumeration function to indicate whether
// enumeration should continue below this prefix or stop altogether
type EnumerationResult = int

const (
	// Continue enumerating all prefixes below this one
	Continue EnumerationResult = iota

	// Skip will skip all prefixes below this one
	Skip

	// Stop will immediately stop enumerating
	Stop
)

// Compile builds an Automaton from a list of patterns.
func Compile(patterns []string) (*Automaton, error) {
	ps := New()
	for i, p := range patterns {
		if err := ps.Add(p); err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i, err)
		}
	}
	return ps.Finish(), nil
}

// MustCompile is like Compile but panics if a pattern cannot be added.
func MustCompile(patterns ...string) *Automaton {
	a, err := Compile(patterns)
	if err != nil {
		panic(err)
	}
	return a
}

// Finish computes the failure links and match chains and returns the
// Automaton. The nodes of the PatternSet are moved into the Automaton, and no
// more patterns can be added. Calling Finish again returns the same Automaton.
func (ps *PatternSet) Finish() *Automaton {
	if ps.finished != nil {
		return ps.finished
	}

	a := &Automaton{
		nodes:    ps.nodes,
		words:    ps.words,
		numEdges: ps.numEdges,
	}
	a.link()

	ps.nodes = nil
	ps.words = nil
	ps.finished = a
	return a
}

// link sets the fail links and the suffix chains of the dictionary entries by
// walking the trie breadth-first, so that every node on a node's fail path is
// done before the node itself.
func (a *Automaton) link() {
	// parent --ch--> node when we visit node.
	type visit struct {
		node   int32
		parent int32
		ch     byte
	}

	var queue []visit

	// The children of the root fail to the root. Their own word, if any, has
	// no shorter suffix in the dictionary.
	for _, e := range a.nodes[rootNode].edges {
		a.nodes[e.node].fail = rootNode
		for _, kid := range a.nodes[e.node].edges {
			queue = append(queue, visit{node: kid.node, parent: e.node, ch: kid.ch})
		}
	}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		candidate := a.nodes[v.parent].fail
		for {
			if kid := a.kid(candidate, v.ch); kid != none {
				candidate = kid
				break
			}
			if a.nodes[candidate].fail == none {
				// root; nowhere else to go
				break
			}
			candidate = a.nodes[candidate].fail
		}

		n := &a.nodes[v.node]
		n.fail = candidate
		if n.word != none {
			a.words[n.word].suffix = a.nodes[candidate].word
		} else {
			n.word = a.nodes[candidate].word
		}

		for _, kid := range n.edges {
			queue = append(queue, visit{node: kid.node, parent: v.node, ch: kid.ch})
		}
	}
}

// kid returns the child of n along ch, or none.
func (a *Automaton) kid(n int32, ch byte) int32 {
	edges := a.nodes[n].edges
	i, found := slices.BinarySearchFunc(edges, ch, compareEdge)
	if !found {
		return none
	}
	return edges[i].node
}

// step moves from state along ch, following fail links when there is no edge.
// From the root, a missing edge stays at the root.
func (a *Automaton) step(state int32, ch byte) int32 {
	for {
		if kid := a.kid(state, ch); kid != none {
			return kid
		}
		fail := a.nodes[state].fail
		if fail == none {
			return state
		}
		state = fail
	}
}

// NumPatterns returns the number of distinct patterns in the dictionary.
func (a *Automaton) NumPatterns() int {
	return len(a.words)
}

// NumNodes returns the number of nodes, including the root.
func (a *Automaton) NumNodes() int {
	return len(a.nodes)
}

// NumEdges returns the number of trie edges.
func (a *Automaton) NumEdges() int {
	return a.numEdges
}

// PatternLen returns the length of the pattern with the given index.
func (a *Automaton) PatternLen(index int) int {
	return int(a.words[index].size)
}

// IndexOf returns the index of the pattern, which is the order in which it was
// first added. If the pattern is not in the dictionary, it returns -1.
func (a *Automaton) IndexOf(pattern string) int {
	n := int32(rootNode)
	for i := 0; i < len(pattern); i++ {
		n = a.kid(n, pattern[i])
		if n == none {
			return -1
		}
	}
	return a.finalWord(n, len(pattern))
}

// finalWord returns the pattern that ends exactly at n, whose prefix has the
// given depth, or -1. A word inherited through the fail link is always
// shorter than the prefix itself.
func (a *Automaton) finalWord(n int32, depth int) int {
	w := a.nodes[n].word
	if w == none || int(a.words[w].size) != depth {
		return -1
	}
	return int(w)
}

// Enumerate will call the given method, passing it every prefix in the
// dictionary, in increasing byte order. Return Continue to continue
// enumeration, Skip to skip this branch, or Stop to stop enumeration.
func (a *Automaton) Enumerate(fn EnumFn) {
	a.enumerate(rootNode, nil, fn)
}

func (a *Automaton) enumerate(n int32, prefix []byte, fn EnumFn) EnumerationResult {
	index := a.finalWord(n, len(prefix))
	result := fn(index, prefix, index != -1)
	if result != Continue {
		return result
	}

	l := len(prefix)
	prefix = append(prefix, 0)
	for _, e := range a.nodes[n].edges {
		prefix[l] = e.ch
		result = a.enumerate(e.node, prefix, fn)
		if result == Stop {
			break
		}
	}
	return result
}

// Print writes all nodes with their edges, fail links and match chains.
func (a *Automaton) Print(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Automaton: %d patterns, %d nodes, %d edges\n",
		a.NumPatterns(), a.NumNodes(), a.NumEdges())
	if err != nil {
		return err
	}

	for id, n := range a.nodes {
		_, err = fmt.Fprintf(w, "node %d fail=%s word=%s\n", id, handle(n.fail), handle(n.word))
		if err != nil {
			return err
		}
		for _, e := range n.edges {
			if _, err = fmt.Fprintf(w, "  %q -> %d\n", e.ch, e.node); err != nil {
				return err
			}
		}
	}

	for id, d := range a.words {
		_, err = fmt.Fprintf(w, "pattern %d len=%d suffix=%s\n", id, d.size, handle(d.suffix))
		if err != nil {
			return err
		}
	}
	return nil
}

func handle(h int32) string {
	if h == none {
		return "-"
	}
	return strconv.Itoa(int(h))
}
