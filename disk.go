package ahocorasick

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"
	"os"

	"golang.org/x/exp/mmap"
)

/* FILE FORMAT
- 32 bits: total size of the data in bytes
- 32 bits: magic "ACA1"
- 8 bits: nbits, the number of bits to represent a node handle + 1
- 8 bits: wbits, the number of bits to represent a pattern handle + 1
- 8 bits: lbits, the number of bits to represent a pattern length
- 7code: number of patterns
- 7code: number of nodes
- 7code: number of edges
- for each pattern:
	- lbits: length
	- wbits: suffix + 1 (0 means no shorter suffix)
- for each node:
	- nbits: fail + 1 (0 for the root)
	- wbits: word + 1 (0 means no pattern)
	- 7code: number of edges
	- for each edge, in increasing byte order:
		8 bits: byte
		nbits: child node

All handles are stored plus one so that zero stands for "none". Values are
written most significant bit first.

We define 7code to be an unsigned that can be read the following way:

result = 0
for {
	data = next 8 bits
	result = result << 7 | data & 0x7f
	if data & 0x80 == 0 break
}
*/

// ErrCorrupt is returned when reading data that is not a valid automaton.
var ErrCorrupt = errors.New("ahocorasick: corrupt automaton data")

var errVarint = errors.New("varint overflows 64 bits")

const magic = 0x41434131 // "ACA1"

const headerBits = 32 + 32 + 8 + 8 + 8

type layout struct {
	nbits, wbits, lbits int
}

func (a *Automaton) layout() layout {
	var maxLen int32
	for _, d := range a.words {
		if d.size > maxLen {
			maxLen = d.size
		}
	}
	return layout{
		nbits: bits.Len(uint(len(a.nodes))),
		wbits: bits.Len(uint(len(a.words))),
		lbits: bits.Len(uint(maxLen)),
	}
}

// sizeBits returns the encoded size of the automaton in bits.
func (a *Automaton) sizeBits(l layout) int64 {
	pos := int64(headerBits)
	pos += int64(unsignedLength(uint64(len(a.words)))) * 8
	pos += int64(unsignedLength(uint64(len(a.nodes)))) * 8
	pos += int64(unsignedLength(uint64(a.numEdges))) * 8
	pos += int64(len(a.words)) * int64(l.lbits+l.wbits)
	for _, n := range a.nodes {
		pos += int64(l.nbits + l.wbits)
		pos += int64(unsignedLength(uint64(len(n.edges)))) * 8
		pos += int64(len(n.edges)) * int64(8+l.nbits)
	}
	return pos
}

// Save writes the automaton to a file. Returns the number of bytes written
func (a *Automaton) Save(filename string) (int64, error) {
	f, err := os.Create(filename)
	if err != nil {
		return 0, err
	}

	n, err := a.WriteTo(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// WriteTo writes the automaton to w. Returns the number of bytes written
func (a *Automaton) WriteTo(wIn io.Writer) (int64, error) {
	l := a.layout()
	size := (a.sizeBits(l) + 7) / 8
	if size > math.MaxUint32 {
		return 0, fmt.Errorf("ahocorasick: automaton too large to encode (%d bytes)", size)
	}

	w := newBitWriter(wIn)

	w.WriteBits(uint64(size), 32)
	w.WriteBits(magic, 32)
	w.WriteBits(uint64(l.nbits), 8)
	w.WriteBits(uint64(l.wbits), 8)
	w.WriteBits(uint64(l.lbits), 8)

	w.WriteUnsigned(uint64(len(a.words)))
	w.WriteUnsigned(uint64(len(a.nodes)))
	w.WriteUnsigned(uint64(a.numEdges))

	for _, d := range a.words {
		w.WriteBits(uint64(d.size), l.lbits)
		w.WriteBits(uint64(d.suffix+1), l.wbits)
	}

	for _, n := range a.nodes {
		w.WriteBits(uint64(n.fail+1), l.nbits)
		w.WriteBits(uint64(n.word+1), l.wbits)
		w.WriteUnsigned(uint64(len(n.edges)))
		for _, e := range n.edges {
			w.WriteBits(uint64(e.ch), 8)
			w.WriteBits(uint64(e.node), l.nbits)
		}
	}

	err := w.Flush()
	return w.Written(), err
}

// Load loads the automaton from a file
func Load(filename string) (*Automaton, error) {
	f, err := mmap.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	a, err := Read(f, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return a, nil
}

// Read decodes an automaton stored at the given offset of f. The data is
// checked fully, so that a damaged file results in ErrCorrupt rather than a
// search that misbehaves.
func Read(f io.ReaderAt, offset int64) (*Automaton, error) {
	r := newBitSeeker(io.NewSectionReader(f, offset, 4))
	size := int64(r.ReadBits(32))
	if err := r.Err(); err != nil {
		return nil, corrupt("reading size: %v", err)
	}
	if size*8 < headerBits {
		return nil, corrupt("size %d is too small", size)
	}

	r = newBitSeeker(io.NewSectionReader(f, offset, size))
	r.Seek(32)
	if m := r.ReadBits(32); m != magic {
		if err := r.Err(); err != nil {
			return nil, corrupt("reading magic: %v", err)
		}
		return nil, corrupt("bad magic %08x", m)
	}

	l := layout{
		nbits: int(r.ReadBits(8)),
		wbits: int(r.ReadBits(8)),
		lbits: int(r.ReadBits(8)),
	}
	numWords := r.ReadUnsigned()
	numNodes := r.ReadUnsigned()
	numEdges := r.ReadUnsigned()
	if err := r.Err(); err != nil {
		return nil, corrupt("reading header: %v", err)
	}

	if numNodes == 0 || numNodes > math.MaxInt32 || numWords > math.MaxInt32 {
		return nil, corrupt("%d nodes, %d patterns", numNodes, numWords)
	}
	if numEdges != numNodes-1 {
		return nil, corrupt("%d edges for %d nodes", numEdges, numNodes)
	}
	if l.nbits != bits.Len64(numNodes) || l.wbits != bits.Len64(numWords) || l.lbits > 31 {
		return nil, corrupt("field widths %d/%d/%d", l.nbits, l.wbits, l.lbits)
	}
	if numWords > 0 && l.lbits == 0 {
		return nil, corrupt("zero width pattern lengths")
	}
	// every node takes at least 8 bits and every pattern at least lbits
	if minBits := numNodes*8 + numWords*uint64(l.lbits+l.wbits); minBits > uint64(size)*8 {
		return nil, corrupt("%d nodes and %d patterns do not fit in %d bytes", numNodes, numWords, size)
	}

	a := &Automaton{
		nodes:    make([]node, numNodes),
		numEdges: int(numEdges),
	}
	if numWords > 0 {
		a.words = make([]dictEntry, numWords)
	}

	for i := range a.words {
		a.words[i] = dictEntry{
			size:   int32(r.ReadBits(int64(l.lbits))),
			suffix: int32(r.ReadBits(int64(l.wbits))) - 1,
		}
		if err := r.Err(); err != nil {
			return nil, corrupt("reading pattern %d: %v", i, err)
		}
		if d := a.words[i]; d.size == 0 || d.suffix >= int32(numWords) {
			return nil, corrupt("pattern %d has length %d and suffix %d", i, d.size, d.suffix)
		}
	}

	edgesLeft := numEdges
	for i := range a.nodes {
		n := &a.nodes[i]
		n.fail = int32(r.ReadBits(int64(l.nbits))) - 1
		n.word = int32(r.ReadBits(int64(l.wbits))) - 1
		count := r.ReadUnsigned()
		if err := r.Err(); err != nil {
			return nil, corrupt("reading node %d: %v", i, err)
		}
		if n.fail >= int32(numNodes) || n.word >= int32(numWords) || count > edgesLeft {
			return nil, corrupt("node %d has fail %d, word %d, %d edges", i, n.fail, n.word, count)
		}
		edgesLeft -= count

		if count == 0 {
			continue
		}
		n.edges = make([]edge, count)
		for j := range n.edges {
			e := edge{
				ch:   byte(r.ReadBits(8)),
				node: int32(r.ReadBits(int64(l.nbits))),
			}
			if e.node <= rootNode || e.node >= int32(numNodes) {
				return nil, corrupt("node %d has an edge to %d", i, e.node)
			}
			if j > 0 && n.edges[j-1].ch >= e.ch {
				return nil, corrupt("node %d has unsorted edges", i)
			}
			n.edges[j] = e
		}
		if err := r.Err(); err != nil {
			return nil, corrupt("reading edges of node %d: %v", i, err)
		}
	}

	if err := a.check(); err != nil {
		return nil, err
	}
	return a, nil
}

// check verifies that the nodes form a tree under the root, that fail links
// always lead to a shorter prefix, and that pattern chains always lead to a
// shorter pattern. Searching only ever follows those links, so this is enough
// for every search to end and to stay within the text.
func (a *Automaton) check() error {
	depth := make([]int32, len(a.nodes))
	for i := range depth {
		depth[i] = none
	}
	depth[rootNode] = 0

	queue := []int32{rootNode}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range a.nodes[id].edges {
			if depth[e.node] != none {
				return corrupt("node %d is reachable twice", e.node)
			}
			depth[e.node] = depth[id] + 1
			queue = append(queue, e.node)
		}
	}

	for id, n := range a.nodes {
		if depth[id] == none {
			return corrupt("node %d is unreachable", id)
		}
		if id == rootNode {
			if n.fail != none {
				return corrupt("root has a fail link")
			}
		} else if n.fail == none || depth[n.fail] >= depth[id] {
			return corrupt("node %d has fail link %d", id, n.fail)
		}
		if n.word != none && a.words[n.word].size > depth[id] {
			return corrupt("node %d at depth %d has pattern %d", id, depth[id], n.word)
		}
	}

	for id, d := range a.words {
		if d.suffix != none && a.words[d.suffix].size >= d.size {
			return corrupt("pattern %d has suffix %d", id, d.suffix)
		}
	}
	return nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}

// DumpFile writes a description of every record of an encoded automaton to w.
func DumpFile(w io.Writer, f io.ReaderAt) error {
	r := newBitSeeker(f)
	p := &dumpPrinter{w: w}

	size := r.ReadBits(32)
	p.printf("[%08x] Size=%v bytes\n", r.Tell()-32, size)
	if err := r.Err(); err != nil {
		return err
	}

	// reads past the recorded size fail instead of running into what follows
	r = newBitSeeker(io.NewSectionReader(f, 0, int64(size)))
	r.Seek(32)

	m := r.ReadBits(32)
	p.printf("[%08x] Magic=%08x\n", r.Tell()-32, m)

	nbits := r.ReadBits(8)
	wbits := r.ReadBits(8)
	lbits := r.ReadBits(8)
	p.printf("[%08x] nbits=%d wbits=%d lbits=%d\n", r.Tell()-24, nbits, wbits, lbits)

	at := r.Tell()
	wordCount := r.ReadUnsigned()
	p.printf("[%08x] PatternCount=%v\n", at, wordCount)

	at = r.Tell()
	nodeCount := r.ReadUnsigned()
	p.printf("[%08x] NodeCount=%v\n", at, nodeCount)

	at = r.Tell()
	edgeCount := r.ReadUnsigned()
	p.printf("[%08x] EdgeCount=%v\n", at, edgeCount)

	if err := r.Err(); err != nil {
		return err
	}
	if err := dumpFits(size, nbits, wbits, lbits, wordCount, nodeCount); err != nil {
		p.printf("%v\n", err)
		return err
	}

	for i := uint64(0); i < wordCount && r.Err() == nil && p.err == nil; i++ {
		at = r.Tell()
		length := r.ReadBits(int64(lbits))
		suffix := r.ReadBits(int64(wbits))
		p.printf("[%08x] Pattern %d len=%d suffix=%s\n", at, i, length, handle(int32(suffix)-1))
	}

	for i := uint64(0); i < nodeCount && r.Err() == nil && p.err == nil; i++ {
		at = r.Tell()
		fail := r.ReadBits(int64(nbits))
		word := r.ReadBits(int64(wbits))
		edges := r.ReadUnsigned()
		p.printf("[%08x] Node %d fail=%s word=%s has %d edges\n",
			at, i, handle(int32(fail)-1), handle(int32(word)-1), edges)

		for j := uint64(0); j < edges && r.Err() == nil && p.err == nil; j++ {
			at = r.Tell()
			ch := r.ReadBits(8)
			child := r.ReadBits(int64(nbits))
			p.printf("[%08x] %q goto %d\n", at, byte(ch), child)
		}
	}

	if p.err != nil {
		return p.err
	}
	return r.Err()
}

// dumpFits rejects counts that cannot be stored in size bytes. Fields of
// width zero read nothing, so without it a forged count would keep the dump
// going without ever reaching the end of the data.
func dumpFits(size, nbits, wbits, lbits, numWords, numNodes uint64) error {
	if numNodes > math.MaxInt32 || numWords > math.MaxInt32 {
		return corrupt("%d nodes, %d patterns", numNodes, numWords)
	}
	if nbits > 32 || wbits > 32 || lbits > 31 {
		return corrupt("field widths %d/%d/%d", nbits, wbits, lbits)
	}
	if numWords > 0 && lbits+wbits == 0 {
		return corrupt("zero width patterns")
	}
	if minBits := numNodes*8 + numWords*(lbits+wbits); minBits > size*8 {
		return corrupt("%d nodes and %d patterns do not fit in %d bytes", numNodes, numWords, size)
	}
	return nil
}

type dumpPrinter struct {
	w   io.Writer
	err error
}

func (p *dumpPrinter) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}
