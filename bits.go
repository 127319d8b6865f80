package ahocorasick

import (
	"io"
	"math/bits"
)

// bitWriter packs values of arbitrary bit width, most significant bit first.
// The first error is kept and all later writes are dropped.
type bitWriter struct {
	w     io.Writer
	cache uint8
	used  int
	n     int64
	err   error
}

func newBitWriter(w io.Writer) *bitWriter {
	return &bitWriter{w: w}
}

func (w *bitWriter) WriteBits(data uint64, n int) {
	for n > 0 && w.err == nil {
		written := n
		if written+w.used > 8 {
			written = 8 - w.used
		}

		mask := uint8(uint16(1<<written) - 1)
		w.used += written
		w.cache = (w.cache << written) | byte(data>>(n-written))&mask

		if w.used == 8 {
			w.emit(w.cache)
			w.cache = 0
			w.used = 0
		}

		n -= written
	}
}

func (w *bitWriter) emit(b byte) {
	_, w.err = w.w.Write([]byte{b})
	if w.err == nil {
		w.n++
	}
}

// WriteUnsigned writes n in 7-bit groups, high group first, with the top bit
// of every byte but the last one set.
func (w *bitWriter) WriteUnsigned(n uint64) {
	groups := unsignedLength(n)
	for i := groups - 1; i > 0; i-- {
		w.WriteBits((n>>(7*i))&0x7f|0x80, 8)
	}
	w.WriteBits(n&0x7f, 8)
}

// Flush pads the last partial byte with zeros.
func (w *bitWriter) Flush() error {
	if w.used > 0 && w.err == nil {
		w.emit(w.cache << (8 - w.used))
		w.cache = 0
		w.used = 0
	}
	return w.err
}

// Written returns the number of whole bytes written so far.
func (w *bitWriter) Written() int64 {
	return w.n
}

func unsignedLength(n uint64) int {
	if n == 0 {
		return 1
	}
	return (bits.Len64(n) + 6) / 7
}

var maskTop = []byte{
	0xff,
	0x7f,
	0x3f,
	0x1f,
	0x0f,
	0x07,
	0x03,
	0x01,
	0x00,
}

// bitSeeker reads bits from a given offset in bits. Reading past the end of
// the data yields zeros and records io.ErrUnexpectedEOF.
type bitSeeker struct {
	r      io.ReaderAt
	p      int64
	buffer []byte
	err    error
}

func newBitSeeker(r io.ReaderAt) *bitSeeker {
	return &bitSeeker{r: r, buffer: make([]byte, 1)}
}

func (r *bitSeeker) nextByte() byte {
	if r.err != nil {
		return 0
	}
	if _, err := r.r.ReadAt(r.buffer, r.p>>3); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		r.err = err
		return 0
	}
	return r.buffer[0]
}

func (r *bitSeeker) ReadBits(n int64) uint64 {
	if n == 0 {
		return 0
	}

	if r.p&7+n <= 8 {
		ret := uint64((r.nextByte() & maskTop[r.p&7]) >> (8 - r.p&7 - n))
		r.p += n
		return ret
	}

	// bits lie incompletely in the current byte
	result := uint64(r.nextByte() & maskTop[r.p&7])

	l := 8 - r.p&7
	r.p += l
	n -= l

	for n >= 8 {
		result = (result << 8) | uint64(r.nextByte())
		r.p += 8
		n -= 8
	}

	if n > 0 {
		result = (result << n) | uint64(r.nextByte()>>(8-n))
		r.p += n
	}

	return result
}

// ReadUnsigned reads a value written by WriteUnsigned. Values that do not fit
// in 64 bits set an error.
func (r *bitSeeker) ReadUnsigned() uint64 {
	var result uint64
	for i := 0; ; i++ {
		if i == 10 {
			r.err = errVarint
			return 0
		}
		d := r.ReadBits(8)
		result = (result << 7) | d&0x7f
		if d&0x80 == 0 || r.err != nil {
			break
		}
	}
	return result
}

func (r *bitSeeker) Seek(offset int64) {
	r.p = offset
}

func (r *bitSeeker) Tell() int64 {
	return r.p
}

func (r *bitSeeker) Err() error {
	return r.err
}
