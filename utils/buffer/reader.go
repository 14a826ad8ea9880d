package buffer

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ReadInt reads an int encoded as an uint64 from r.
func ReadInt(r Reader, c *int) (n int64, err error) {

	if c == nil {
		return 0, fmt.Errorf("cannot ReadInt: c is nil")
	}

	var v uint64
	if n, err = ReadUint64(r, &v); err != nil {
		return
	}

	*c = int(v)

	return
}

// ReadUint8 reads a byte from r.
func ReadUint8(r Reader, c *uint8) (n int64, err error) {

	if c == nil {
		return 0, fmt.Errorf("cannot ReadUint8: c is nil")
	}

	var bb = [1]byte{}

	var nint int
	if nint, err = io.ReadFull(r, bb[:]); err != nil {
		return int64(nint), err
	}

	*c = bb[0]

	return int64(nint), nil
}

// ReadUint64 reads a little-endian uint64 from r.
func ReadUint64(r Reader, c *uint64) (n int64, err error) {

	if c == nil {
		return 0, fmt.Errorf("cannot ReadUint64: c is nil")
	}

	var bb = [8]byte{}

	var nint int
	if nint, err = io.ReadFull(r, bb[:]); err != nil {
		return int64(nint), err
	}

	*c = binary.LittleEndian.Uint64(bb[:])

	return int64(nint), nil
}

// ReadUint64Slice reads len(c) little-endian uint64 from r into c.
func ReadUint64Slice(r Reader, c []uint64) (n int64, err error) {

	if len(c) == 0 {
		return
	}

	// Peek at most what is needed, or what is buffered.
	size := len(c) << 3
	if buffered := r.Size(); buffered < size {
		size = buffered
	}
	size &^= 7

	if size == 0 {
		// The buffer cannot hold a single value, falls back on single reads.
		for i := range c {
			var inc int64
			if inc, err = ReadUint64(r, &c[i]); err != nil {
				return n + inc, err
			}
			n += inc
		}
		return
	}

	var slice []byte
	if slice, err = r.Peek(size); err != nil {
		return
	}

	N := len(slice) >> 3

	for i, j := 0, 0; i < N; i, j = i+1, j+8 {
		c[i] = binary.LittleEndian.Uint64(slice[j:])
	}

	var inc int
	if inc, err = r.Discard(N << 3); err != nil {
		return int64(inc), err
	}

	n += int64(inc)

	if N == len(c) {
		return
	}

	var inc64 int64
	inc64, err = ReadUint64Slice(r, c[N:])

	return n + inc64, err
}
