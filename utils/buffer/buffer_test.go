package buffer

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuffer(t *testing.T) {

	values := make([]uint64, 37)
	for i := range values {
		values[i] = uint64(i) * 0x0123456789abcdef
	}

	t.Run("Buffer", func(t *testing.T) {
		b := NewBufferSize(1 + 8 + 8 + len(values)<<3)

		_, err := WriteUint8(b, 7)
		require.NoError(t, err)
		_, err = WriteInt(b, 42)
		require.NoError(t, err)
		_, err = WriteUint64(b, 0xdeadbeef)
		require.NoError(t, err)
		_, err = WriteUint64Slice(b, values)
		require.NoError(t, err)
		require.Equal(t, 0, b.Available())

		_, err = WriteUint8(b, 1)
		require.Error(t, err)

		var c8 uint8
		var ci int
		var c64 uint64
		out := make([]uint64, len(values))

		_, err = ReadUint8(b, &c8)
		require.NoError(t, err)
		_, err = ReadInt(b, &ci)
		require.NoError(t, err)
		_, err = ReadUint64(b, &c64)
		require.NoError(t, err)
		_, err = ReadUint64Slice(b, out)
		require.NoError(t, err)

		require.Equal(t, uint8(7), c8)
		require.Equal(t, 42, ci)
		require.Equal(t, uint64(0xdeadbeef), c64)
		require.Equal(t, values, out)
	})

	t.Run("Bufio/SmallBuffer", func(t *testing.T) {
		buf := new(bytes.Buffer)
		w := bufio.NewWriterSize(buf, 16)

		n, err := WriteUint64Slice(w, values)
		require.NoError(t, err)
		require.NoError(t, w.Flush())
		require.Equal(t, int64(len(values)<<3), n)

		out := make([]uint64, len(values))
		r := bufio.NewReaderSize(buf, 16)
		m, err := ReadUint64Slice(r, out)
		require.NoError(t, err)
		require.Equal(t, n, m)
		require.Equal(t, values, out)
	})
}
