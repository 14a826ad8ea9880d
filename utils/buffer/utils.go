package buffer

import (
	"bufio"
	"bytes"
	"encoding"
	"io"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

// BinarySerializer is a testing interface for byte encoding and decoding.
type BinarySerializer interface {
	io.WriterTo
	io.ReaderFrom
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// binarySizer is implemented by objects that can report the size of their encoding.
type binarySizer interface {
	BinarySize() int
}

// RequireSerializerCorrect tests that:
// - input and output implement BinarySerializer
// - input.WriteTo(io.Writer) writes a number of bytes on the writer equal to the number of bytes generated by input.MarshalBinary()
// - input.WriteTo buffered bytes are equal to the bytes generated by input.MarshalBinary()
// - output.ReadFrom(io.Reader) reads a number of bytes on the reader equal to the number of bytes written using input.WriteTo(io.Writer)
// - applies require.Equalf between the original and reconstructed object for
// - all the above WriteTo, ReadFrom, MarshalBinary and UnmarshalBinary do not return an error
func RequireSerializerCorrect(t *testing.T, input BinarySerializer) {

	// Allocates a new object of the underlying type of input
	output := reflectNew(input)

	data := []byte{}
	buf := bytes.NewBuffer(data)
	bufw := bufio.NewWriter(buf)

	// Check io.Writer
	bytesWritten, err := input.WriteTo(bufw)
	require.NoError(t, err)
	require.NoError(t, bufw.Flush())

	if sizer, isSizer := input.(binarySizer); isSizer {
		require.Equal(t, sizer.BinarySize(), int(bytesWritten), "BinarySize does not match the number of bytes written")
	}

	// Check io.Reader
	bytesRead, err := output.ReadFrom(bufio.NewReader(buf))
	require.NoError(t, err)
	require.Equal(t, bytesWritten, bytesRead, "number of bytes written != number of bytes read")
	require.Equal(t, input, output)

	// Check encoding.BinaryMarshaler
	data2, err := input.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, int(bytesWritten), len(data2))

	// Check encoding.BinaryUnmarshaler
	output2 := reflectNew(input)
	require.NoError(t, output2.UnmarshalBinary(data2))
	require.Equal(t, input, output2)
}

func reflectNew(input BinarySerializer) BinarySerializer {
	return reflect.New(reflect.TypeOf(input).Elem()).Interface().(BinarySerializer)
}
