package ring

import (
	"bufio"
	"fmt"
	"io"

	"github.com/latticore/latticore/utils/buffer"
)

// BinarySize returns the serialized size of the object in bytes.
func (p *Poly) BinarySize() int {
	return 1 + p.params.BinarySize() + p.values.BinarySize()
}

// WriteTo writes the object on an io.Writer: the format, the parameters and the entries.
// It implements the io.WriterTo interface, and will write exactly object.BinarySize() bytes on w.
func (p *Poly) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if inc, err = buffer.WriteUint8(w, uint8(p.format)); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = p.params.WriteTo(w); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = p.values.WriteTo(w); err != nil {
			return n + inc, err
		}

		n += inc

		return n, w.Flush()

	default:
		return p.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Writer. It implements the
// io.ReaderFrom interface. The decoded polynomial is bound to the DefaultContext.
func (p *Poly) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var inc int64

		var format uint8
		if inc, err = buffer.ReadUint8(r, &format); err != nil {
			return n + inc, err
		}

		n += inc

		if Format(format) != Coefficient && Format(format) != Evaluation {
			return n, fmt.Errorf("cannot ReadFrom: invalid format %d", format)
		}

		var params ElementParams
		if inc, err = params.ReadFrom(r); err != nil {
			return n + inc, fmt.Errorf("cannot ReadFrom: %w", err)
		}

		n += inc

		values := new(VecMod)
		if inc, err = values.ReadFrom(r); err != nil {
			return n + inc, fmt.Errorf("cannot ReadFrom: %w", err)
		}

		n += inc

		if values.Modulus() != params.modulus || values.Len() != params.RingDimension() {
			return n, fmt.Errorf("cannot ReadFrom: entries (modulus %d, length %d) do not match the parameters %s", values.Modulus(), values.Len(), params)
		}

		p.ctx = DefaultContext()
		p.params = params
		p.format = Format(format)
		p.values = values

		return n, nil

	default:
		return p.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (p *Poly) MarshalBinary() (data []byte, err error) {
	buf := buffer.NewBufferSize(p.BinarySize())
	_, err = p.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by
// MarshalBinary or WriteTo on the object.
func (p *Poly) UnmarshalBinary(data []byte) (err error) {
	_, err = p.ReadFrom(buffer.NewBuffer(data))
	return
}
