package formdata

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

type phase int

const (
	phaseText phase = iota
	phaseParts
	phaseTrailer
	phaseDone
)

func (p phase) String() string {
	switch p {
	case phaseText:
		return "text"
	case phaseParts:
		return "parts"
	case phaseTrailer:
		return "trailer"
	default:
		return "done"
	}
}

// Body is a prepared multipart/form-data request body.
//
// All text fields are served first from a single buffer, then file and
// stream fields in the order they were added, then the closing delimiter.
// A field's file or stream is closed as soon as it has been read to the end.
//
// A Body is read once, by one reader.
type Body struct {
	boundary    string
	text        *bytes.Reader
	parts       []*part
	trailer     *strings.Reader
	length      int64
	lengthKnown bool
	phase       phase
	closed      bool
	logger      Logger
}

// Boundary returns the bare boundary token.
func (b *Body) Boundary() string {
	return b.boundary
}

// ContentType returns the value for the request's Content-Type header.
func (b *Body) ContentType() string {
	return "multipart/form-data; boundary=" + b.boundary
}

// ContentLength returns the exact encoded size, or false when the form
// contains a stream field.
func (b *Body) ContentLength() (int64, bool) {
	if !b.lengthKnown {
		return 0, false
	}
	return b.length, true
}

// Read fills p with as much of the body as is available without blocking on
// more than one short underlying read. A zero-length p returns immediately.
func (b *Body) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if b.closed {
		return 0, ErrClosed
	}

	n := 0
	for n < len(p) {
		switch b.phase {
		case phaseText:
			m, _ := b.text.Read(p[n:])
			n += m
			if b.text.Len() == 0 {
				b.advance(phaseParts)
			}

		case phaseParts:
			if len(b.parts) == 0 {
				b.advance(phaseTrailer)
				continue
			}

			head := b.parts[0]
			if head.header.Len() > 0 {
				m, _ := head.header.Read(p[n:])
				n += m
				continue
			}

			want := len(p) - n
			m, err := head.body.Read(p[n:])
			n += m
			if errors.Is(err, io.EOF) {
				if cerr := b.release(); cerr != nil {
					return n, cerr
				}
				continue
			}
			if err != nil {
				return n, err
			}
			if m < want {
				// Short read: hand back what we have rather than block again.
				return n, nil
			}

		case phaseTrailer:
			m, _ := b.trailer.Read(p[n:])
			n += m
			if b.trailer.Len() == 0 {
				b.advance(phaseDone)
			}

		case phaseDone:
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}
	}

	return n, nil
}

// Close releases every file or stream that has not been read to the end.
func (b *Body) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	b.phase = phaseDone

	var errs []error
	for _, p := range b.parts {
		if err := p.close(); err != nil {
			errs = append(errs, fieldError(p.name, err))
		}
	}
	b.parts = nil
	return errors.Join(errs...)
}

func (b *Body) advance(next phase) {
	b.logger.Debug("body phase", "from", b.phase, "to", next)
	b.phase = next
}

// release drops the drained head part and closes its resource.
func (b *Body) release() error {
	head := b.parts[0]
	b.parts[0] = nil
	b.parts = b.parts[1:]

	b.logger.Debug("field drained", "field", head.name)
	if err := head.close(); err != nil {
		return fieldError(head.name, err)
	}
	return nil
}
