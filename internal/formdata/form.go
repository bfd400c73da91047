package formdata

import "io"

// DefaultContentType is used for streams added without a content type and
// for files whose extension has no registered type.
const DefaultContentType = "application/octet-stream"

// Logger receives debug output from preparation and streaming.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(interface{}, ...interface{}) {}

// Option configures a Form.
type Option func(*Form)

// WithBoundarySource overrides the process-wide boundary generator.
func WithBoundarySource(src BoundarySource) Option {
	return func(f *Form) {
		if src != nil {
			f.boundaries = src
		}
	}
}

// WithLogger routes debug output to l.
func WithLogger(l Logger) Option {
	return func(f *Form) {
		if l != nil {
			f.logger = l
		}
	}
}

// payload is the closed set of field sources: textPayload, filePayload and
// streamPayload.
type payload interface {
	isPayload()
}

type textPayload struct {
	value string
}

type filePayload struct {
	path string
}

type streamPayload struct {
	filename    string
	contentType string
	src         io.Reader
}

func (textPayload) isPayload()   {}
func (filePayload) isPayload()   {}
func (streamPayload) isPayload() {}

type field struct {
	name string
	data payload
}

// Form collects field descriptions for a multipart/form-data body.
// Nothing is opened or read until Prepare.
type Form struct {
	fields     []field
	boundaries BoundarySource
	logger     Logger
}

// NewForm creates an empty form.
func NewForm(opts ...Option) *Form {
	f := &Form{
		boundaries: defaultGenerator,
		logger:     nopLogger{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// AddText adds a text field.
func (f *Form) AddText(name, value string) *Form {
	f.fields = append(f.fields, field{name: name, data: textPayload{value: value}})
	return f
}

// AddFile adds a file field read from path.
// The path is not checked until Prepare.
func (f *Form) AddFile(name, path string) *Form {
	f.fields = append(f.fields, field{name: name, data: filePayload{path: path}})
	return f
}

// AddStream adds a field whose content is read from src.
// An empty filename omits the filename parameter; an empty contentType
// defaults to DefaultContentType. If src is also an io.Closer it is closed
// once drained or when the prepared body is closed.
func (f *Form) AddStream(name string, src io.Reader, filename, contentType string) *Form {
	if contentType == "" {
		contentType = DefaultContentType
	}
	f.fields = append(f.fields, field{
		name: name,
		data: streamPayload{
			filename:    filename,
			contentType: contentType,
			src:         src,
		},
	})
	return f
}

// Len returns the number of fields waiting to be prepared.
func (f *Form) Len() int {
	return len(f.fields)
}
