package formdata

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// part is a field ready to stream: its precomputed header, then its body.
type part struct {
	name   string
	header *bytes.Reader
	body   io.Reader
}

func (p *part) close() error {
	if c, ok := p.body.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Prepare moves every field out of the form and returns the encoded body.
// Files are opened and measured here. On error nothing is returned and every
// resource handed to the form is released; the form is empty either way.
func (f *Form) Prepare() (*Body, error) {
	fields := f.fields
	f.fields = nil

	f.logger.Debug("preparing form", "fields", len(fields))

	boundary := f.boundaries.Boundary()
	delim := "\r\n--" + boundary

	var (
		text        bytes.Buffer
		parts       []*part
		length      int64
		lengthKnown = true
	)

	for i, fld := range fields {
		switch data := fld.data.(type) {
		case textPayload:
			fmt.Fprintf(&text, "%s\r\nContent-Disposition: form-data; name=\"%s\"\r\n\r\n%s",
				delim, escapeQuotes(fld.name), data.value)

		case filePayload:
			p, n, err := openFile(fld.name, data.path, delim)
			if err != nil {
				releaseParts(parts)
				releaseFields(fields[i+1:])
				return nil, err
			}
			length += n
			parts = append(parts, p)

		case streamPayload:
			lengthKnown = false
			parts = append(parts, newPart(fld.name, delim, data.contentType, data.filename, data.src))
		}
	}

	var trailer string
	if text.Len() > 0 || len(parts) > 0 {
		trailer = delim + "--"
	}

	length += int64(text.Len()) + int64(len(trailer))

	return &Body{
		boundary:    boundary,
		text:        bytes.NewReader(text.Bytes()),
		parts:       parts,
		trailer:     strings.NewReader(trailer),
		length:      length,
		lengthKnown: lengthKnown,
		logger:      f.logger,
	}, nil
}

// openFile opens path and returns its part along with the number of bytes
// the part contributes to the body.
func openFile(name, path, delim string) (*part, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fieldError(name, err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, 0, fieldError(name, err)
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, 0, fieldError(name, fmt.Errorf("%s is a directory", path))
	}

	contentType, filename := typeAndName(path)
	p := newPart(name, delim, contentType, filename, file)

	return p, info.Size() + int64(p.header.Len()), nil
}

// typeAndName infers a content type from the extension of path and a
// filename from its last element.
func typeAndName(path string) (string, string) {
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = DefaultContentType
	}

	filename := filepath.Base(path)
	if filename == "." || filename == string(filepath.Separator) {
		filename = ""
	}
	return contentType, filename
}

func newPart(name, delim, contentType, filename string, body io.Reader) *part {
	var hdr bytes.Buffer
	fmt.Fprintf(&hdr, "%s\r\nContent-Disposition: form-data; name=\"%s\"", delim, escapeQuotes(name))
	if filename != "" {
		fmt.Fprintf(&hdr, "; filename=\"%s\"", escapeQuotes(filename))
	}
	fmt.Fprintf(&hdr, "\r\nContent-Type: %s\r\n\r\n", contentType)

	if body == nil {
		body = strings.NewReader("")
	}

	return &part{
		name:   name,
		header: bytes.NewReader(hdr.Bytes()),
		body:   body,
	}
}

func releaseParts(parts []*part) {
	for _, p := range parts {
		_ = p.close()
	}
}

// releaseFields closes caller streams that never made it into a part.
func releaseFields(fields []field) {
	for _, fld := range fields {
		if data, ok := fld.data.(streamPayload); ok {
			if c, ok := data.src.(io.Closer); ok {
				_ = c.Close()
			}
		}
	}
}
