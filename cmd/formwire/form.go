package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"

	"github.com/torosent/formwire/internal/config"
	"github.com/torosent/formwire/internal/formdata"
)

// sniffLen matches the amount of data mimetype inspects by default.
const sniffLen = 3072

const stdinFilename = "stdin"

// buildForm adds fields in order. Stdin is read lazily; only the first
// sniffLen bytes are buffered, and only when no content type is given.
func buildForm(specs []config.FieldSpec, stdin io.Reader, logger formdata.Logger) (*formdata.Form, error) {
	form := formdata.NewForm(formdata.WithLogger(logger))
	for _, spec := range specs {
		switch spec.Kind() {
		case config.FieldKindText:
			form.AddText(spec.Name, spec.Value)
		case config.FieldKindFile:
			form.AddFile(spec.Name, spec.File)
		case config.FieldKindStdin:
			src, contentType, filename, err := stdinStream(stdin, spec)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", spec.Name, err)
			}
			form.AddStream(spec.Name, src, filename, contentType)
		}
	}
	return form, nil
}

func stdinStream(stdin io.Reader, spec config.FieldSpec) (io.Reader, string, string, error) {
	if stdin == nil {
		return nil, "", "", errors.New("stdin is not available")
	}
	if spec.ContentType != "" {
		return stdin, spec.ContentType, spec.Filename, nil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(stdin, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, "", "", fmt.Errorf("read stdin: %w", err)
	}
	head = head[:n]

	mtype := mimetype.Detect(head)
	filename := spec.Filename
	if filename == "" {
		filename = stdinFilename + mtype.Extension()
	}
	return io.MultiReader(bytes.NewReader(head), stdin), mtype.String(), filename, nil
}
