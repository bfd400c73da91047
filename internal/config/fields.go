package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFieldSpec parses a curl-style form argument:
//
//	name=value              text field
//	name=@path              file field, opened when the request is sent
//	name=@-                 field streamed from stdin
//	name=@-;type=image/png;filename=blob
//
// A text value that must start with '@' is written as "\@...".
func ParseFieldSpec(arg string) (FieldSpec, error) {
	name, rest, ok := strings.Cut(arg, "=")
	if !ok {
		return FieldSpec{}, fmt.Errorf("form field must be in name=value format: %s", arg)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return FieldSpec{}, fmt.Errorf("form field name cannot be empty: %s", arg)
	}

	if strings.HasPrefix(rest, `\@`) {
		return FieldSpec{Name: name, Value: rest[1:]}, nil
	}
	if !strings.HasPrefix(rest, "@") {
		return FieldSpec{Name: name, Value: rest}, nil
	}

	segments := strings.Split(rest[1:], ";")
	source := strings.TrimSpace(segments[0])
	if source == "" {
		return FieldSpec{}, fmt.Errorf("form field %q: missing path after '@'", name)
	}

	spec := FieldSpec{Name: name}
	if source == "-" {
		spec.Stdin = true
	} else {
		spec.File = source
	}

	for _, seg := range segments[1:] {
		key, val, ok := strings.Cut(seg, "=")
		if !ok {
			return FieldSpec{}, fmt.Errorf("form field %q: attribute must be key=value: %s", name, seg)
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "type":
			spec.ContentType = strings.TrimSpace(val)
		case "filename":
			spec.Filename = strings.TrimSpace(val)
		default:
			return FieldSpec{}, fmt.Errorf("form field %q: unknown attribute %q", name, key)
		}
	}
	return spec, nil
}

type fieldsManifest struct {
	Fields []FieldSpec `yaml:"fields"`
}

// LoadFieldsFile reads a YAML manifest of form fields. Relative file paths
// are resolved against the manifest's directory.
func LoadFieldsFile(path string) ([]FieldSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fields file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var manifest fieldsManifest
	if err := dec.Decode(&manifest); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("fields file %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range manifest.Fields {
		f := &manifest.Fields[i]
		if f.File != "" && !filepath.IsAbs(f.File) {
			f.File = filepath.Join(base, f.File)
		}
	}
	return manifest.Fields, nil
}
