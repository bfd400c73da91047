package openai

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
)

type trackedReader struct {
	*bytes.Reader
	closed atomic.Bool
}

func newTrackedReader(data string) *trackedReader {
	return &trackedReader{Reader: bytes.NewReader([]byte(data))}
}

func (r *trackedReader) Close() error {
	r.closed.Store(true)
	return nil
}

type receivedPart struct {
	filename    string
	contentType string
	data        string
}

func TestEditImageUploadsMultipart(t *testing.T) {
	var (
		texts         = map[string]string{}
		files         = map[string]receivedPart{}
		contentLength int64
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentLength = r.ContentLength
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
			return
		}
		for name, values := range r.MultipartForm.Value {
			texts[name] = values[0]
		}
		for name, headers := range r.MultipartForm.File {
			f, err := headers[0].Open()
			if err != nil {
				t.Errorf("open part %s: %v", name, err)
				continue
			}
			data, _ := io.ReadAll(f)
			f.Close()
			files[name] = receivedPart{
				filename:    headers[0].Filename,
				contentType: headers[0].Header.Get("Content-Type"),
				data:        string(data),
			}
		}
		writeJSON(w, http.StatusOK, `{"created":1589478378,"data":[{"url":"https://example.com/a.png"}]}`)
	})

	n := 2
	image := newTrackedReader("\x89PNG image")
	mask := newTrackedReader("\x89PNG mask")
	got, err := c.EditImage(context.Background(), &ImageEditRequest{
		ImageRequest: ImageRequest{Prompt: "A cute baby sea otter wearing a beret", N: &n, Size: "1024x1024"},
		Image:        image,
		Mask:         mask,
	})
	if err != nil {
		t.Fatalf("EditImage() error = %v", err)
	}

	if len(got.Data) != 1 || got.Data[0].URL != "https://example.com/a.png" {
		t.Errorf("EditImage() data = %+v", got.Data)
	}
	if texts["prompt"] != "A cute baby sea otter wearing a beret" || texts["n"] != "2" || texts["size"] != "1024x1024" {
		t.Errorf("text fields = %v", texts)
	}
	if _, ok := texts["response_format"]; ok {
		t.Error("unset response_format was sent")
	}
	for name, want := range map[string]string{"image": "\x89PNG image", "mask": "\x89PNG mask"} {
		part, ok := files[name]
		if !ok {
			t.Errorf("part %q missing", name)
			continue
		}
		if part.filename != "blob" || part.contentType != "image/png" {
			t.Errorf("part %q filename=%q type=%q, want blob and image/png", name, part.filename, part.contentType)
		}
		if part.data != want {
			t.Errorf("part %q data = %q, want %q", name, part.data, want)
		}
	}
	if contentLength != -1 {
		t.Errorf("ContentLength = %d, want -1 for streamed upload", contentLength)
	}
	if !image.closed.Load() || !mask.closed.Load() {
		t.Errorf("readers closed image=%v mask=%v, want both", image.closed.Load(), mask.closed.Load())
	}
}

func TestEditImageValidation(t *testing.T) {
	c, _ := New("http://localhost")

	image := newTrackedReader("img")
	mask := newTrackedReader("mask")
	_, err := c.EditImage(context.Background(), &ImageEditRequest{Image: image, Mask: mask})
	if !errors.Is(err, ErrPromptRequired) {
		t.Fatalf("EditImage() error = %v, want ErrPromptRequired", err)
	}
	if !image.closed.Load() || !mask.closed.Load() {
		t.Errorf("readers closed image=%v mask=%v, want both", image.closed.Load(), mask.closed.Load())
	}

	_, err = c.EditImage(context.Background(), &ImageEditRequest{ImageRequest: ImageRequest{Prompt: "x"}})
	if !errors.Is(err, ErrImageRequired) {
		t.Fatalf("EditImage() error = %v, want ErrImageRequired", err)
	}
}

func TestCreateImageVariationIgnoresPromptAndMask(t *testing.T) {
	var fields []string
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
			return
		}
		for name := range r.MultipartForm.Value {
			fields = append(fields, name)
		}
		for name := range r.MultipartForm.File {
			fields = append(fields, name)
		}
		writeJSON(w, http.StatusOK, `{"created":1,"data":[]}`)
	})

	mask := newTrackedReader("mask")
	_, err := c.CreateImageVariation(context.Background(), &ImageEditRequest{
		ImageRequest: ImageRequest{Prompt: "ignored", ResponseFormat: "b64_json"},
		Image:        newTrackedReader("img"),
		Mask:         mask,
	})
	if err != nil {
		t.Fatalf("CreateImageVariation() error = %v", err)
	}
	if path != "/v1/images/variations" {
		t.Errorf("path = %q, want /v1/images/variations", path)
	}
	if len(fields) != 2 {
		t.Errorf("fields = %v, want response_format and image", fields)
	}
	for _, f := range fields {
		if f == "prompt" || f == "mask" {
			t.Errorf("field %q sent with a variation request", f)
		}
	}
	if !mask.closed.Load() {
		t.Error("unused mask not closed")
	}
}

func TestCreateImageRequiresPrompt(t *testing.T) {
	c, _ := New("http://localhost")
	if _, err := c.CreateImage(context.Background(), &ImageRequest{}); !errors.Is(err, ErrPromptRequired) {
		t.Fatalf("CreateImage() error = %v, want ErrPromptRequired", err)
	}
}

func TestCreateImage(t *testing.T) {
	var contentType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		writeJSON(w, http.StatusOK, `{"created":2,"data":[{"b64_json":"aGk="}]}`)
	})
	got, err := c.CreateImage(context.Background(), &ImageRequest{Prompt: "otter", ResponseFormat: "b64_json"})
	if err != nil {
		t.Fatalf("CreateImage() error = %v", err)
	}
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", contentType)
	}
	if got.Created != 2 || got.Data[0].B64JSON != "aGk=" {
		t.Errorf("CreateImage() = %+v", got)
	}
}
