package openai

import (
	"context"
	"io"
	"strconv"

	"github.com/torosent/formwire/internal/formdata"
)

const (
	imageUploadName = "blob"
	imageUploadType = "image/png"
)

type ImageRequest struct {
	Prompt         string `json:"prompt,omitempty"`
	N              *int   `json:"n,omitempty"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
	User           string `json:"user,omitempty"`
}

// ImageEditRequest uploads Image (and Mask, for edits) as PNG streams.
// Readers that implement io.Closer are closed once sent or on failure.
type ImageEditRequest struct {
	ImageRequest
	Image io.Reader
	Mask  io.Reader
}

type Images struct {
	Created int64       `json:"created"`
	Data    []ImageData `json:"data"`
}

type ImageData struct {
	URL           string `json:"url,omitempty"`
	B64JSON       string `json:"b64_json,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// CreateImage generates images from a prompt.
func (c *Client) CreateImage(ctx context.Context, req *ImageRequest) (*Images, error) {
	if req.Prompt == "" {
		return nil, ErrPromptRequired
	}
	data, err := c.PostJSON(ctx, imagesCreatePath, req)
	if err != nil {
		return nil, err
	}
	return decodeImages(data)
}

// EditImage edits or extends Image guided by the prompt and optional Mask.
func (c *Client) EditImage(ctx context.Context, req *ImageEditRequest) (*Images, error) {
	if req.Image == nil {
		closeReaders(req.Mask)
		return nil, ErrImageRequired
	}
	if req.Prompt == "" {
		closeReaders(req.Mask, req.Image)
		return nil, ErrPromptRequired
	}

	form := c.newForm().AddText("prompt", req.Prompt)
	addImageOptions(form, &req.ImageRequest)
	if req.Mask != nil {
		form.AddStream("mask", req.Mask, imageUploadName, imageUploadType)
	}
	form.AddStream("image", req.Image, imageUploadName, imageUploadType)

	data, err := c.PostForm(ctx, imagesEditPath, form)
	if err != nil {
		return nil, err
	}
	return decodeImages(data)
}

// CreateImageVariation generates variations of Image. Prompt and Mask are
// ignored.
func (c *Client) CreateImageVariation(ctx context.Context, req *ImageEditRequest) (*Images, error) {
	closeReaders(req.Mask)
	if req.Image == nil {
		return nil, ErrImageRequired
	}

	form := c.newForm()
	addImageOptions(form, &req.ImageRequest)
	form.AddStream("image", req.Image, imageUploadName, imageUploadType)

	data, err := c.PostForm(ctx, imagesVariationPath, form)
	if err != nil {
		return nil, err
	}
	return decodeImages(data)
}

func addImageOptions(form *formdata.Form, req *ImageRequest) {
	if req.N != nil {
		form.AddText("n", strconv.Itoa(*req.N))
	}
	if req.Size != "" {
		form.AddText("size", req.Size)
	}
	if req.ResponseFormat != "" {
		form.AddText("response_format", req.ResponseFormat)
	}
	if req.User != "" {
		form.AddText("user", req.User)
	}
}

func closeReaders(readers ...io.Reader) {
	for _, r := range readers {
		if c, ok := r.(io.Closer); ok {
			_ = c.Close()
		}
	}
}

func decodeImages(data []byte) (*Images, error) {
	var out Images
	if err := decode(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
