package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/torosent/formwire/internal/formdata"
	"github.com/torosent/formwire/internal/logging"
	"github.com/torosent/formwire/internal/openai"
)

func TestUploadSummary(t *testing.T) {
	server := httptest.NewServer(newMux(logging.Discard()))
	defer server.Close()

	client, err := openai.New(server.URL + "/v1/")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	form := formdata.NewForm().
		AddText("prompt", "otter").
		AddStream("image", strings.NewReader(strings.Repeat("p", 1000)), "blob", "image/png")
	data, err := client.PostForm(context.Background(), "images/edits", form)
	if err != nil {
		t.Fatalf("PostForm() error = %v", err)
	}

	parts := gjson.GetBytes(data, "parts").Array()
	if len(parts) != 2 {
		t.Fatalf("parts = %s, want 2 entries", gjson.GetBytes(data, "parts").Raw)
	}
	if got := parts[0].Get("value").String(); got != "otter" {
		t.Errorf("parts[0].value = %q, want otter", got)
	}
	if got := parts[1].Get("size").Int(); got != 1000 {
		t.Errorf("parts[1].size = %d, want 1000", got)
	}
	if got := parts[1].Get("content_type").String(); got != "image/png" {
		t.Errorf("parts[1].content_type = %q, want image/png", got)
	}
}

func TestModels(t *testing.T) {
	server := httptest.NewServer(newMux(logging.Discard()))
	defer server.Close()

	client, _ := openai.New(server.URL + "/v1/")
	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 1 || models[0].ID != "mock-image" {
		t.Errorf("ListModels() = %+v, want mock-image", models)
	}
}

func TestUnknownPath(t *testing.T) {
	server := httptest.NewServer(newMux(logging.Discard()))
	defer server.Close()

	client, _ := openai.New(server.URL + "/v1/")
	_, err := client.Get(context.Background(), "nope")
	if err == nil || !strings.Contains(err.Error(), "unknown path") {
		t.Fatalf("Get() error = %v, want unknown path api error", err)
	}
}
