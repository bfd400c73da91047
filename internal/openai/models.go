package openai

import (
	"context"
	"net/url"

	"github.com/tidwall/gjson"
)

type Model struct {
	ID         string       `json:"id"`
	Object     string       `json:"object,omitempty"`
	OwnedBy    string       `json:"owned_by,omitempty"`
	Permission []Permission `json:"permission,omitempty"`
}

type Permission struct {
	ID                 string `json:"id"`
	Object             string `json:"object,omitempty"`
	Created            int64  `json:"created"`
	AllowCreateEngine  bool   `json:"allow_create_engine"`
	AllowSampling      bool   `json:"allow_sampling"`
	AllowLogprobs      bool   `json:"allow_logprobs"`
	AllowSearchIndices bool   `json:"allow_search_indices"`
	AllowView          bool   `json:"allow_view"`
	AllowFineTuning    bool   `json:"allow_fine_tuning"`
	Organization       string `json:"organization,omitempty"`
	Group              string `json:"group,omitempty"`
	IsBlocking         bool   `json:"is_blocking"`
}

// ListModels returns the models available to the caller.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	data, err := c.Get(ctx, modelsPath)
	if err != nil {
		return nil, err
	}
	list := gjson.GetBytes(data, "data")
	if !list.IsArray() {
		return nil, ErrNoData
	}
	var models []Model
	if err := decode([]byte(list.Raw), &models); err != nil {
		return nil, err
	}
	return models, nil
}

// RetrieveModel returns a single model by ID.
func (c *Client) RetrieveModel(ctx context.Context, id string) (*Model, error) {
	data, err := c.Get(ctx, modelsPath+"/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var model Model
	if err := decode(data, &model); err != nil {
		return nil, err
	}
	return &model, nil
}
