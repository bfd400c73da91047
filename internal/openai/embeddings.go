package openai

import "context"

type EmbeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
	User  string   `json:"user,omitempty"`
}

type Embeddings struct {
	Object string          `json:"object,omitempty"`
	Data   []EmbeddingData `json:"data"`
	Model  string          `json:"model"`
	Usage  Usage           `json:"usage"`
}

type EmbeddingData struct {
	Object    string    `json:"object,omitempty"`
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

// CreateEmbeddings returns one embedding vector per input string.
func (c *Client) CreateEmbeddings(ctx context.Context, req *EmbeddingsRequest) (*Embeddings, error) {
	data, err := c.PostJSON(ctx, embeddingsPath, req)
	if err != nil {
		return nil, err
	}
	var out Embeddings
	if err := decode(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
