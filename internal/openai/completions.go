package openai

import "context"

type CompletionRequest struct {
	Model            string             `json:"model"`
	Prompt           string             `json:"prompt,omitempty"`
	Suffix           string             `json:"suffix,omitempty"`
	MaxTokens        *int               `json:"max_tokens,omitempty"`
	Temperature      *float64           `json:"temperature,omitempty"`
	TopP             *float64           `json:"top_p,omitempty"`
	N                *int               `json:"n,omitempty"`
	Logprobs         *int               `json:"logprobs,omitempty"`
	Echo             bool               `json:"echo,omitempty"`
	Stop             []string           `json:"stop,omitempty"`
	PresencePenalty  *float64           `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64           `json:"frequency_penalty,omitempty"`
	BestOf           *int               `json:"best_of,omitempty"`
	LogitBias        map[string]float64 `json:"logit_bias,omitempty"`
	User             string             `json:"user,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model            string             `json:"model"`
	Messages         []Message          `json:"messages"`
	Temperature      *float64           `json:"temperature,omitempty"`
	TopP             *float64           `json:"top_p,omitempty"`
	N                *int               `json:"n,omitempty"`
	Stop             []string           `json:"stop,omitempty"`
	MaxTokens        *int               `json:"max_tokens,omitempty"`
	PresencePenalty  *float64           `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64           `json:"frequency_penalty,omitempty"`
	LogitBias        map[string]float64 `json:"logit_bias,omitempty"`
	User             string             `json:"user,omitempty"`
}

type EditRequest struct {
	Model       string   `json:"model"`
	Instruction string   `json:"instruction"`
	Input       string   `json:"input,omitempty"`
	N           *int     `json:"n,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
}

// Completion is the response shape shared by completions, chat and edits.
type Completion struct {
	ID      string   `json:"id,omitempty"`
	Object  string   `json:"object,omitempty"`
	Created int64    `json:"created"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Text         string   `json:"text,omitempty"`
	Message      *Message `json:"message,omitempty"`
	Index        int      `json:"index"`
	FinishReason string   `json:"finish_reason,omitempty"`
}

func (c *Client) CreateCompletion(ctx context.Context, req *CompletionRequest) (*Completion, error) {
	return c.postCompletion(ctx, completionsPath, req)
}

func (c *Client) CreateChatCompletion(ctx context.Context, req *ChatRequest) (*Completion, error) {
	return c.postCompletion(ctx, chatCompletionsPath, req)
}

func (c *Client) CreateEdit(ctx context.Context, req *EditRequest) (*Completion, error) {
	return c.postCompletion(ctx, editsPath, req)
}

func (c *Client) postCompletion(ctx context.Context, path string, req interface{}) (*Completion, error) {
	data, err := c.PostJSON(ctx, path, req)
	if err != nil {
		return nil, err
	}
	var out Completion
	if err := decode(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
