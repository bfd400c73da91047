package openai

const (
	modelsPath          = "models"
	completionsPath     = "completions"
	chatCompletionsPath = "chat/completions"
	editsPath           = "edits"
	embeddingsPath      = "embeddings"
	imagesCreatePath    = "images/generations"
	imagesEditPath      = "images/edits"
	imagesVariationPath = "images/variations"
)

// Usage reports token accounting for a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens"`
}
