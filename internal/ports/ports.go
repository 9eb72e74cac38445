package ports

import (
	"context"

	"PFDClassifier/internal/domain"
)

// DocumentSource loads the whole corpus before classification starts.
type DocumentSource interface {
	Load(ctx context.Context) ([]domain.Document, error)
}

// CorpusFile locates a file directly under a year directory of the corpus.
type CorpusFile struct {
	Year string
	Name string
	URL  string
	Dir  string
}

// CorpusTree lists, reads and writes files of the <root>/<year> tree.
type CorpusTree interface {
	Files(ctx context.Context) ([]CorpusFile, error)
	Read(ctx context.Context, file CorpusFile) ([]byte, error)
	Exists(ctx context.Context, file CorpusFile, name string) (bool, error)
	Write(ctx context.Context, file CorpusFile, name string, data []byte) error
}

// Message is a single role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a non-streaming chat completion request.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// ChatChoice holds one generated message.
type ChatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// ChatUsage carries the token counters of a completion.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the subset of the completion payload the runner consumes.
type ChatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`
}

// ChatCompleter submits chat completion requests (e.g., OpenAI).
type ChatCompleter interface {
	Complete(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// ResultSink receives every emitted classification in processing order.
type ResultSink interface {
	Emit(ctx context.Context, c domain.Classification) error
}

// ResultRepository archives classifications for later analysis.
type ResultRepository interface {
	SaveClassification(ctx context.Context, runID string, c domain.Classification) error
}

// Notifier publishes the run summary to Telegram or other channels.
type Notifier interface {
	PublishSummary(ctx context.Context, summary domain.Summary) error
}
