package extract

import (
	"context"

	"PFDClassifier/internal/extractor"
)

// Text passes plain text files through unchanged.
type Text struct{}

var _ extractor.Extractor = Text{}

func (Text) Name() string { return "text" }

func (Text) Extensions() []string { return []string{".txt", ".text"} }

func (Text) Extract(_ context.Context, data []byte) (string, error) {
	return string(data), nil
}
