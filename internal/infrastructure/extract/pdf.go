package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"PFDClassifier/internal/extractor"
)

// PDF reads the embedded text layer of a PDF. Scanned pages without a text
// layer come back empty.
type PDF struct{}

var _ extractor.Extractor = PDF{}

func (PDF) Name() string { return "pdf" }

func (PDF) Extensions() []string { return []string{".pdf"} }

func (PDF) Extract(_ context.Context, data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", nil
	}

	// the pdf reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	out, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return string(out), nil
}
