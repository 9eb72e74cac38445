package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"PFDClassifier/internal/domain"
	"PFDClassifier/internal/ports"
)

// JSONLines writes one JSON object per line, typically to stdout.
type JSONLines struct {
	mu  sync.Mutex
	enc *json.Encoder
}

var _ ports.ResultSink = (*JSONLines)(nil)

// NewJSONLines wraps w; HTML escaping is disabled so report text stays readable.
func NewJSONLines(w io.Writer) *JSONLines {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLines{enc: enc}
}

// Emit serializes c followed by a newline.
func (s *JSONLines) Emit(_ context.Context, c domain.Classification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(c); err != nil {
		return fmt.Errorf("write classification %s: %w", c.Name, err)
	}
	return nil
}
