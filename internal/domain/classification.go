package domain

import "strings"

// Answer is the normalized yes/no verdict returned by the model.
type Answer string

const (
	AnswerYes Answer = "YES"
	AnswerNo  Answer = "NO"
)

// ParseAnswer normalizes a raw model reply. The boolean is false when the reply
// is neither YES nor NO.
func ParseAnswer(raw string) (Answer, bool) {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	cleaned = strings.Trim(cleaned, " \t\r\n.,;:!?\"'`*")
	switch Answer(cleaned) {
	case AnswerYes:
		return AnswerYes, true
	case AnswerNo:
		return AnswerNo, true
	default:
		return "", false
	}
}

// Usage mirrors the token counters reported by the completion endpoint.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Add accumulates another usage sample.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// Classification is the record emitted for every classified document.
type Classification struct {
	Year             string  `json:"year"`
	Name             string  `json:"name"`
	OriginalNameRoot string  `json:"originalNameRoot"`
	OriginalPDFName  string  `json:"originalPdfName"`
	Contents         string  `json:"contents,omitempty"`
	YesNo            *Answer `json:"yesNo"`
	RawAnswer        string  `json:"rawAnswer"`
	Model            string  `json:"model"`
	Usage            Usage   `json:"usage"`
}

// NewClassification merges the source document with the model reply.
func NewClassification(doc Document, model, raw string, usage Usage, includeContents bool) Classification {
	c := Classification{
		Year:             doc.Year,
		Name:             doc.Name,
		OriginalNameRoot: doc.OriginalNameRoot,
		OriginalPDFName:  doc.OriginalPDFName,
		RawAnswer:        raw,
		Model:            model,
		Usage:            usage,
	}
	if includeContents {
		c.Contents = doc.Contents
	}
	if answer, ok := ParseAnswer(raw); ok {
		c.YesNo = &answer
	}
	return c
}

// Summary aggregates the outcome of a classification run.
type Summary struct {
	RunID      string
	Loaded     int
	Skipped    int
	Classified int
	Failed     int
	Yes        int
	No         int
	Unknown    int
	Usage      Usage
}

// Record counts an emitted classification.
func (s *Summary) Record(c Classification) {
	s.Classified++
	s.Usage.Add(c.Usage)
	switch {
	case c.YesNo == nil:
		s.Unknown++
	case *c.YesNo == AnswerYes:
		s.Yes++
	default:
		s.No++
	}
}
