// Package extract holds the text extractors registered for corpus files.
package extract

import "PFDClassifier/internal/extractor"

// NewDefaultRegistry registers the text, HTML and PDF extractors.
func NewDefaultRegistry() *extractor.Registry {
	reg := extractor.NewRegistry()
	reg.Register(Text{})
	reg.Register(HTML{})
	reg.Register(PDF{})
	return reg
}
