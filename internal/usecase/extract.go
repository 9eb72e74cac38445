package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"PFDClassifier/internal/extractor"
	"PFDClassifier/internal/ports"
)

// DefaultOCRPrefix marks extracted text files the classifier picks up.
const DefaultOCRPrefix = "ocr-"

// ExtractDeps wires the corpus tree and PDF extractor into the converter.
type ExtractDeps struct {
	Tree      ports.CorpusTree
	Extractor extractor.Extractor
	Prefix    string
	// Force overwrites text files that already exist.
	Force  bool
	Logger *slog.Logger
}

// ExtractSummary counts the outcome of one conversion pass.
type ExtractSummary struct {
	Converted int `json:"converted"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// PDFExtractor writes an ocr-<root>.txt next to every source PDF.
type PDFExtractor struct {
	tree      ports.CorpusTree
	extractor extractor.Extractor
	prefix    string
	force     bool
	logger    *slog.Logger
}

// NewPDFExtractor constructs the conversion component.
func NewPDFExtractor(deps ExtractDeps) *PDFExtractor {
	e := &PDFExtractor{
		tree:      deps.Tree,
		extractor: deps.Extractor,
		prefix:    deps.Prefix,
		force:     deps.Force,
		logger:    deps.Logger,
	}
	if e.prefix == "" {
		e.prefix = DefaultOCRPrefix
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e
}

// Run converts every PDF in the tree. Per-file failures are logged and
// counted; listing errors and cancellation stop the pass.
func (e *PDFExtractor) Run(ctx context.Context) (ExtractSummary, error) {
	var summary ExtractSummary

	if e.tree == nil || e.extractor == nil {
		return summary, fmt.Errorf("pdf extractor is missing corpus tree or extractor")
	}

	files, err := e.tree.Files(ctx)
	if err != nil {
		return summary, fmt.Errorf("list corpus: %w", err)
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if !e.isSource(file.Name) {
			continue
		}

		target := TargetName(e.prefix, file.Name)

		if !e.force {
			exists, err := e.tree.Exists(ctx, file, target)
			if err != nil {
				e.logger.ErrorContext(ctx, "check target failed", "file", file.Name, "year", file.Year, "error", err)
				summary.Failed++
				continue
			}
			if exists {
				e.logger.DebugContext(ctx, "target exists", "file", file.Name, "target", target)
				summary.Skipped++
				continue
			}
		}

		if err := e.convert(ctx, file, target); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, ctxErr
			}
			e.logger.ErrorContext(ctx, "extraction failed", "file", file.Name, "year", file.Year, "error", err)
			summary.Failed++
			continue
		}

		e.logger.InfoContext(ctx, "extracted", "file", file.Name, "year", file.Year, "target", target)
		summary.Converted++
	}

	e.logger.InfoContext(ctx, "extraction complete",
		"converted", summary.Converted,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)

	return summary, nil
}

func (e *PDFExtractor) convert(ctx context.Context, file ports.CorpusFile, target string) error {
	data, err := e.tree.Read(ctx, file)
	if err != nil {
		return err
	}

	text, err := e.extractor.Extract(ctx, data)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		e.logger.WarnContext(ctx, "no text layer", "file", file.Name, "year", file.Year)
	}

	return e.tree.Write(ctx, file, target, []byte(text))
}

func (e *PDFExtractor) isSource(name string) bool {
	if strings.HasPrefix(name, e.prefix) {
		return false
	}
	return strings.EqualFold(path.Ext(name), ".pdf")
}

// TargetName maps "report.pdf" to "<prefix>report.txt".
func TargetName(prefix, name string) string {
	return prefix + strings.TrimSuffix(name, path.Ext(name)) + ".txt"
}
