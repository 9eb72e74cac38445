package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"PFDClassifier/internal/domain"
	"PFDClassifier/internal/ports"
	"PFDClassifier/internal/prompt"
	"PFDClassifier/internal/retry"
)

const separator = "====================================="

// RunnerDeps wires all driven adapters into the classification runner.
type RunnerDeps struct {
	Source     ports.DocumentSource
	Chat       ports.ChatCompleter
	Sink       ports.ResultSink
	Repository ports.ResultRepository
	Notifier   ports.Notifier
	Prompts    *prompt.Builder
	Retry      retry.Policy
	Model      string
	RunID      string
	// IncludeContents copies the report text into every emitted record.
	IncludeContents bool
	// Transcript receives the raw prompts and record separators (stderr).
	Transcript io.Writer
	Logger     *slog.Logger
}

// Runner implements the sequential classify-and-emit loop.
type Runner struct {
	source          ports.DocumentSource
	chat            ports.ChatCompleter
	sink            ports.ResultSink
	repository      ports.ResultRepository
	notifier        ports.Notifier
	prompts         *prompt.Builder
	retry           retry.Policy
	model           string
	runID           string
	includeContents bool
	transcript      io.Writer
	logger          *slog.Logger
}

// NewRunner constructs the orchestration component.
func NewRunner(deps RunnerDeps) *Runner {
	r := &Runner{
		source:          deps.Source,
		chat:            deps.Chat,
		sink:            deps.Sink,
		repository:      deps.Repository,
		notifier:        deps.Notifier,
		prompts:         deps.Prompts,
		retry:           deps.Retry,
		model:           deps.Model,
		runID:           deps.RunID,
		includeContents: deps.IncludeContents,
		transcript:      deps.Transcript,
		logger:          deps.Logger,
	}
	if r.prompts == nil {
		r.prompts = prompt.NewBuilder("")
	}
	if r.transcript == nil {
		r.transcript = io.Discard
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r
}

// Run loads the corpus and classifies every document in order. Per-record
// failures are logged and counted; only load, sink and cancellation errors
// stop the run.
func (r *Runner) Run(ctx context.Context) (domain.Summary, error) {
	summary := domain.Summary{RunID: r.runID}

	if r.source == nil || r.chat == nil || r.sink == nil {
		return summary, fmt.Errorf("runner is missing source, chat client or sink")
	}

	docs, err := r.source.Load(ctx)
	if err != nil {
		return summary, fmt.Errorf("load corpus: %w", err)
	}
	summary.Loaded = len(docs)
	r.logger.InfoContext(ctx, "corpus loaded", "documents", len(docs), "run_id", r.runID)

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := r.process(ctx, doc, &summary); err != nil {
			return summary, err
		}
	}

	r.logger.InfoContext(ctx, "run complete",
		"loaded", summary.Loaded,
		"classified", summary.Classified,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"yes", summary.Yes,
		"no", summary.No,
		"unknown", summary.Unknown,
		"total_tokens", summary.Usage.TotalTokens,
	)

	if r.notifier != nil {
		if err := r.notifier.PublishSummary(ctx, summary); err != nil {
			r.logger.WarnContext(ctx, "publish summary failed", "error", err)
		}
	}

	return summary, nil
}

func (r *Runner) process(ctx context.Context, doc domain.Document, summary *domain.Summary) error {
	if doc.IsEmpty() {
		r.logger.WarnContext(ctx, "empty file", "file", doc.Name, "year", doc.Year)
		summary.Skipped++
		return nil
	}

	r.logger.InfoContext(ctx, "processing file", "file", doc.Name, "year", doc.Year)

	messages := r.prompts.Messages(doc)
	fmt.Fprintf(r.transcript, "Filename: %s\nPrompt:\n%s\n", doc.Name, messages[len(messages)-1].Content)

	req := ports.ChatRequest{Model: r.model, Messages: messages}

	policy := r.retry
	policy.Logger = r.logger
	policy.Operation = doc.Name

	resp, err := retry.Do(ctx, policy, func(ctx context.Context) (ports.ChatResponse, error) {
		return r.chat.Complete(ctx, req)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		r.logger.ErrorContext(ctx, "classification failed", "file", doc.Name, "year", doc.Year, "error", err)
		summary.Failed++
		fmt.Fprintln(r.transcript, separator)
		return nil
	}

	var raw string
	if len(resp.Choices) > 0 {
		raw = resp.Choices[0].Message.Content
	}
	usage := domain.Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	r.logger.InfoContext(ctx, "tokens used",
		"file", doc.Name,
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
		"total_tokens", usage.TotalTokens,
	)

	classification := domain.NewClassification(doc, r.model, raw, usage, r.includeContents)
	if err := r.sink.Emit(ctx, classification); err != nil {
		return fmt.Errorf("emit classification: %w", err)
	}
	summary.Record(classification)

	if r.repository != nil {
		if err := r.repository.SaveClassification(ctx, r.runID, classification); err != nil {
			r.logger.WarnContext(ctx, "archive classification failed", "file", doc.Name, "error", err)
		}
	}

	fmt.Fprintln(r.transcript, separator)
	return nil
}
