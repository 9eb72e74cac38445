package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/viant/afs"

	"PFDClassifier/internal/config"
	"PFDClassifier/internal/domain"
	"PFDClassifier/internal/infrastructure/corpus"
	"PFDClassifier/internal/infrastructure/extract"
	"PFDClassifier/internal/infrastructure/llm"
	"PFDClassifier/internal/infrastructure/output"
	"PFDClassifier/internal/infrastructure/storage"
	"PFDClassifier/internal/infrastructure/telegram"
	"PFDClassifier/internal/logging"
	"PFDClassifier/internal/ports"
	"PFDClassifier/internal/prompt"
	"PFDClassifier/internal/retry"
	"PFDClassifier/internal/usecase"
)

// Application wires configs to use cases.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	corpus *corpus.Corpus
	stdout io.Writer
	stderr io.Writer
	db     *sql.DB
}

// Option customises an Application.
type Option func(*Application)

// WithOutput redirects the JSON lines and the prompt transcript.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *Application) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger, opts ...Option) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	a := &Application{
		cfg:    cfg,
		logger: baseLogger,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.corpus = corpus.New(afs.New(), cfg.Corpus, extract.NewDefaultRegistry(), baseLogger.With("component", "corpus"))
	return a
}

// Classify runs one pass over the corpus and prints a JSON line per report.
func (a *Application) Classify(ctx context.Context) (domain.Summary, error) {
	if err := a.cfg.Validate(); err != nil {
		return domain.Summary{}, err
	}

	runID := uuid.NewString()
	logger := a.logger.With("run_id", runID)

	var repository ports.ResultRepository
	if a.cfg.Database.DSN != "" {
		db, err := storage.Open(ctx, a.cfg.Database.DSN)
		if err != nil {
			return domain.Summary{}, fmt.Errorf("open archive: %w", err)
		}
		a.db = db
		repository = storage.NewPostgresRepository(db, a.cfg.Database.Table)
	}

	var notifier ports.Notifier
	if tg := a.cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	policy := retry.DefaultPolicy()
	policy.MaxRetries = a.cfg.Retry.MaxRetries
	if a.cfg.Retry.BaseDelay > 0 {
		policy.BaseDelay = a.cfg.Retry.BaseDelay
	}

	runner := usecase.NewRunner(usecase.RunnerDeps{
		Source:          a.corpus,
		Chat:            llm.NewChatGPTClient(a.cfg.OpenAI, nil),
		Sink:            output.NewJSONLines(a.stdout),
		Repository:      repository,
		Notifier:        notifier,
		Prompts:         prompt.NewBuilder(a.cfg.OpenAI.SystemPrompt),
		Retry:           policy,
		Model:           a.cfg.OpenAI.Model,
		RunID:           runID,
		IncludeContents: a.cfg.Output.IncludeContents,
		Transcript:      a.stderr,
		Logger:          logger.With("component", "runner"),
	})
	return runner.Run(ctx)
}

// Extract writes ocr- text files next to the source PDFs.
func (a *Application) Extract(ctx context.Context, force bool) (usecase.ExtractSummary, error) {
	extractor := usecase.NewPDFExtractor(usecase.ExtractDeps{
		Tree:      a.corpus,
		Extractor: extract.PDF{},
		Prefix:    a.cfg.Corpus.Prefix,
		Force:     force,
		Logger:    a.logger.With("component", "extract"),
	})
	return extractor.Run(ctx)
}

// Close releases the archive connection, if one was opened.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
