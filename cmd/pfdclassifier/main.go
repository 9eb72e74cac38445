package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"PFDClassifier/internal/app"
	"PFDClassifier/internal/config"
	"PFDClassifier/internal/logging"
)

var (
	configPath      string
	corpusRoot      string
	model           string
	maxRetries      int
	logLevel        string
	includeContents bool
	force           bool
)

// rootCmd classifies the corpus when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "pfdclassifier",
	Short: "Classify Prevention of Future Deaths reports with a chat model",
	Long: `pfdclassifier walks <root>/<year>/ocr-*.txt, asks a chat completion model
whether each coroner's report describes a problem with the ambulance service,
and prints one JSON object per report to stdout.

Prompts and record separators go to stderr.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runClassify,
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify every report and print JSON lines",
	RunE:  runClassify,
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Write ocr-<name>.txt next to every source PDF",
	Long: `extract reads the text layer of each <root>/<year>/*.pdf and stores it as
ocr-<name>.txt in the same directory. Existing files are kept unless --force is set.`,
	RunE: runExtract,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (or set PFD_CLASSIFIER_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&corpusRoot, "root", "", "Corpus root directory or afs URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	for _, cmd := range []*cobra.Command{rootCmd, classifyCmd} {
		cmd.Flags().StringVar(&model, "model", "", "Chat completion model")
		cmd.Flags().IntVar(&maxRetries, "max-retries", -1, "Retries per report after the first attempt")
		cmd.Flags().BoolVar(&includeContents, "include-contents", false, "Copy report text into each JSON line")
	}
	extractCmd.Flags().BoolVar(&force, "force", false, "Overwrite existing text files")

	rootCmd.AddCommand(classifyCmd, extractCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() config.Config {
	cfg := config.Load(configPath)
	if corpusRoot != "" {
		cfg.Corpus.Root = corpusRoot
	}
	if model != "" {
		cfg.OpenAI.Model = model
	}
	if maxRetries >= 0 {
		cfg.Retry.MaxRetries = maxRetries
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if includeContents {
		cfg.Output.IncludeContents = true
	}
	return cfg
}

func runClassify(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	application := app.New(cfg, logger, app.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()))
	defer application.Close()

	if _, err := application.Classify(ctx); err != nil {
		logger.Error("classification stopped", "error", err)
		return err
	}
	return nil
}

func runExtract(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	application := app.New(cfg, logger, app.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()))
	defer application.Close()

	summary, err := application.Extract(ctx, force)
	if err != nil {
		logger.Error("extraction stopped", "error", err)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "converted=%d skipped=%d failed=%d\n", summary.Converted, summary.Skipped, summary.Failed)
	return nil
}
