// Package corpus reads and writes the <root>/<year>/<file> report tree.
package corpus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/url"

	"PFDClassifier/internal/config"
	"PFDClassifier/internal/domain"
	"PFDClassifier/internal/extractor"
	"PFDClassifier/internal/ports"
)

// ErrRootNotFound is returned when the corpus root does not exist.
var ErrRootNotFound = errors.New("corpus root not found")

// Corpus implements ports.DocumentSource over any afs-supported location.
type Corpus struct {
	fs         afs.Service
	root       string
	prefix     string
	extensions map[string]bool
	registry   *extractor.Registry
	logger     *slog.Logger
}

var (
	_ ports.DocumentSource = (*Corpus)(nil)
	_ ports.CorpusTree     = (*Corpus)(nil)
)

// New wires the afs service with the configured root and file filter.
func New(fs afs.Service, cfg config.CorpusConfig, registry *extractor.Registry, log *slog.Logger) *Corpus {
	if fs == nil {
		fs = afs.New()
	}
	exts := make(map[string]bool, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}
	return &Corpus{
		fs:         fs,
		root:       cfg.Root,
		prefix:     cfg.Prefix,
		extensions: exts,
		registry:   registry,
		logger:     log,
	}
}

// Load reads every matching file into memory, ordered by year then file name.
func (c *Corpus) Load(ctx context.Context) ([]domain.Document, error) {
	entries, err := c.Files(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(entries))
	for _, entry := range entries {
		if !c.matches(entry.Name) {
			continue
		}

		ext, err := c.registry.ForFile(entry.Name)
		if err != nil {
			return nil, fmt.Errorf("file %s: %w", entry.URL, err)
		}

		data, err := c.Read(ctx, entry)
		if err != nil {
			return nil, err
		}

		text, err := ext.Extract(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", entry.URL, err)
		}

		c.debug("loaded document", "year", entry.Year, "file", entry.Name, "extractor", ext.Name(), "bytes", len(data))
		docs = append(docs, domain.NewDocument(entry.Year, entry.Name, c.prefix, text))
	}

	c.debug("corpus loaded", "root", c.root, "documents", len(docs))
	return docs, nil
}

// Files lists the files of every first-level year directory.
func (c *Corpus) Files(ctx context.Context) ([]ports.CorpusFile, error) {
	rootURL, err := c.rootURL()
	if err != nil {
		return nil, err
	}

	exists, err := c.fs.Exists(ctx, rootURL)
	if err != nil {
		return nil, fmt.Errorf("check corpus root %s: %w", c.root, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, c.root)
	}

	years, err := c.fs.List(ctx, rootURL)
	if err != nil {
		return nil, fmt.Errorf("list corpus root %s: %w", c.root, err)
	}

	var entries []ports.CorpusFile
	for _, year := range years {
		if !year.IsDir() || samePath(year.URL(), rootURL) {
			continue
		}

		files, err := c.fs.List(ctx, year.URL())
		if err != nil {
			return nil, fmt.Errorf("list year %s: %w", year.Name(), err)
		}

		for _, file := range files {
			if file.IsDir() {
				continue
			}
			entries = append(entries, ports.CorpusFile{
				Year: year.Name(),
				Name: file.Name(),
				URL:  file.URL(),
				Dir:  year.URL(),
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Year != entries[j].Year {
			return entries[i].Year < entries[j].Year
		}
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// Read downloads the raw bytes of a file.
func (c *Corpus) Read(ctx context.Context, file ports.CorpusFile) ([]byte, error) {
	data, err := c.fs.DownloadWithURL(ctx, file.URL)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file.URL, err)
	}
	return data, nil
}

// Exists reports whether name exists next to file.
func (c *Corpus) Exists(ctx context.Context, file ports.CorpusFile, name string) (bool, error) {
	return c.fs.Exists(ctx, url.Join(file.Dir, name))
}

// Write stores data as name in the same year directory as file.
func (c *Corpus) Write(ctx context.Context, file ports.CorpusFile, name string, data []byte) error {
	target := url.Join(file.Dir, name)
	if err := c.fs.Upload(ctx, target, 0o644, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

func (c *Corpus) matches(name string) bool {
	if !strings.HasPrefix(name, c.prefix) {
		return false
	}
	ext := strings.ToLower(path.Ext(name))
	if !c.extensions[ext] {
		return false
	}
	return c.registry != nil && c.registry.Supports(ext)
}

func (c *Corpus) rootURL() (string, error) {
	root := c.root
	if root == "" {
		return "", fmt.Errorf("%w: empty path", ErrRootNotFound)
	}
	if url.Scheme(root, "") == "" && url.IsRelative(root) {
		abs, err := filepath.Abs(root)
		if err != nil {
			return "", fmt.Errorf("absolute path for %s: %w", root, err)
		}
		root = abs
	}
	if url.Scheme(root, "") == "" {
		root = url.ToFileURL(root)
	}
	return root, nil
}

func samePath(a, b string) bool {
	return strings.TrimRight(url.Path(a), "/") == strings.TrimRight(url.Path(b), "/")
}

func (c *Corpus) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
