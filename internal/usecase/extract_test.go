package usecase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	"PFDClassifier/internal/config"
	"PFDClassifier/internal/infrastructure/corpus"
	"PFDClassifier/internal/infrastructure/extract"
	"PFDClassifier/internal/ports"
)

type memoryTree struct {
	files   []ports.CorpusFile
	data    map[string][]byte
	written map[string][]byte
	listErr error
}

func newMemoryTree(files ...ports.CorpusFile) *memoryTree {
	return &memoryTree{files: files, data: map[string][]byte{}, written: map[string][]byte{}}
}

func (m *memoryTree) Files(context.Context) ([]ports.CorpusFile, error) {
	return m.files, m.listErr
}

func (m *memoryTree) Read(_ context.Context, file ports.CorpusFile) ([]byte, error) {
	data, ok := m.data[file.URL]
	if !ok {
		return nil, errors.New("not found: " + file.URL)
	}
	return data, nil
}

func (m *memoryTree) Exists(_ context.Context, file ports.CorpusFile, name string) (bool, error) {
	_, ok := m.data[file.Dir+"/"+name]
	return ok, nil
}

func (m *memoryTree) Write(_ context.Context, file ports.CorpusFile, name string, data []byte) error {
	m.written[file.Dir+"/"+name] = data
	return nil
}

func (m *memoryTree) add(year, name string, data []byte) ports.CorpusFile {
	file := ports.CorpusFile{Year: year, Name: name, URL: "mem://" + year + "/" + name, Dir: "mem://" + year}
	m.files = append(m.files, file)
	m.data[file.URL] = data
	return file
}

// upperExtractor stands in for the PDF reader; "bad" input fails.
type upperExtractor struct{}

func (upperExtractor) Name() string         { return "upper" }
func (upperExtractor) Extensions() []string { return []string{".pdf"} }
func (upperExtractor) Extract(_ context.Context, data []byte) (string, error) {
	if string(data) == "bad" {
		return "", errors.New("malformed xref")
	}
	return strings.ToUpper(string(data)), nil
}

func TestTargetName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ocr-report.txt", TargetName("ocr-", "report.pdf"))
	assert.Equal(t, "ocr-smith.2021.txt", TargetName("ocr-", "smith.2021.PDF"))
}

func TestPDFExtractorConvertsAndSkips(t *testing.T) {
	t.Parallel()

	tree := newMemoryTree()
	tree.add("2020", "a.pdf", []byte("alpha"))
	tree.add("2020", "b.pdf", []byte("bad"))
	tree.add("2020", "ocr-a.txt", []byte("old"))
	tree.add("2021", "c.pdf", []byte("gamma"))
	tree.add("2021", "ocr-c.txt", []byte("existing"))
	tree.add("2021", "notes.docx", []byte("ignored"))

	var logs bytes.Buffer
	summary, err := NewPDFExtractor(ExtractDeps{
		Tree:      tree,
		Extractor: upperExtractor{},
		Logger:    slog.New(slog.NewTextHandler(&logs, nil)),
	}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ExtractSummary{Converted: 0, Skipped: 2, Failed: 1}, summary)
	assert.Empty(t, tree.written)
	assert.Contains(t, logs.String(), "extraction failed")
	assert.Contains(t, logs.String(), "file=b.pdf")
}

func TestPDFExtractorForceOverwrites(t *testing.T) {
	t.Parallel()

	tree := newMemoryTree()
	tree.add("2020", "a.pdf", []byte("alpha"))
	tree.add("2020", "ocr-a.txt", []byte("old"))

	summary, err := NewPDFExtractor(ExtractDeps{Tree: tree, Extractor: upperExtractor{}, Force: true}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Converted)
	assert.Equal(t, "ALPHA", string(tree.written["mem://2020/ocr-a.txt"]))
}

func TestPDFExtractorWritesMissingTargets(t *testing.T) {
	t.Parallel()

	tree := newMemoryTree()
	tree.add("2022", "d.pdf", []byte("delta"))

	summary, err := NewPDFExtractor(ExtractDeps{Tree: tree, Extractor: upperExtractor{}}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ExtractSummary{Converted: 1}, summary)
	assert.Equal(t, "DELTA", string(tree.written["mem://2022/ocr-d.txt"]))
}

func TestPDFExtractorListErrorIsFatal(t *testing.T) {
	t.Parallel()

	tree := newMemoryTree()
	tree.listErr = corpus.ErrRootNotFound

	_, err := NewPDFExtractor(ExtractDeps{Tree: tree, Extractor: upperExtractor{}}).Run(context.Background())
	assert.ErrorIs(t, err, corpus.ErrRootNotFound)
}

func TestPDFExtractorOnDiskCorpus(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2020"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "2020", "broken.pdf"), []byte("not a pdf"), 0o644))

	tree := corpus.New(afs.New(), config.CorpusConfig{Root: root, Prefix: "ocr-", Extensions: []string{".txt"}}, extract.NewDefaultRegistry(), nil)

	summary, err := NewPDFExtractor(ExtractDeps{Tree: tree, Extractor: extract.PDF{}}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ExtractSummary{Failed: 1}, summary)
	_, statErr := os.Stat(filepath.Join(root, "2020", "ocr-broken.txt"))
	assert.True(t, os.IsNotExist(statErr))
}
