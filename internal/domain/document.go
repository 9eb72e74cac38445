package domain

import "strings"

// Document is a single corpus file turned into text.
type Document struct {
	Year             string
	Name             string
	OriginalNameRoot string
	OriginalPDFName  string
	Contents         string
}

// NewDocument derives the source identifiers from the file name once at load time.
func NewDocument(year, name, prefix, contents string) Document {
	root := strings.TrimPrefix(name, prefix)
	if i := strings.LastIndex(root, "."); i > 0 {
		root = root[:i]
	}
	return Document{
		Year:             year,
		Name:             name,
		OriginalNameRoot: root,
		OriginalPDFName:  root + ".pdf",
		Contents:         contents,
	}
}

// IsEmpty reports whether the document has no text worth classifying.
func (d Document) IsEmpty() bool {
	return strings.TrimSpace(d.Contents) == ""
}
