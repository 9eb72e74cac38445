// Package prompt builds the two-message chat prompt sent for every report.
package prompt

import (
	"fmt"
	"strings"

	"PFDClassifier/internal/domain"
	"PFDClassifier/internal/ports"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

var defaultSystemPrompt = Dedent(`You are a document classifier for use in investigative journalism.
        The journalist will provide you with a coroner's report, delimited with triple quotes (""").
        You will answer a yes/no question about the contents of the report.
        You must only answer YES or NO.
`)

const question = `Does the report mention a problem with the ambulance service, such as a delay, mistake, or capacity issue? Please answer simply "YES" or "NO", in all caps, without punctuation.`

// Builder renders prompts for corpus documents.
type Builder struct {
	system string
}

// NewBuilder uses the built-in classifier instruction unless override is set.
func NewBuilder(override string) *Builder {
	system := Dedent(override)
	if system == "" {
		system = defaultSystemPrompt
	}
	return &Builder{system: system}
}

// System returns the normalized system instruction.
func (b *Builder) System() string {
	return b.system
}

// User embeds the trimmed report in the classification question.
func (b *Builder) User(doc domain.Document) string {
	return fmt.Sprintf("This is a coroner's report about a person who died in %s:\n\n\"\"\"\n%s\n\"\"\"\n\n%s",
		doc.Year, strings.TrimSpace(doc.Contents), question)
}

// Messages returns the system and user messages in send order.
func (b *Builder) Messages(doc domain.Document) []ports.Message {
	return []ports.Message{
		{Role: RoleSystem, Content: b.system},
		{Role: RoleUser, Content: b.User(doc)},
	}
}
