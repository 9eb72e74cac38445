package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	suppressedNewline = regexp.MustCompile(`\\\n[ \t]*`)
	indentedLine      = regexp.MustCompile(`^(\s+)\S`)
)

// Dedent normalizes a multi-line literal written at source indentation.
// A backslash at end of line joins it with the next one, the smallest indent
// among indented lines is stripped, outer whitespace is trimmed and escaped
// `\n` sequences become real newlines.
func Dedent(s string) string {
	s = suppressedNewline.ReplaceAllString(s, "")

	lines := strings.Split(s, "\n")
	minIndent := -1
	for _, line := range lines {
		m := indentedLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if minIndent < 0 || len(m[1]) < minIndent {
			minIndent = len(m[1])
		}
	}

	if minIndent > 0 {
		for i, line := range lines {
			if line == "" || (line[0] != ' ' && line[0] != '\t') {
				continue
			}
			if len(line) < minIndent {
				lines[i] = ""
				continue
			}
			lines[i] = line[minIndent:]
		}
		s = strings.Join(lines, "\n")
	}

	return strings.ReplaceAll(strings.TrimSpace(s), `\n`, "\n")
}

// Dedentf interpolates args first, then dedents the result.
func Dedentf(format string, args ...any) string {
	return Dedent(fmt.Sprintf(format, args...))
}
