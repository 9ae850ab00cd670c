package errors

import (
	"fmt"
	"strings"
)

// SyntaxError describes the first syntax problem found in a source file.
type SyntaxError struct {
	File     string
	Line     int
	Column   int
	Message  string
	LineText string
}

// Error implements the error interface
func (se *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: syntax error: %s", se.File, se.Line, se.Column, se.Message)
}

// Report renders the error the way a compiler would, with the offending
// line and a caret under the column.
func (se *SyntaxError) Report() string {
	var b strings.Builder
	b.WriteString(se.Error())
	if se.LineText == "" {
		return b.String()
	}

	b.WriteString("\n\n    ")
	b.WriteString(se.LineText)
	b.WriteString("\n    ")
	col := se.Column
	if col > len(se.LineText) {
		col = len(se.LineText)
	}
	for _, r := range se.LineText[:col] {
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteString("^")

	return b.String()
}
