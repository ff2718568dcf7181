package parser

import "fmt"

// SyntaxError is the sole error type the parser surfaces.
type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

func CreateSyntaxError(line, column int, message string) SyntaxError {
	return SyntaxError{Line: line, Column: column, Message: message}
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("💥 SyntaxError at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

func syntaxErrorf(line, column int, format string, args ...any) SyntaxError {
	return SyntaxError{Line: line, Column: column, Message: fmt.Sprintf(format, args...)}
}
