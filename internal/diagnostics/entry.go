package diagnostics

import "fmt"

// Severity classifies an Entry. Entries are informational only: they never
// gate the compiler's own diagnostics (see parser.Diagnostic), which
// remain the sole contract for "did assembly succeed".
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
	SeverityTrace   = "trace"
)

// Entry is a single trace event recorded by one pipeline stage. Core fields
// are immutable once recorded; Snippet and Hint may be attached by chaining
// before the entry is read back.
type Entry struct {
	severity string
	phase    string
	message  string
	location Location
	snippet  string
	hint     string
}

func (e *Entry) Severity() string   { return e.severity }
func (e *Entry) Phase() string      { return e.phase }
func (e *Entry) Message() string    { return e.message }
func (e *Entry) Location() Location { return e.location }
func (e *Entry) Snippet() string    { return e.snippet }
func (e *Entry) Hint() string       { return e.hint }

// WithSnippet attaches the source text the entry refers to and returns the
// same *Entry for chaining.
func (e *Entry) WithSnippet(text string) *Entry {
	e.snippet = text
	return e
}

// WithHint attaches a fix suggestion and returns the same *Entry for
// chaining.
func (e *Entry) WithHint(text string) *Entry {
	e.hint = text
	return e
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", e.severity, e.phase, e.location, e.message)
}
