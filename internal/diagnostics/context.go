// Package diagnostics is an optional trace sink that records human-readable
// progress and warnings for one pipeline run. The vm32 CLI creates and fills
// it; the lexer, parser, compiler and interpreter do not take one. It sits
// alongside, never instead of, the structured error values
// (parser.Diagnostic, vm.MachineError) — those remain the contract callers
// must check; a Context is for richer CLI output such as vm32's --verbose
// flag.
package diagnostics

import "sync"

// Context is a passive, append-only, concurrency-safe ledger of Entry
// values. Create one with New and pass it by reference through a pipeline;
// every stage records into the same Context.
type Context struct {
	filePath string
	phase    string
	entries  []*Entry
	mu       sync.Mutex
}

// New returns a *Context for filePath with an empty entry list and no
// active phase.
func New(filePath string) *Context {
	return &Context{filePath: filePath}
}

// SetPhase tags subsequent entries with name until changed again.
func (c *Context) SetPhase(name string) {
	c.mu.Lock()
	c.phase = name
	c.mu.Unlock()
}

func (c *Context) Phase() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Loc builds a Location against the context's primary file.
func (c *Context) Loc(start, end int) Location {
	return Span(c.filePath, start, end)
}

func (c *Context) record(severity string, loc Location, message string) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := &Entry{severity: severity, phase: c.phase, message: message, location: loc}
	c.entries = append(c.entries, e)
	return e
}

func (c *Context) Error(loc Location, message string) *Entry {
	return c.record(SeverityError, loc, message)
}

func (c *Context) Warning(loc Location, message string) *Entry {
	return c.record(SeverityWarning, loc, message)
}

func (c *Context) Info(loc Location, message string) *Entry {
	return c.record(SeverityInfo, loc, message)
}

func (c *Context) Trace(loc Location, message string) *Entry {
	return c.record(SeverityTrace, loc, message)
}

// Entries returns every recorded entry in insertion order.
func (c *Context) Entries() []*Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Context) Errors() []*Entry { return c.filter(SeverityError) }

func (c *Context) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.severity == SeverityError {
			return true
		}
	}
	return false
}

func (c *Context) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Context) FilePath() string { return c.filePath }

func (c *Context) filter(severity string) []*Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*Entry
	for _, e := range c.entries {
		if e.severity == severity {
			out = append(out, e)
		}
	}
	return out
}
