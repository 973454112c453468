package upload

import (
	"io"
	"strings"
	"sync"
)

// Log is the append-only surface an activation reports to. Each call appends
// exactly one line.
type Log interface {
	Append(line string)
}

// LineLog writes newline-terminated lines to an io.Writer. Lines from
// concurrent activations may interleave but are never split. Append cannot
// fail; the first write error is kept for Err and later lines are dropped.
type LineLog struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

func NewLineLog(w io.Writer) *LineLog {
	return &LineLog{w: w}
}

func (r *LineLog) Append(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	_, r.err = io.WriteString(r.w, line+"\n")
}

// Err returns the first error the writer reported.
func (r *LineLog) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// MemoryLog keeps lines in memory, the way a page text region accumulates them.
type MemoryLog struct {
	mu    sync.Mutex
	lines []string
}

func (r *MemoryLog) Append(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

// Lines returns a copy of the lines appended so far.
func (r *MemoryLog) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Last returns the most recent line, or "" if nothing was appended.
func (r *MemoryLog) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lines) == 0 {
		return ""
	}
	return r.lines[len(r.lines)-1]
}

// String renders the log as the text region would show it.
func (r *MemoryLog) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sb strings.Builder
	for _, line := range r.lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}
