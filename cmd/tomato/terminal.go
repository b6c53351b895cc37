package main

import (
	"os"
	"sync"
)

// terminalOutput is the program's output shared with the bell fallback.
// Writes are serialised so a BEL never lands inside a rendered frame. The
// embedded file keeps Fd and Read so bubbletea still detects the terminal.
type terminalOutput struct {
	*os.File
	mu sync.Mutex
}

func newTerminalOutput(f *os.File) *terminalOutput {
	return &terminalOutput{File: f}
}

func (t *terminalOutput) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.File.Write(p)
}

func (t *terminalOutput) WriteString(s string) (int, error) {
	return t.Write([]byte(s))
}

// Close leaves the underlying file open; stdout outlives the program.
func (t *terminalOutput) Close() error {
	return nil
}
