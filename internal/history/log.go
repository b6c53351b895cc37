package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SchemaVersion is the current log schema version.
const SchemaVersion = 1

// ErrLogClosed is returned when operations are attempted on a closed log.
var ErrLogClosed = errors.New("history log is closed")

// schemaHeader is the first line of the JSONL file.
type schemaHeader struct {
	TomatoSchemaVersion int   `json:"tomato_schema_version"`
	CreatedAt           int64 `json:"created_at"`
}

// Log is a JSONL file of completed intervals.
type Log struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	logger *slog.Logger
	closed bool
}

// Open opens or creates the log at path, writing the schema header to a
// new file.
func Open(path string, logger *slog.Logger) (*Log, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	l := &Log{path: path, file: file, logger: logger}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.Size() == 0 {
		if err := l.writeHeader(); err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	return l, nil
}

// Path returns the file path.
func (l *Log) Path() string {
	return l.path
}

func (l *Log) writeHeader() error {
	data, err := json.Marshal(schemaHeader{
		TomatoSchemaVersion: SchemaVersion,
		CreatedAt:           time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	_, err = l.file.Write(append(data, '\n'))
	return err
}

// Append writes one record and syncs the file.
func (l *Log) Append(r Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLogClosed
	}

	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append %s: %w", l.path, err)
	}
	return l.file.Sync()
}

// Load reads every record in file order. Malformed lines are skipped.
func (l *Log) Load() ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrLogClosed
	}

	if _, err := l.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", l.path, err)
	}
	// Appends always go to the end; the read offset only matters for Load.
	defer func() { _, _ = l.file.Seek(0, io.SeekEnd) }()

	var records []Record
	scanner := bufio.NewScanner(l.file)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if lineNum == 1 {
			var header schemaHeader
			if err := json.Unmarshal(line, &header); err == nil && header.TomatoSchemaVersion > 0 {
				if header.TomatoSchemaVersion > SchemaVersion {
					return nil, fmt.Errorf("unsupported schema version %d (max: %d)",
						header.TomatoSchemaVersion, SchemaVersion)
				}
				continue
			}
		}

		var r Record
		if err := json.Unmarshal(line, &r); err != nil || r.ID == "" {
			l.logger.Debug("skipping malformed history line", "path", l.path, "line", lineNum)
			continue
		}
		records = append(records, r)
	}

	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("error reading %s: %w", l.path, err)
	}
	return records, nil
}

// Clear truncates the log back to just the header.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLogClosed
	}

	if err := l.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate %s: %w", l.path, err)
	}
	if err := l.writeHeader(); err != nil {
		return err
	}
	return l.file.Sync()
}

// Close releases the file handle.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}
