/*
Package transcript persists the ordered chat history.

This file implements the Store interface on top of a flat JSONL file:
one JSON-encoded message per line, opened with O_APPEND and fsynced
before the append is acknowledged. The file stays human-inspectable
with any text tool.
*/
package transcript

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gemchat/internal/app/user"
	"gemchat/internal/pkg/logx"
	"gemchat/internal/pkg/metrics"
)

// maxLineBytes bounds a single transcript line when scanning the log back in.
const maxLineBytes = 1 << 20

// FileStore is the JSONL-backed Store implementation.
type FileStore struct {
	// path is the location of the transcript file.
	path string

	// mu serializes appends. Without it two writers could interleave
	// partial lines or, worse, acknowledge a write the other clobbers.
	mu sync.Mutex

	// structured logger with store context.
	logger zerolog.Logger
}

// NewFileStore opens (or prepares to create) the transcript at path and
// ensures its parent directory exists.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create transcript directory %s: %w", dir, err)
		}
	}

	storeLogger := logx.Logger().With().
		Str("component", "TranscriptStore").
		Str("path", path).
		Logger()

	return &FileStore{
		path:   path,
		logger: storeLogger,
	}, nil
}

// Append implements Store. The message is written as one JSONL line and
// fsynced before the call returns.
func (s *FileStore) Append(ctx context.Context, author user.User, content string, at time.Time) (Message, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}

	msg := newMessage(author, content, at)

	line, err := json.Marshal(msg)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode message: %w", err)
	}

	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return Message{}, fmt.Errorf("failed to open transcript: %w", err)
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return Message{}, fmt.Errorf("failed to append to transcript: %w", err)
	}

	// Durability before acknowledgement: the broadcast must never
	// announce a message the log does not hold.
	if err := f.Sync(); err != nil {
		f.Close()
		return Message{}, fmt.Errorf("failed to sync transcript: %w", err)
	}

	if err := f.Close(); err != nil {
		return Message{}, fmt.Errorf("failed to close transcript: %w", err)
	}

	metrics.TranscriptAppendSeconds.Observe(time.Since(start).Seconds())

	return msg, nil
}

// ReadAll implements Store. A missing file reads as an empty transcript.
func (s *FileStore) ReadAll(ctx context.Context) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Message{}, nil
		}
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()

	messages := []Message{}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			s.logger.Error().Err(err).Int("line", lineNo).Msg("Corrupt transcript record.")
			return nil, fmt.Errorf("corrupt transcript record at line %d: %w", lineNo, err)
		}

		messages = append(messages, msg)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	return messages, nil
}
