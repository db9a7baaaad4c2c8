package infra

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fd1az/swap-settler/business/settlement/domain"
	"github.com/fd1az/swap-settler/internal/apperror"
)

// JSONLJournal appends one JSON line per settlement to a file.
type JSONLJournal struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewJSONLJournal opens path for appending, creating parent directories.
func NewJSONLJournal(path string) (*JSONLJournal, error) {
	if path == "" {
		return nil, apperror.Validation(apperror.CodeRequiredField, "journal.path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, apperror.Internal(apperror.CodeJournalWriteFailed, path, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, apperror.Internal(apperror.CodeJournalWriteFailed, path, err)
	}
	return &JSONLJournal{file: f, enc: json.NewEncoder(f)}, nil
}

// Record appends s.
func (j *JSONLJournal) Record(ctx context.Context, s *domain.Settlement) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.enc.Encode(NewJournalEntry(s)); err != nil {
		return apperror.Internal(apperror.CodeJournalWriteFailed, s.ID, err)
	}
	return nil
}

// Close closes the file.
func (j *JSONLJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}
