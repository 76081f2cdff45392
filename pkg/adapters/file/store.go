package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/gambit/pkg/codec"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
)

const ext = ".json"

// ErrInvalidSessionID is returned for ids that are empty or would escape the directory.
var ErrInvalidSessionID = errors.New("invalid session id")

// Store implements ports.SessionStore with one JSON file per session.
type Store struct {
	BasePath string
}

var _ ports.SessionStore = (*Store)(nil)

// NewStore creates a Store. An empty basePath defaults to ".gambit/sessions".
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".gambit", "sessions")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return filepath.Join(s.BasePath, id+ext), nil
}

// Save writes the session atomically.
func (s *Store) Save(ctx context.Context, session *domain.SessionContext) error {
	if _, err := s.path(session.SessionID); err != nil {
		return err
	}
	data, err := codec.EncodeSession(session)
	if err != nil {
		return err
	}
	return writeAtomic(s.BasePath, session.SessionID+ext, data)
}

// Load reads a session file.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.SessionContext, error) {
	p, err := s.path(sessionID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	return codec.DecodeSession(data)
}

// Delete removes a session file.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	p, err := s.path(sessionID)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete session file: %w", err)
	}
	return nil
}

// List returns the stored session ids, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ext))
	}
	sort.Strings(ids)
	return ids, nil
}
