package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/gambit/pkg/codec"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
)

// StateFile is the name of the State file inside the repository directory.
const StateFile = "state.json"

// Repository implements ports.StateRepository with a single JSON file.
type Repository struct {
	dir   string
	codec *codec.Codec
}

var _ ports.StateRepository = (*Repository)(nil)

// NewRepository stores the State in dir/state.json. A nil codec uses codec.Default().
func NewRepository(dir string, c *codec.Codec) *Repository {
	if dir == "" {
		dir = ".gambit"
	}
	if c == nil {
		c = codec.Default()
	}
	return &Repository{dir: dir, codec: c}
}

// Path returns the State file path.
func (r *Repository) Path() string {
	return filepath.Join(r.dir, StateFile)
}

// LoadState reads the State file.
func (r *Repository) LoadState(ctx context.Context) (domain.State, error) {
	data, err := os.ReadFile(r.Path())
	if errors.Is(err, os.ErrNotExist) {
		return domain.State{}, domain.ErrStateNotFound
	}
	if err != nil {
		return domain.State{}, fmt.Errorf("read state file: %w", err)
	}
	return r.codec.DecodeState(data)
}

// SaveState writes the State file atomically.
func (r *Repository) SaveState(ctx context.Context, s domain.State) error {
	data, err := r.codec.EncodeState(s)
	if err != nil {
		return err
	}
	return writeAtomic(r.dir, StateFile, data)
}
