package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/gambit/pkg/codec"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Repository implements ports.StateRepository with a single Redis key.
type Repository struct {
	client *backend.Client
	codec  *codec.Codec
	key    string
}

var _ ports.StateRepository = (*Repository)(nil)

// NewRepository stores the State under prefix + "state".
// A nil codec uses codec.Default().
func NewRepository(client *backend.Client, c *codec.Codec, prefix string) *Repository {
	if c == nil {
		c = codec.Default()
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Repository{client: client, codec: c, key: prefix + "state"}
}

// LoadState reads the latest State.
func (r *Repository) LoadState(ctx context.Context) (domain.State, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, backend.Nil) {
		return domain.State{}, domain.ErrStateNotFound
	}
	if err != nil {
		return domain.State{}, fmt.Errorf("redis load state: %w", err)
	}
	return r.codec.DecodeState(data)
}

// SaveState overwrites the stored State.
func (r *Repository) SaveState(ctx context.Context, s domain.State) error {
	data, err := r.codec.EncodeState(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis save state: %w", err)
	}
	return nil
}
