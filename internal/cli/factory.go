package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/gambit"
	"github.com/aretw0/gambit/internal/config"
	"github.com/aretw0/gambit/internal/logging"
	"github.com/aretw0/gambit/pkg/actions"
	"github.com/aretw0/gambit/pkg/adapters/file"
	"github.com/aretw0/gambit/pkg/adapters/memory"
	"github.com/aretw0/gambit/pkg/adapters/redis"
	"github.com/aretw0/gambit/pkg/adapters/sqlite"
	"github.com/aretw0/gambit/pkg/codec"
	"github.com/aretw0/gambit/pkg/dice"
	"github.com/aretw0/gambit/pkg/observability"
	"github.com/aretw0/gambit/pkg/persistence/middleware"
	"github.com/aretw0/gambit/pkg/ports"
)

// Stack is a kernel wired to the storage backend selected in the configuration.
type Stack struct {
	Kernel  *gambit.Kernel
	Store   ports.SessionStore
	Repo    ports.StateRepository
	Metrics *observability.Metrics
	Roller  *dice.Roller
	Logger  *slog.Logger

	// SQLite is set when the sqlite backend is selected.
	SQLite *sqlite.Store

	cfg     config.Config
	closers []io.Closer
}

// NewLogger builds the application logger from the log section.
func NewLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Format == "json" {
		return logging.NewJSON(w, level), nil
	}
	return logging.New(level), nil
}

// OpenStores creates the SessionStore and StateRepository of the configured
// backend. Sessions are encrypted when a key is configured. The returned
// closers must be closed by the caller.
func OpenStores(cfg config.Config) (ports.SessionStore, ports.StateRepository, ports.DistributedLocker, []io.Closer, error) {
	store, repo, locker, closers, err := openBackend(cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if cfg.Session.EncryptionKey == "" {
		return store, repo, locker, closers, nil
	}
	enc, err := encryption(cfg.Session)
	if err != nil {
		for _, c := range closers {
			_ = c.Close()
		}
		return nil, nil, nil, nil, err
	}
	return middleware.Chain(store, enc), repo, locker, closers, nil
}

func encryption(cfg config.SessionConfig) (middleware.Middleware, error) {
	active, err := config.DecodeKey(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}
	ec := middleware.EncryptionConfig{ActiveKey: active}
	for _, k := range cfg.FallbackKeys {
		key, err := config.DecodeKey(k)
		if err != nil {
			return nil, err
		}
		ec.FallbackKeys = append(ec.FallbackKeys, key)
	}
	return middleware.NewEncryptionMiddleware(ec)
}

// RedactedView wraps store so loaded sessions hide the configured patterns.
func RedactedView(store ports.SessionStore, cfg config.SessionConfig) (ports.SessionStore, error) {
	mw, err := middleware.NewPIIMiddleware(cfg.RedactPatterns)
	if err != nil {
		return nil, fmt.Errorf("redact patterns: %w", err)
	}
	return mw(store), nil
}

func openBackend(cfg config.Config) (ports.SessionStore, ports.StateRepository, ports.DistributedLocker, []io.Closer, error) {
	c := codec.Default()
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return memory.NewStore(), memory.NewRepository(), nil, nil, nil

	case config.BackendFile:
		return file.NewStore(filepath.Join(cfg.Store.Dir, "sessions")), file.NewRepository(cfg.Store.Dir, c), nil, nil, nil

	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, nil, nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		db, err := sqlite.Open(cfg.SQLite.Path, sqlite.WithCodec(c))
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return db, db, nil, []io.Closer{db}, nil

	case config.BackendRedis:
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Session.TTL),
		)
		repo := redis.NewRepository(store.Client(), c, cfg.Redis.Prefix)
		locker := redis.NewLocker(store.Client(), cfg.Redis.Prefix)
		return store, repo, locker, []io.Closer{store}, nil
	}
	return nil, nil, nil, nil, fmt.Errorf("unknown backend %q", cfg.Store.Backend)
}

// Build wires a kernel for cfg. Extra options are applied after the
// configured ones.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...gambit.Option) (*Stack, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	store, repo, locker, closers, err := OpenStores(cfg)
	if err != nil {
		return nil, err
	}
	st := &Stack{
		Store:   store,
		Repo:    repo,
		Metrics: observability.NewMetrics(),
		Logger:  logger,
		cfg:     cfg,
		closers: closers,
	}
	if db, ok := repo.(*sqlite.Store); ok {
		st.SQLite = db
	}

	if cfg.Dice.Seed != 0 {
		st.Roller = dice.NewRoller(cfg.Dice.Seed)
	} else if st.Roller, err = dice.NewRandomRoller(); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("seed dice: %w", err)
	}

	kernelOpts := []gambit.Option{
		gambit.WithRepository(repo),
		gambit.WithSessionStore(store),
		gambit.WithSessionTTL(cfg.Session.TTL),
		gambit.WithLockTTL(cfg.Session.LockTTL),
		gambit.WithMetrics(st.Metrics),
		gambit.WithLogger(logger),
	}
	if locker != nil {
		kernelOpts = append(kernelOpts, gambit.WithLocker(locker))
	}
	st.Kernel, err = gambit.New(ctx, append(kernelOpts, opts...)...)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	logger.Debug("stack ready", "backend", cfg.Store.Backend, "version", st.Kernel.State().Version)
	return st, nil
}

// SeedIfEmpty sets up the skirmish scenario when the State has no board yet.
// It reports whether the scenario was installed.
func (s *Stack) SeedIfEmpty(ctx context.Context) (bool, error) {
	if len(s.Kernel.State().Board.Tiles) > 0 {
		return false, nil
	}
	if _, err := s.Kernel.Setup(ctx, actions.Skirmish()...); err != nil {
		return false, fmt.Errorf("seed scenario: %w", err)
	}
	s.Logger.Info("scenario installed", "board", "skirmish")
	return true, nil
}

// Compact drops old State snapshots when the sqlite backend keeps history.
func (s *Stack) Compact(ctx context.Context) error {
	if s.SQLite == nil || s.cfg.SQLite.Keep <= 0 {
		return nil
	}
	n, err := s.SQLite.Prune(ctx, s.cfg.SQLite.Keep)
	if err != nil {
		return err
	}
	if n > 0 {
		s.Logger.Debug("pruned state snapshots", "count", n)
	}
	return nil
}

// Close releases the storage backend.
func (s *Stack) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	s.closers = nil
	return errors.Join(errs...)
}
