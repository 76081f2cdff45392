package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/runner"
)

// ErrNotRegistered is returned for an interaction type without a program.
var ErrNotRegistered = errors.New("no process registered for interaction type")

// DefaultTimeout bounds a single program run.
const DefaultTimeout = 10 * time.Second

// Provider implements runner.InteractionProvider by running a program per
// interaction type. Only registered programs run.
//
// The request is written as JSON on the program's stdin and exposed through
// GAMBIT_SESSION_ID, GAMBIT_PROMPT, GAMBIT_TYPE and GAMBIT_META_<KEY>.
// Stdout is read as:
//   - "cancel": the session is cancelled
//   - a JSON object: the response data
//   - anything else: the value of the request's variable (integers and
//     booleans are parsed)
type Provider struct {
	registry map[domain.InteractionType]ProcessConfig
	baseDir  string
	timeout  time.Duration
	fallback runner.InteractionProvider
}

// Option configures the Provider.
type Option func(*Provider)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(programs map[domain.InteractionType]ProcessConfig) Option {
	return func(p *Provider) {
		for t, cfg := range programs {
			p.registry[t] = cfg
		}
	}
}

// WithBaseDir sets the working directory for executed programs.
func WithBaseDir(dir string) Option {
	return func(p *Provider) {
		p.baseDir = dir
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.timeout = d
	}
}

// WithFallback answers unregistered interaction types with next instead of
// failing with ErrNotRegistered.
func WithFallback(next runner.InteractionProvider) Option {
	return func(p *Provider) {
		p.fallback = next
	}
}

// NewProvider creates a process Provider.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		registry: make(map[domain.InteractionType]ProcessConfig),
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register adds a trusted program for an interaction type.
func (p *Provider) Register(t domain.InteractionType, command string, args ...string) {
	p.registry[t] = ProcessConfig{Type: t, Command: command, Args: args}
}

func (p *Provider) Provide(ctx context.Context, req domain.InteractionRequest) (domain.InteractionResponse, error) {
	cfg, ok := p.registry[req.Type]
	if !ok {
		if p.fallback != nil {
			return p.fallback.Provide(ctx, req)
		}
		return domain.InteractionResponse{}, fmt.Errorf("%w: %s", ErrNotRegistered, req.Type)
	}

	input, err := json.Marshal(req)
	if err != nil {
		return domain.InteractionResponse{}, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// Request fields travel as environment variables, never as flags.
	cmd := exec.CommandContext(ctx, cfg.Command, cfg.Args...)
	cmd.Dir = p.baseDir
	cmd.WaitDelay = time.Second
	cmd.Stdin = bytes.NewReader(input)
	cmd.Env = append(cmd.Environ(), environment(req, cfg.Environment)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.InteractionResponse{}, fmt.Errorf("%s: %w", cfg.Command, ctxErr)
		}
		return domain.InteractionResponse{}, fmt.Errorf("execution failed: %w. Stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return parseOutput(req, strings.TrimSpace(stdout.String()))
}

func environment(req domain.InteractionRequest, extra map[string]string) []string {
	env := []string{
		"GAMBIT_SESSION_ID=" + req.SessionID,
		"GAMBIT_PROMPT=" + req.Prompt,
		"GAMBIT_TYPE=" + string(req.Type),
	}
	for k, v := range req.Metadata {
		env = append(env, fmt.Sprintf("GAMBIT_META_%s=%s", strings.ToUpper(k), v))
	}
	for k, v := range extra {
		env = append(env, k+"="+v)
	}
	return env
}

func parseOutput(req domain.InteractionRequest, out string) (domain.InteractionResponse, error) {
	switch {
	case strings.EqualFold(out, "cancel"):
		return runner.Cancel(req), nil
	case strings.HasPrefix(out, "{") && strings.HasSuffix(out, "}"):
		resp := domain.InteractionResponse{SessionID: req.SessionID}
		if err := json.Unmarshal([]byte(out), &resp.Data); err != nil {
			return domain.InteractionResponse{}, fmt.Errorf("parse output: %w", err)
		}
		return resp, nil
	case out == "":
		return domain.InteractionResponse{}, errors.New("program produced no output")
	}

	var value any = out
	if n, err := strconv.Atoi(out); err == nil {
		value = n
	} else if b, err := strconv.ParseBool(out); err == nil {
		value = b
	}
	return runner.Answer(req, value), nil
}
