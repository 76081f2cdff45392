package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/gambit/internal/presentation/tui"
	"github.com/aretw0/gambit/pkg/actions"
	"github.com/aretw0/gambit/pkg/adapters/process"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/runner"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Input modes of the demo.
const (
	ModeAuto = "auto" // dice are rolled by the kernel's roller
	ModeText = "text" // a human answers prompts on stdin
	ModeJSON = "json" // JSON lines on stdin/stdout

	ModeProcess = "process" // allow-listed programs answer prompts
)

// DemoOptions configures RunDemo.
type DemoOptions struct {
	Mode   string
	In     io.Reader
	Out    io.Writer
	Quiet  bool
	Script []domain.Command

	// ProvidersPath is the providers.yaml read in ModeProcess.
	ProvidersPath string
}

// DemoScript is the default turn played by the demo.
func DemoScript() []domain.Command {
	return []domain.Command{
		{Type: actions.Attack, ActorID: "knight", TargetID: "goblin", ConsumesResource: true},
		{Type: actions.Fortify, ActorID: "archer", ConsumesResource: true},
		{Type: actions.Move, ActorID: "archer", ConsumesResource: true, Payload: map[string]any{"to": "w2"}},
		{Type: actions.Attack, ActorID: "knight", TargetID: "goblin", ConsumesResource: true},
		{Type: actions.EndTurn, ActorID: "knight"},
	}
}

// RunDemo plays the script against the stack's kernel and prints every outcome.
// Failed commands are reported and the script continues.
func RunDemo(ctx context.Context, st *Stack, opts DemoOptions) error {
	if opts.Script == nil {
		opts.Script = DemoScript()
	}
	p := tui.NewPrinter(opts.Out)

	var provider runner.InteractionProvider
	var mws []runner.Middleware
	switch opts.Mode {
	case "", ModeAuto:
		provider = runner.NewDiceProvider(st.Roller)
		mws = append(mws, runner.EchoMiddleware(opts.Out))
	case ModeText:
		provider = runner.NewTextProvider(opts.In, opts.Out, st.Roller)
	case ModeJSON:
		provider = runner.NewJSONProvider(opts.In, opts.Out)
	case ModeProcess:
		programs, err := process.LoadProviders(opts.ProvidersPath)
		if err != nil {
			return err
		}
		provider = process.NewProvider(
			process.WithRegistry(programs),
			process.WithFallback(runner.NewDiceProvider(st.Roller)),
		)
		mws = append(mws, runner.EchoMiddleware(opts.Out))
	default:
		return fmt.Errorf("unknown demo mode %q", opts.Mode)
	}
	mws = append(mws, runner.LoggingMiddleware(st.Logger))

	r := runner.NewRunner(
		runner.WithProvider(provider, mws...),
		runner.WithLogger(st.Logger),
	)

	human := opts.Mode != ModeJSON && !opts.Quiet
	var enc *jsoniter.Encoder
	if opts.Mode == ModeJSON {
		enc = json.NewEncoder(opts.Out)
	}
	if human {
		tui.PrintBanner(opts.Out)
		p.Units(st.Kernel.State())
	}

	for _, cmd := range opts.Script {
		if human {
			p.Command(cmd)
		}
		res, err := r.Run(ctx, st.Kernel, cmd)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		switch {
		case enc != nil:
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
		case human:
			p.Result(res)
		}
		if err := st.Compact(ctx); err != nil {
			st.Logger.Warn("compact failed", "err", err)
		}
	}

	if human {
		p.Units(st.Kernel.State())
	}
	return nil
}
