package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/muesli/termenv"
)

// Printer writes kernel results for humans, colored when the terminal allows it.
type Printer struct {
	out *termenv.Output
}

// NewPrinter creates a Printer on w. Pass termenv.WithProfile(termenv.Ascii)
// to disable colors.
func NewPrinter(w io.Writer, opts ...termenv.OutputOption) *Printer {
	return &Printer{out: termenv.NewOutput(w, opts...)}
}

func (p *Printer) color(s, hex string) termenv.Style {
	return p.out.String(s).Foreground(p.out.Color(hex))
}

// Command prints the command about to be handled.
func (p *Printer) Command(cmd domain.Command) {
	line := fmt.Sprintf("> %s %s", cmd.Type, cmd.ActorID)
	if cmd.TargetID != "" {
		line += " -> " + string(cmd.TargetID)
	}
	if to, ok := cmd.StringArg("to"); ok {
		line += " to " + to
	}
	fmt.Fprintln(p.out, p.out.String(line).Bold())
}

// Result prints a command outcome with its effects.
func (p *Printer) Result(res domain.CommandResult) {
	switch res.Status {
	case domain.StatusOK:
		line := "ok"
		if len(res.Tags) > 0 {
			line += " [" + strings.Join(res.Tags, ", ") + "]"
		}
		fmt.Fprintln(p.out, p.color("  ✔ "+line, "#22c55e"))
		if why, ok := res.Variables[domain.VarExplanation].(string); ok && why != "" {
			fmt.Fprintln(p.out, p.out.String("    "+why).Faint())
		}
		for _, e := range res.Effects {
			p.Effect(e)
		}
	case domain.StatusSuspended:
		prompt := ""
		if res.Request != nil {
			prompt = res.Request.Prompt
		}
		fmt.Fprintln(p.out, p.color("  … "+prompt, "#eab308"))
	case domain.StatusFailed:
		fmt.Fprintln(p.out, p.color("  ✘ "+res.Reason, "#ef4444"))
	}
}

// Effect prints one effect.
func (p *Printer) Effect(e domain.Effect) {
	fmt.Fprintf(p.out, "    • %s\n", e.Description)
}

// Units prints the phase and every entity with its vital stats.
func (p *Printer) Units(s domain.State) {
	fmt.Fprintln(p.out, p.color(fmt.Sprintf("phase %s · version %d", s.PhaseID, s.Version), "#818cf8"))
	for _, e := range s.Entities.All() {
		line := fmt.Sprintf("  %-8s %-4s", e.ID, e.Tile)
		if c, ok := e.Component(domain.ComponentHealth); ok {
			line += fmt.Sprintf(" hp %d/%d", c[domain.FieldCurrent], c[domain.FieldMax])
		}
		if c, ok := e.Component(domain.ComponentActionPoints); ok {
			line += fmt.Sprintf(" ap %d/%d", c[domain.FieldCurrent], c[domain.FieldMax])
		}
		fmt.Fprintln(p.out, line)
	}
}

// Note prints a system message.
func (p *Printer) Note(format string, args ...any) {
	fmt.Fprintln(p.out, p.out.String(">>> "+fmt.Sprintf(format, args...)).Faint())
}
