package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
)

// TextProvider prompts on a writer and reads answers line by line.
//
// For a DiceRoll request a number is taken as the roll and an empty line (or
// "roll") rolls with the configured roller. "cancel", "exit" and "quit" cancel
// the session.
type TextProvider struct {
	reader *bufio.Reader
	writer io.Writer
	roller ports.DiceRoller

	lines chan lineResult
}

type lineResult struct {
	text string
	err  error
}

// NewTextProvider creates a provider reading r and prompting on w.
// roller may be nil, in which case rolls must be typed.
func NewTextProvider(r io.Reader, w io.Writer, roller ports.DiceRoller) *TextProvider {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &TextProvider{reader: bufio.NewReader(r), writer: w, roller: roller}
}

func (p *TextProvider) Provide(ctx context.Context, req domain.InteractionRequest) (domain.InteractionResponse, error) {
	for {
		fmt.Fprintf(p.writer, "%s\n> ", req.Prompt)
		line, err := p.readLine(ctx)
		if err != nil {
			return domain.InteractionResponse{}, err
		}
		line, err = SanitizeInput(line)
		if err != nil {
			fmt.Fprintf(p.writer, "invalid input: %v\n", err)
			continue
		}
		line = strings.TrimSpace(line)

		switch strings.ToLower(line) {
		case "cancel", "exit", "quit":
			return Cancel(req), nil
		}

		resp, ok, err := p.parse(req, line)
		if err != nil {
			return domain.InteractionResponse{}, err
		}
		if ok {
			return resp, nil
		}
		fmt.Fprintf(p.writer, "could not understand %q\n", line)
	}
}

func (p *TextProvider) parse(req domain.InteractionRequest, line string) (domain.InteractionResponse, bool, error) {
	switch req.Type {
	case domain.InteractionDiceRoll:
		if (line == "" || strings.EqualFold(line, "roll")) && p.roller != nil {
			res, err := p.roller.Roll(req.Meta(domain.MetaNotation))
			if err != nil {
				return domain.InteractionResponse{}, false, err
			}
			fmt.Fprintf(p.writer, "rolled %v = %d\n", res.Rolls, res.Total)
			return Answer(req, res.Total), true, nil
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			return domain.InteractionResponse{}, false, nil
		}
		return Answer(req, n), true, nil

	case domain.InteractionConfirm:
		switch strings.ToLower(line) {
		case "y", "yes":
			return Answer(req, true), true, nil
		case "n", "no":
			return Answer(req, false), true, nil
		}
		return domain.InteractionResponse{}, false, nil
	}

	if line == "" {
		return domain.InteractionResponse{}, false, nil
	}
	return Answer(req, line), true, nil
}

// readLine reads one line without blocking past ctx.
func (p *TextProvider) readLine(ctx context.Context) (string, error) {
	if p.lines == nil {
		p.lines = make(chan lineResult)
		go p.pump()
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		return res.text, res.err
	}
}

func (p *TextProvider) pump() {
	defer close(p.lines)
	for {
		text, err := p.reader.ReadString('\n')
		if err != nil && text == "" {
			p.lines <- lineResult{err: err}
			return
		}
		p.lines <- lineResult{text: text}
		if err != nil {
			p.lines <- lineResult{err: err}
			return
		}
	}
}
