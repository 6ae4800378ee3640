package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/colonyops/revu/internal/core/review"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when input is needed but there is no
// terminal to ask on.
var ErrNotInteractive = errors.New("not running in a terminal")

// PrompterOptions configures a Prompter. Body and Yes answer the prompts
// without asking.
type PrompterOptions struct {
	Body        string
	Yes         bool
	Interactive bool
	Accessible  bool
	Input       io.Reader
	Output      io.Writer
}

// Prompter asks for comment bodies and confirmations with huh forms.
type Prompter struct {
	body        string
	yes         bool
	interactive bool
	accessible  bool
	in          io.Reader
	out         io.Writer
}

var _ review.Prompter = (*Prompter)(nil)

func NewPrompter(opts PrompterOptions) *Prompter {
	return &Prompter{
		body:        opts.Body,
		yes:         opts.Yes,
		interactive: opts.Interactive,
		accessible:  opts.Accessible,
		in:          opts.Input,
		out:         opts.Output,
	}
}

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// EditThread returns the comment body for thread. A preset body is used as
// is, followed by the thread's suggestion block when it has one. Aborting
// the form returns an empty body.
func (p *Prompter) EditThread(ctx context.Context, thread review.PendingThread) (string, error) {
	initial := strings.TrimSpace(thread.Comment().Body)

	if p.body != "" {
		if initial == "" {
			return p.body, nil
		}
		return p.body + "\n\n" + initial, nil
	}

	if !p.interactive {
		return "", fmt.Errorf("%w: pass --body to comment", ErrNotInteractive)
	}

	body := initial
	start, end := thread.Span()
	title := fmt.Sprintf("Comment on %s:%s (%s)", thread.Path(), spanLabel(start, end), thread.Side())

	field := huh.NewText().
		Title(title).
		Description("ctrl+e opens $EDITOR").
		Lines(12).
		Editor().
		EditorExtension("md").
		Value(&body)

	if err := p.run(ctx, field); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", err
	}

	return body, nil
}

// Confirm asks a yes/no question. Without a terminal only a preset yes
// confirms.
func (p *Prompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if p.yes {
		return true, nil
	}
	if !p.interactive {
		return false, fmt.Errorf("%w: pass --yes to confirm", ErrNotInteractive)
	}

	var ok bool
	field := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)

	if err := p.run(ctx, field); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}

	return ok, nil
}

func (p *Prompter) run(ctx context.Context, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).WithAccessible(p.accessible)
	if p.in != nil {
		form = form.WithInput(p.in)
	}
	if p.out != nil {
		form = form.WithOutput(p.out)
	}
	return form.RunWithContext(ctx)
}
