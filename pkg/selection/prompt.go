package selection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// Choice is the answer to a face prompt.
type Choice struct {
	Index  int  // 1-based display index, valid when Cancel is false
	Cancel bool // User aborted
}

// Prompter asks the user to pick one of n candidates. It blocks until an
// answer arrives; there is no timeout. Context cancellation is a cancel.
type Prompter interface {
	Choose(ctx context.Context, n int) (Choice, error)
}

// PromptFunc adapts a function to the Prompter interface.
type PromptFunc func(ctx context.Context, n int) (Choice, error)

// Choose calls f.
func (f PromptFunc) Choose(ctx context.Context, n int) (Choice, error) {
	return f(ctx, n)
}

// ConsolePrompter reads choices line by line. A single goroutine owns the
// reader, so one prompter can be reused after a cancelled Choose.
type ConsolePrompter struct {
	in    *bufio.Reader
	out   io.Writer
	start sync.Once
	lines chan string
	err   error // Set before lines is closed
}

// NewConsolePrompter creates a prompter reading from in and writing prompts
// to out.
func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	return &ConsolePrompter{
		in:    bufio.NewReader(in),
		out:   out,
		lines: make(chan string),
	}
}

// Choose prompts until it gets a valid index, "q"/"quit", EOF or ctx is done.
func (p *ConsolePrompter) Choose(ctx context.Context, n int) (Choice, error) {
	for {
		fmt.Fprintf(p.out, "Choose face (1-%d): ", n)

		text, err := p.readLine(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return Choice{Cancel: true}, nil
		}
		if err != nil {
			return Choice{}, fmt.Errorf("read choice: %w", err)
		}

		choice := strings.ToLower(strings.TrimSpace(text))
		switch {
		case choice == "q" || choice == "quit":
			return Choice{Cancel: true}, nil
		case isDigits(choice):
			idx, err := strconv.Atoi(choice)
			if err == nil && idx >= 1 && idx <= n {
				return Choice{Index: idx}, nil
			}
			fmt.Fprintf(p.out, "❌ Please choose 1-%d\n", n)
		default:
			fmt.Fprintln(p.out, "❌ Invalid choice. Please try again.")
		}
	}
}

// readLine waits for the next line without blocking past ctx. A line that
// arrives after cancellation is kept for the next call.
func (p *ConsolePrompter) readLine(ctx context.Context) (string, error) {
	p.start.Do(func() { go p.readLoop() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case text, ok := <-p.lines:
		if !ok {
			return "", p.err
		}
		return text, nil
	}
}

func (p *ConsolePrompter) readLoop() {
	defer close(p.lines)
	for {
		text, err := p.in.ReadString('\n')
		if text != "" {
			p.lines <- text
		}
		if err != nil {
			p.err = err
			return
		}
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
