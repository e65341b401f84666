package bsu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// CaptchaSolver turns the captcha image stored at `imagePath` (an absolute
// path) into the text the portal expects.
type CaptchaSolver interface {
	Solve(ctx context.Context, imagePath string) (string, error)
}

type CaptchaSolverFunc func(ctx context.Context, imagePath string) (string, error)

func (f CaptchaSolverFunc) Solve(ctx context.Context, imagePath string) (string, error) {
	return f(ctx, imagePath)
}

type promptLine struct {
	line string
	err  error
}

// PromptSolver asks an operator to read the captcha. It owns its input, so
// the same solver can answer any number of login attempts. Use
// NewPromptSolver to create one.
type PromptSolver struct {
	out    io.Writer
	reader *bufio.Reader

	mutex sync.Mutex
	// a read still in flight after its Solve was cancelled, the next Solve
	// takes over its line
	pending chan promptLine
}

func NewPromptSolver(in io.Reader, out io.Writer) *PromptSolver {
	return &PromptSolver{
		out:    out,
		reader: bufio.NewReader(in),
	}
}

func (p *PromptSolver) readLine() chan promptLine {
	if p.pending != nil {
		return p.pending
	}
	done := make(chan promptLine, 1)
	go func() {
		line, err := p.reader.ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		done <- promptLine{line: line, err: err}
	}()
	p.pending = done
	return done
}

func (p *PromptSolver) Solve(ctx context.Context, imagePath string) (string, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	_, err := fmt.Fprintf(p.out, "Please type in digits from %s: ", imagePath)
	if err != nil {
		return "", err
	}

	done := p.readLine()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		p.pending = nil
		if res.err != nil {
			return "", fmt.Errorf("read captcha answer: %w", res.err)
		}
		return strings.TrimSpace(res.line), nil
	}
}

// CommandSolver runs an external program with the image path appended to
// its arguments and uses its trimmed stdout as the answer.
type CommandSolver struct {
	Name string
	Args []string
}

func (c CommandSolver) Solve(ctx context.Context, imagePath string) (string, error) {
	args := append(append([]string{}, c.Args...), imagePath)
	out, err := exec.CommandContext(ctx, c.Name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("captcha command %s: %w", c.Name, err)
	}
	return strings.TrimSpace(string(out)), nil
}
