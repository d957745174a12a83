// Package prompt asks the user questions, either on a plain terminal
// or through an interactive shell.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"
)

// ErrNoAnswer indicates the input ended or the question was dismissed.
var ErrNoAnswer = errors.New("no answer")

// Provider asks blocking questions.
type Provider interface {
	Ask(question string) (string, error)
	Confirm(question string) (bool, error)
	Choose(question string, options []string) (int, error)
}

// Prober is implemented by providers which may not be usable.
type Prober interface {
	Available() bool
}

// Select returns the first available candidate, falling back to
// a Text provider on stdio.
func Select(candidates ...Provider) Provider {
	for _, p := range candidates {
		if p == nil {
			continue
		}
		if prober, ok := p.(Prober); ok && !prober.Available() {
			continue
		}
		return p
	}
	return NewText(os.Stdin, os.Stdout)
}

// Text prompts on a reader and a writer.
type Text struct {
	in  *bufio.Reader
	out io.Writer
}

// NewText creates a Text provider.
func NewText(in io.Reader, out io.Writer) *Text {
	return &Text{in: bufio.NewReader(in), out: out}
}

// Available implements Prober.
func (t *Text) Available() bool {
	return t.in != nil && t.out != nil
}

// Ask implements Provider.
func (t *Text) Ask(question string) (string, error) {
	fmt.Fprintf(t.out, "%s ", question)
	line, err := t.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", ErrNoAnswer
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm implements Provider.
func (t *Text) Confirm(question string) (bool, error) {
	return confirm(t.Ask, question)
}

// Choose implements Provider.
func (t *Text) Choose(question string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, ErrNoAnswer
	}
	fmt.Fprintln(t.out, question)
	for n, opt := range options {
		fmt.Fprintf(t.out, "  %d) %s\n", n+1, opt)
	}
	for {
		answer, err := t.Ask(fmt.Sprintf("[1-%d]:", len(options)))
		if err != nil {
			return -1, err
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		for n, opt := range options {
			if strings.EqualFold(answer, opt) {
				return n, nil
			}
		}
	}
}

// Shell prompts through an ishell.Shell.
type Shell struct {
	Shell *ishell.Shell
}

// Available implements Prober.
func (s *Shell) Available() bool {
	return s.Shell != nil
}

// Ask implements Provider.
func (s *Shell) Ask(question string) (string, error) {
	s.Shell.Print(question + " ")
	return strings.TrimSpace(s.Shell.ReadLine()), nil
}

// Confirm implements Provider.
func (s *Shell) Confirm(question string) (bool, error) {
	return confirm(s.Ask, question)
}

// Choose implements Provider.
func (s *Shell) Choose(question string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, ErrNoAnswer
	}
	if n := s.Shell.MultiChoice(options, question); n >= 0 {
		return n, nil
	}
	return -1, ErrNoAnswer
}

func confirm(ask func(string) (string, error), question string) (bool, error) {
	for {
		answer, err := ask(question + " [y/n]")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}
