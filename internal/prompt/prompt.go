// Package prompt reads interactive input for the CLI. Prompts go to stderr so
// stdout stays machine-readable.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/term"
)

var ErrNotTerminal = errors.New("stdin is not a terminal")

// Prompter reads lines and hidden secrets. The zero value is not usable; use
// Terminal or New.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	fd     int
	hidden bool
}

// Terminal prompts on os.Stdin with echo disabled for secrets.
func Terminal() *Prompter {
	return &Prompter{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stderr,
		fd:     int(os.Stdin.Fd()),
		hidden: true,
	}
}

// New reads from r without echo control, for pipes and tests.
func New(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(r), out: w, fd: -1}
}

func (p *Prompter) Line(label, def string) string {
	if def != "" {
		_, _ = fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		_, _ = fmt.Fprintf(p.out, "%s: ", label)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return def
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

func (p *Prompter) YesNo(label string) bool {
	s := strings.ToLower(p.Line(label+" [y/N]", ""))
	return s == "y" || s == "yes"
}

// Secret reads one line without echo when attached to a terminal.
func (p *Prompter) Secret(label string) (string, error) {
	_, _ = fmt.Fprintf(p.out, "%s: ", label)

	if p.hidden {
		if !term.IsTerminal(p.fd) {
			return "", ErrNotTerminal
		}
		raw, err := term.ReadPassword(p.fd)
		_, _ = fmt.Fprintln(p.out)
		if err != nil {
			return "", errors.Wrap(err, "password input failed")
		}
		s := string(raw)
		clear(raw)
		return s, nil
	}

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", errors.Wrap(err, "read secret")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// NewPassword asks twice and requires both entries to match.
func (p *Prompter) NewPassword(label string) (string, error) {
	first, err := p.Secret(label)
	if err != nil {
		return "", err
	}
	second, err := p.Secret("Repeat " + strings.ToLower(label))
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}
