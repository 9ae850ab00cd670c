// Package prompt asks the user for the values a session still lacks.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/conneroisu/cloudsync/internal/cloud"
	"github.com/conneroisu/cloudsync/internal/config"
	"github.com/conneroisu/cloudsync/internal/console"
)

// ErrAborted is returned when the user leaves a prompt without answering.
var ErrAborted = errors.New("prompt aborted")

// ErrNoServers is returned when the account owns no server to sync to.
var ErrNoServers = errors.New("no servers found for this account")

// Prompter reads answers line by line from its input.
type Prompter struct {
	in          io.Reader
	reader      *bufio.Reader
	out         io.Writer
	printer     *console.Printer
	interactive bool
}

// NewPrompter creates a prompter. Menus use an arrow-key picker when in
// and out are both terminals.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:          in,
		reader:      bufio.NewReader(in),
		out:         out,
		printer:     console.NewPrinter(out),
		interactive: isTerminal(in) && isTerminal(out),
	}
}

func isTerminal(v interface{}) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Printer returns the printer used for prompt feedback.
func (p *Prompter) Printer() *console.Printer {
	return p.printer
}

// Ask prints question and returns the trimmed answer.
func (p *Prompter) Ask(question string) (string, error) {
	fmt.Fprintf(p.out, "%s ", question)
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// AskSecret reads an answer without echo when the input is a terminal.
func (p *Prompter) AskSecret(question string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.Ask(question)
	}
	fmt.Fprintf(p.out, "%s ", question)
	secret, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}

// RequireInput asks until the answer is non-empty and, when valid is not
// empty, one of valid.
func (p *Prompter) RequireInput(question string, valid []string) (string, error) {
	for {
		answer, err := p.Ask(question)
		if err != nil {
			return "", err
		}
		if answer != "" && (len(valid) == 0 || contains(valid, answer)) {
			return answer, nil
		}
		p.printer.Error("Invalid input!")
	}
}

// Folder asks until the answer names an existing directory.
func (p *Prompter) Folder(question string) (string, error) {
	for {
		answer, err := p.RequireInput(question, nil)
		if err != nil {
			return "", err
		}
		if err := config.ValidateFolder(answer); err != nil {
			p.printer.Error("File not found!")
			continue
		}
		return answer, nil
	}
}

// SelectMode shows the sync modes and returns the chosen one.
func (p *Prompter) SelectMode() (config.Mode, error) {
	labels := make([]string, len(config.Modes))
	for i, m := range config.Modes {
		labels[i] = m.Description()
	}

	idx, err := p.choose("Select sync mode", labels)
	if err != nil {
		return config.ModeManual, err
	}
	return config.Modes[idx], nil
}

// SelectServer returns the server whose subdomain is preferred. Without a
// match the user picks one from servers.
func (p *Prompter) SelectServer(servers []cloud.Server, preferred string) (cloud.Server, error) {
	if len(servers) == 0 {
		return cloud.Server{}, ErrNoServers
	}

	if preferred != "" {
		for _, s := range servers {
			if s.Subdomain == preferred {
				return s, nil
			}
		}
		p.printer.Error("Subdomain not found!")
	}

	labels := make([]string, len(servers))
	for i, s := range servers {
		labels[i] = fmt.Sprintf("%s (%s)", s.Name, s.Subdomain)
	}

	idx, err := p.choose("Select server", labels)
	if err != nil {
		return cloud.Server{}, err
	}
	return servers[idx], nil
}

// choose returns the index of the selected option.
func (p *Prompter) choose(title string, options []string) (int, error) {
	if p.interactive {
		return pick(p.in, p.out, title, options)
	}

	p.printer.Info(title)
	valid := make([]string, len(options))
	for i, opt := range options {
		valid[i] = strconv.Itoa(i)
		p.printer.Plain("(%d) %s", i, opt)
	}

	answer, err := p.RequireInput("Choice:", valid)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(answer)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
