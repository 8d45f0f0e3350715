package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"photo-catalog/catalog"
)

// prompter reads answers line by line. Passwords are masked when tty is a terminal.
type prompter struct {
	sc  *bufio.Scanner
	out io.Writer
	tty *os.File
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{sc: bufio.NewScanner(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.tty = f
	}
	return p
}

// ask prints label and returns the trimmed answer. ok is false at end of input.
func (p *prompter) ask(label string) (string, bool) {
	fmt.Fprint(p.out, label)
	if !p.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.sc.Text()), true
}

// readPassword reads a password with masking
func (p *prompter) readPassword(label string) (string, error) {
	if p.tty == nil {
		answer, ok := p.ask(label)
		if !ok {
			return "", io.ErrUnexpectedEOF
		}
		return answer, nil
	}
	fmt.Fprint(p.out, label)
	bytePassword, err := term.ReadPassword(int(p.tty.Fd()))
	if err != nil {
		return "", err
	}
	fmt.Fprintln(p.out) // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

// confirm asks a yes/no question; anything but y/yes is no.
func (p *prompter) confirm(label string) bool {
	answer, ok := p.ask(label + " [y/N]: ")
	if !ok {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

// needsPassword reports whether logging in as name will ask for a password.
func needsPassword(cat *catalog.Catalog, name string) bool {
	name = strings.TrimSpace(name)
	var (
		u  *catalog.User
		ok bool
	)
	if strings.EqualFold(name, catalog.AdminUsername) {
		u, ok = cat.Administrator()
	} else {
		u, ok = cat.User(name)
	}
	return ok && u.HasPassword()
}

// truncateString shortens s to maxLen runes, marking the cut with "...".
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func formatDate(t time.Time, ok bool, loc *time.Location) string {
	if !ok {
		return "-"
	}
	return t.In(loc).Format(catalog.DateLayout)
}

func tagList(p *catalog.Photo) string {
	if len(p.Tags) == 0 {
		return ""
	}
	parts := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
