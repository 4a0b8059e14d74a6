package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/vetraconnect/vetra/pkg/anonymize"
	"github.com/vetraconnect/vetra/pkg/rest"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// printResult renders one API result to stdout in the selected format.
// name identifies the endpoint so --anonymize can pick the right scrubber.
func (a *app) printResult(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if a.anonymize {
		if raw, err = anonymize.Payload(name, raw); err != nil {
			return err
		}
	}

	switch a.format {
	case formatJSON:
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("format result: %w", err)
		}
		fmt.Fprintln(a.out, colorize(buf.String()))
	default:
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return fmt.Errorf("format result: %w", err)
		}
		out, err := yaml.Marshal(decoded)
		if err != nil {
			return fmt.Errorf("format result: %w", err)
		}
		fmt.Fprint(a.out, colorize(string(out)))
	}
	return nil
}

func (a *app) printOK(msg string) {
	fmt.Fprintln(a.out, okStyle.Render("✓ "+msg))
}

// printError renders an error to stderr, expanding API status errors into
// their parts.
func (a *app) printError(err error) {
	var statusErr *rest.StatusError
	if errors.As(err, &statusErr) {
		fmt.Fprintln(a.errOut, errorStyle.Render("✗ request failed"))
		fmt.Fprintln(a.errOut, "  "+dimStyle.Render("status:")+" "+strconv.Itoa(statusErr.StatusCode))
		fmt.Fprintln(a.errOut, "  "+dimStyle.Render("url:")+"    "+statusErr.URL)
		if body := strings.TrimSpace(string(statusErr.Body)); body != "" {
			fmt.Fprintln(a.errOut, "  "+dimStyle.Render("body:")+"   "+body)
		}
		return
	}
	fmt.Fprintln(a.errOut, errorStyle.Render("✗ "+err.Error()))
}

// keyPattern matches a leading "key:" on one line of YAML or JSON output.
var keyPattern = regexp.MustCompile(`^(\s*(?:- )?)("?[A-Za-z0-9_.-]+"?):( |$)`)

// colorize highlights map keys. Styles degrade to plain text when stdout is
// not a terminal.
func colorize(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		m := keyPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		tail := line[len(m[0]):]
		lines[i] = m[1] + keyStyle.Render(m[2]) + ":" + m[3] + tail
	}
	return strings.Join(lines, "\n")
}
