package auth

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

var idkAssignment = regexp.MustCompile(`window\._IDK\s=\s((?:\n|.)*?)$`)

// TemplateModel carries the rotating hmac and relay state the identity
// provider embeds in every login page.
type TemplateModel struct {
	Hmac       string `yaml:"hmac"`
	RelayState string `yaml:"relayState"`
}

// CSRFState is the anti-forgery state scraped from a login page. It has to
// be echoed back with the next form submission and is rotated on every step.
type CSRFState struct {
	CSRF          string        `yaml:"csrf_token"`
	TemplateModel TemplateModel `yaml:"templateModel"`
}

// extractCSRF scans the page's script tags for the window._IDK assignment
// and decodes the assigned object. The provider emits it as a javascript
// object literal, which is not valid JSON (unquoted keys, single quotes,
// trailing commas) but happens to be valid YAML.
func extractCSRF(page string) (*CSRFState, error) {
	tokenizer := html.NewTokenizer(strings.NewReader(page))
	inScript := false

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return nil, ErrNoCSRFState
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			inScript = string(name) == "script"
		case html.EndTagToken:
			inScript = false
		case html.TextToken:
			if !inScript {
				continue
			}
			match := idkAssignment.FindSubmatch(tokenizer.Text())
			if match == nil {
				continue
			}

			state := &CSRFState{}
			if err := yaml.Unmarshal(match[1], state); err != nil {
				return nil, fmt.Errorf("decode window._IDK: %w", err)
			}
			return state, nil
		}
	}
}
