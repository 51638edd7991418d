// ABOUTME: Inbound message and command invocation types
// ABOUTME: Normalises smart quotes and splits command text into arguments

package chat

import (
	"strings"
	"unicode"
)

// Message is one inbound chat message.
type Message struct {
	ServerID string `json:"server_id"`
	AuthorID string `json:"author_id"`
	Text     string `json:"text"`
	// Admin is set by the transport when the author administers the server.
	Admin bool `json:"admin,omitempty"`
}

// Invocation is a command with its arguments already split.
type Invocation struct {
	ServerID string   `json:"server_id"`
	AuthorID string   `json:"author_id"`
	Admin    bool     `json:"admin,omitempty"`
	Command  string   `json:"command"`
	Args     []string `json:"args,omitempty"`
}

var quoteReplacer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
)

// NormalizeQuotes turns the curly quotes phone keyboards insert into ASCII.
func NormalizeQuotes(s string) string {
	return quoteReplacer.Replace(s)
}

// Tokenize splits s on whitespace. Double quotes group words into one
// argument; an unterminated quote runs to the end of s.
func Tokenize(s string) []string {
	var tokens []string
	var b strings.Builder
	inQuote, inToken := false, false

	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			inToken = true
		case unicode.IsSpace(r) && !inQuote:
			if inToken {
				tokens = append(tokens, b.String())
				b.Reset()
				inToken = false
			}
		default:
			b.WriteRune(r)
			inToken = true
		}
	}
	if inToken {
		tokens = append(tokens, b.String())
	}
	return tokens
}

// ParseCommand splits prefixed text into a command name and arguments.
// ok is false when text does not start with prefix or names no command.
func ParseCommand(text, prefix string) (command string, args []string, ok bool) {
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return "", nil, false
	}
	tokens := Tokenize(strings.TrimPrefix(text, prefix))
	if len(tokens) == 0 {
		return "", nil, false
	}
	return strings.ToLower(tokens[0]), tokens[1:], true
}
