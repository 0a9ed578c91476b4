package cmd

import (
	"fmt"
	"strings"
)

// Redirect holds redirect info from the command line.
type Redirect struct {
	Append bool   // >> vs >
	Path   string // target path
}

// Tokenize splits a command line into tokens, handling quotes, backslash
// escapes and a single > or >> redirect.
func Tokenize(line string) ([]string, *Redirect, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil, nil
	}

	var (
		tokens   []string
		current  strings.Builder
		redirect *Redirect
		quote    byte
		escaped  bool
	)
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for i := 0; i < len(line); i++ {
		ch := line[i]

		switch {
		case escaped:
			current.WriteByte(ch)
			escaped = false
		case ch == '\\' && quote != '\'':
			escaped = true
		case quote != 0:
			if ch == quote {
				quote = 0
			} else {
				current.WriteByte(ch)
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == '>':
			if redirect != nil {
				return nil, nil, fmt.Errorf("syntax error: multiple redirects")
			}
			flush()
			redirect = &Redirect{}
			if i+1 < len(line) && line[i+1] == '>' {
				redirect.Append = true
				i++
			}
			target, next := readWord(line, i+1)
			if target == "" {
				return nil, nil, fmt.Errorf("syntax error: redirect without target")
			}
			redirect.Path = target
			i = next - 1
		case ch == ' ' || ch == '\t':
			flush()
		default:
			current.WriteByte(ch)
		}
	}

	if quote != 0 {
		return nil, nil, fmt.Errorf("syntax error: unterminated quote")
	}
	flush()

	return tokens, redirect, nil
}

// readWord reads one possibly quoted word starting at i, skipping leading
// blanks. It returns the word and the index just past it.
func readWord(line string, i int) (string, int) {
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	var b strings.Builder
	var quote byte
	for ; i < len(line); i++ {
		ch := line[i]
		switch {
		case quote != 0 && ch == quote:
			quote = 0
		case quote != 0:
			b.WriteByte(ch)
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == ' ' || ch == '\t':
			return b.String(), i
		default:
			b.WriteByte(ch)
		}
	}
	return b.String(), i
}
