package cmd

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		tokens   []string
		redirect *Redirect
		wantErr  bool
	}{
		{"empty", "   ", nil, nil, false},
		{"simple", "ls -l /alice/files", []string{"ls", "-l", "/alice/files"}, nil, false},
		{"double quotes", `cat "My Photos/a.jpg"`, []string{"cat", "My Photos/a.jpg"}, nil, false},
		{"single quotes", `echo 'a "b"'`, []string{"echo", `a "b"`}, nil, false},
		{"escaped space", `cat My\ Photos`, []string{"cat", "My Photos"}, nil, false},
		{"write", "echo hi > a.txt", []string{"echo", "hi"}, &Redirect{Path: "a.txt"}, false},
		{"append", "echo hi >> a.txt", []string{"echo", "hi"}, &Redirect{Append: true, Path: "a.txt"}, false},
		{"no space", "echo hi>a.txt", []string{"echo", "hi"}, &Redirect{Path: "a.txt"}, false},
		{"quoted target", `echo hi > "my notes.txt"`, []string{"echo", "hi"}, &Redirect{Path: "my notes.txt"}, false},
		{"quoted gt", `echo "a > b"`, []string{"echo", "a > b"}, nil, false},
		{"missing target", "echo hi >", nil, nil, true},
		{"two redirects", "echo hi > a > b", nil, nil, true},
		{"unterminated", `echo "hi`, nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, redirect, err := Tokenize(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Tokenize(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(tokens, tt.tokens) {
				t.Errorf("tokens = %q, want %q", tokens, tt.tokens)
			}
			if !reflect.DeepEqual(redirect, tt.redirect) {
				t.Errorf("redirect = %+v, want %+v", redirect, tt.redirect)
			}
		})
	}
}
