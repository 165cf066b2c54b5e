package core

import (
	"slices"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Looking for Python and Kubernetes experience.", []string{"looking", "for", "python", "and", "kubernetes", "experience"}},
		{"C++, C# and Node.js", []string{"c++", "c#", "and", "node.js"}},
		{"front-end / back-end...", []string{"front-end", "back-end"}},
		{"  ", []string{}},
	}
	for _, tt := range tests {
		if got := Tokenize(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("Tokenize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSynonym(t *testing.T) {
	if got, ok := Synonym("js"); !ok || got != "javascript" {
		t.Errorf("Synonym(js) = %q, %v", got, ok)
	}
	if _, ok := Synonym("golang"); ok {
		t.Error("Synonym(golang) should not exist")
	}
}
