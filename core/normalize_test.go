package core

import (
	"reflect"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Python", "python"},
		{"python ", "python"},
		{"  PYTHON\t", "python"},
		{"Machine   Learning", "machine learning"},
		{"Massachusetts\nInstitute of  Technology", "massachusetts institute of technology"},
		{"", ""},
		{"   ", ""},
		{"C++", "c++"},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDedupeNames(t *testing.T) {
	got := DedupeNames([]string{"Python", "python ", "Go", " ", "GO", "Rust"})
	want := []string{"Python", "Go", "Rust"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("DedupeNames() = %v, want %v", got, want)
	}
}
