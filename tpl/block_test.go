package tpl

import (
	"errors"
	"slices"
	"strconv"
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Span
	}{
		{"empty", "", nil},
		{"text", "plain text", nil},
		{"single", "{:;a:}", []Span{{0, 6}}},
		{"unprintable", "{:;:}", []Span{{0, 5}}},
		{"with text", "a {:;x:} b {:* c *:} d", []Span{{2, 8}, {11, 20}}},
		{"nested", "{:code; {:;a:} :}", []Span{{0, 17}}},
		{"nested comment", "{:* {:* x *:} *:}x", []Span{{0, 17}}},
		{"comment in block", "{:code; {:* c *:} :}", []Span{{0, 20}}},
		{"unclosed open", "{:;a", nil},
		{"colons", "{:replace; :a:b: >> x :}", []Span{{0, 24}}},
		{"adjacent", "{:;a:}{:;b:}", []Span{{0, 6}, {6, 12}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.src)
			if err != nil {
				t.Fatalf("Extract(%q) error: %v", tt.src, err)
			}

			if !slices.Equal(got, tt.want) {
				t.Errorf("Extract(%q) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestExtract_Unmatched(t *testing.T) {
	tests := []struct {
		src    string
		offset int
	}{
		{"abc :} x", 4},
		{"{:;a:} :}", 7},
		{"<div>{:;x:} :}</div>", 12},
		{"{:}", 1},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Extract(tt.src)

			var ue *UnmatchedError
			if !errors.As(err, &ue) {
				t.Fatalf("Extract(%q) error = %v, want *UnmatchedError", tt.src, err)
			}

			if ue.Offset != tt.offset {
				t.Errorf("offset = %d, want %d", ue.Offset, tt.offset)
			}

			want := "Unmatched block at position " + strconv.Itoa(tt.offset)
			if ue.Error() != want {
				t.Errorf("Error() = %q, want %q", ue.Error(), want)
			}
		})
	}
}

func TestSpan(t *testing.T) {
	src := "a {:* c *:} {:;x:}"

	spans, err := Extract(src)
	if err != nil {
		t.Fatal(err)
	}

	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}

	if !spans[0].IsComment(src) || spans[1].IsComment(src) {
		t.Error("IsComment mismatch")
	}

	if got := spans[1].In(src); got != "{:;x:}" {
		t.Errorf("In = %q", got)
	}

	if got := spans[1].Len(); got != 6 {
		t.Errorf("Len = %d, want 6", got)
	}
}

func TestCodePosition(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"abc", -1},
		{"a >> b", 2},
		{"{:x; a >> b:} >> c", 14},
		{"{:x; a >> b:}", -1},
		{">>", 0},
	}

	for _, tt := range tests {
		if got := codePosition(tt.src); got != tt.want {
			t.Errorf("codePosition(%q) = %d, want %d", tt.src, got, tt.want)
		}
	}
}

func TestRemoveComments(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"plain", "plain"},
		{"a{:* x *:}b", "ab"},
		{"a{:* {:* x *:} *:}b", "ab"},
		{"a{:* x *:}b{:* y *:}c", "abc"},
		{"a{:;x:}b", "a{:;x:}b"},
		{"a{:* x", "a{:* x"},
		{"a{:* x *:}b{:* y", "ab{:* y"},
	}

	for _, tt := range tests {
		if got := RemoveComments(tt.src); got != tt.want {
			t.Errorf("RemoveComments(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

// FuzzExtract tests the extractor with random inputs: it must not panic, and
// every span it returns must be a well-formed, ordered block.
func FuzzExtract(f *testing.F) {
	f.Add("")
	f.Add("{:;a:}")
	f.Add("a {:;x:} b {:* c *:} d")
	f.Add("{:code; {:;a:} :}")
	f.Add("{:* {:* *:}")
	f.Add(":}{:")
	f.Add("{:}")
	f.Add("{:{:{::}:}")

	f.Fuzz(func(t *testing.T, src string) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("Extract panicked on input %q: %v", src, r)
			}
		}()

		spans, err := Extract(src)
		if err != nil {
			var ue *UnmatchedError
			if !errors.As(err, &ue) {
				t.Fatalf("unexpected error type %T", err)
			}

			if !strings.HasPrefix(src[ue.Offset:], BifClose) {
				t.Errorf("offset %d does not address a closer", ue.Offset)
			}

			return
		}

		prev := 0
		for _, s := range spans {
			if s.Start < prev || s.End > len(src) || s.Start >= s.End {
				t.Fatalf("bad span %v after %d in %q", s, prev, src)
			}

			text := s.In(src)
			if !strings.HasPrefix(text, BifOpen) || !strings.HasSuffix(text, BifClose) {
				t.Errorf("span %v is not a block: %q", s, text)
			}

			prev = s.End
		}

		_ = RemoveComments(src)
		_ = codePosition(src)
	})
}
