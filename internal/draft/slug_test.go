package draft

import "testing"

func TestSlug(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"dated post", "2026-02-09-00-00-00-my-first-post.md", "my-first-post"},
		{"no date prefix", "random-notes.md", "random-notes"},
		{"full path", "/home/user/blog/_drafts/2025-12-31-23-59-59-year-end.md", "year-end"},
		{"markdown long extension", "2026-01-01-08-30-00-hello.markdown", "hello"},
		{"partial date prefix is kept", "2026-02-09-notes.md", "2026-02-09-notes"},
		{"no extension", "scratch", "scratch"},
		{"date prefix only dots in name", "2026-02-09-00-00-00-v1.2-notes.md", "v1.2-notes"},
		{"uppercase extension", "2026-02-09-00-00-00-shout.MD", "shout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slug(tt.path); got != tt.expected {
				t.Errorf("Slug(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestIsMarkdown(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"post.md", true},
		{"post.markdown", true},
		{"post.MD", true},
		{"main.go", false},
		{"notes.txt", false},
		{"README", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsMarkdown(tt.path); got != tt.expected {
				t.Errorf("IsMarkdown(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestEventKindString(t *testing.T) {
	tests := []struct {
		kind     EventKind
		expected string
	}{
		{EventOpen, "open"},
		{EventChange, "change"},
		{EventSave, "save"},
		{EventKind(9), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("EventKind(%d).String() = %q, want %q", tt.kind, got, tt.expected)
		}
	}
}
