package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/shelf/internal/directory"
	"github.com/MrSnakeDoc/shelf/internal/domain"
)

func TestPrintView(t *testing.T) {
	view := directory.View{
		Items: []domain.ResourceItem{
			{Name: "Go", URL: "https://go.dev", Category: "learning", Tags: []string{"go", "docs"}, ClickCount: 3, IsPinned: true},
			{Name: "Figma", URL: "https://figma.com", Category: "design"},
		},
		Total: 5,
	}

	var buf bytes.Buffer
	if err := printView(&buf, view); err != nil {
		t.Fatalf("printView() error = %v", err)
	}
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if !strings.HasPrefix(lines[0], "PIN") {
		t.Errorf("missing header, got %q", lines[0])
	}
	for _, want := range []string{"📌", "https://go.dev", "go,docs", "Figma", "2 of 5 resources"} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}
