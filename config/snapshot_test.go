package config

import (
	"testing"

	"github.com/pingwatch/pingwatch"
)

func TestBuildSnapshot(t *testing.T) {
	doc, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	snap := BuildSnapshot(doc)
	if len(snap) != 2 {
		t.Fatalf("len(snap) = %d, want 2", len(snap))
	}

	// order must follow the document
	if snap[0].Path != "https://api.example.com/health" || snap[1].Path != "https://example.com/ping" {
		t.Errorf("snapshot order does not follow the document: %+v", snap)
	}
	if snap[0].Headers["Authorization"] != "Bearer token" {
		t.Errorf("headers lost in conversion: %v", snap[0].Headers)
	}
	if !pingwatch.IsValid(snap[0]) || !pingwatch.IsValid(snap[1]) {
		t.Error("sample entries should convert to valid PingPaths")
	}
}

func TestBuildSnapshot_DetachesHeaders(t *testing.T) {
	doc, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	snap := BuildSnapshot(doc)
	doc.Paths[0].Headers["Authorization"] = "tampered"

	if snap[0].Headers["Authorization"] != "Bearer token" {
		t.Error("snapshot headers share storage with the document")
	}
}

func TestBuildSnapshot_Empty(t *testing.T) {
	snap := BuildSnapshot(&Document{})
	if len(snap) != 0 {
		t.Errorf("len(snap) = %d, want 0", len(snap))
	}
}
