package util

import (
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	got, err := SanitizeFileName("  report.pdf ")
	if err != nil || got != "report.pdf" {
		t.Fatalf("expected trimmed name, got %q, %v", got, err)
	}

	got, err = SanitizeFileName("a/b\\c.txt")
	if err != nil || got != "a_b_c.txt" {
		t.Fatalf("expected separators replaced, got %q, %v", got, err)
	}

	got, err = SanitizeFileName("we\"ird\x00name.png")
	if err != nil || got != "weirdname.png" {
		t.Fatalf("expected quotes and control chars stripped, got %q, %v", got, err)
	}

	if _, err := SanitizeFileName("../../etc/passwd"); err == nil {
		t.Fatalf("expected traversal rejection")
	}
	if _, err := SanitizeFileName("   "); err == nil {
		t.Fatalf("expected empty name rejection")
	}
}

func TestSanitizeFileNameCapsLength(t *testing.T) {
	long := strings.Repeat("a", 300) + ".jpeg"
	got, err := SanitizeFileName(long)
	if err != nil {
		t.Fatalf("SanitizeFileName: %v", err)
	}
	if len(got) != 255 {
		t.Fatalf("len = %d, want 255", len(got))
	}
	if !strings.HasSuffix(got, ".jpeg") {
		t.Fatalf("extension must survive truncation, got %q", got[len(got)-10:])
	}
}
