package version

import (
	"strings"
	"testing"
)

func TestBuildIDFor(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		expected  int
		wantError bool
	}{
		{name: "epoch date", date: "2026-01-01", expected: 0},
		{name: "next day after epoch", date: "2026-01-02", expected: 1},
		{name: "one year later", date: "2027-01-01", expected: 365},
		{name: "leap year included", date: "2029-01-01", expected: 1096},
		{name: "invalid format", date: "invalid", wantError: true},
		{name: "empty date", date: "", wantError: true},
		{name: "before epoch", date: "2025-12-31", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildIDFor(tt.date)

			if tt.wantError {
				if err == nil {
					t.Fatalf("expected error, got nil (id=%d)", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("buildIDFor(%q) = %d, want %d", tt.date, got, tt.expected)
			}
		})
	}
}

func TestInfo_LdflagsWin(t *testing.T) {
	oldDate, oldCommit := BuildDate, BuildCommit
	defer func() { BuildDate, BuildCommit = oldDate, oldCommit }()

	BuildDate = "2026-02-01"
	BuildCommit = "abc123"

	info := Info()
	if !info.Calculated || info.BuildID != 31 {
		t.Fatalf("Info() = %+v, want build 31", info)
	}
	if info.Commit != "abc123" {
		t.Errorf("Commit = %q, want ldflags value", info.Commit)
	}
	if s := String(); !strings.Contains(s, "build 31 (2026-02-01)") || !strings.Contains(s, "commit abc123") {
		t.Errorf("String() = %q", s)
	}
}
