package cli

import (
	"io"
	"os"
	"strings"
	"testing"

	"badgeforge/pkg/pipeline"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestPrintStreamRendered(t *testing.T) {
	out := captureStdout(t, func() {
		printStream(pipeline.Stream{
			Name:         pipeline.StreamDelegations,
			Path:         "out/badges_delegations.pdf",
			Entities:     2,
			Participants: 5,
			Pages:        1,
		})
	})

	for _, want := range []string{"delegations", "2 entities", "5 participants", "1 pages", "out/badges_delegations.pdf"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestPrintStreamSkippedWarns(t *testing.T) {
	out := captureStdout(t, func() {
		printStream(pipeline.Stream{
			Name:    pipeline.StreamPrivateDelegates,
			Path:    "out/badges_private_delegates.pdf",
			Skipped: true,
		})
	})

	if !strings.Contains(out, "no participants, skipped") {
		t.Errorf("output %q missing skip notice", out)
	}
	if !strings.Contains(out, iconWarning) {
		t.Errorf("output %q should carry the warning icon", out)
	}
	if strings.Contains(out, "out/badges_private_delegates.pdf") {
		t.Errorf("output %q should not list a file for a skipped stream", out)
	}
}
