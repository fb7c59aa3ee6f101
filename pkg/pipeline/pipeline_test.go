package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"badgeforge/pkg/config"
	"badgeforge/pkg/errors"
	"badgeforge/pkg/roster"
)

func writeCSVs(t *testing.T, entities, participants string) roster.CSVSource {
	t.Helper()
	dir := t.TempDir()
	ep := filepath.Join(dir, "entities.csv")
	pp := filepath.Join(dir, "participants.csv")
	if err := os.WriteFile(ep, []byte(entities), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pp, []byte(participants), 0644); err != nil {
		t.Fatal(err)
	}
	return roster.CSVSource{EntitiesPath: ep, ParticipantsPath: pp}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Output.Directory = t.TempDir()
	return cfg
}

func findStream(t *testing.T, res *Result, name string) Stream {
	t.Helper()
	for _, s := range res.Streams {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("stream %q missing from result", name)
	return Stream{}
}

func TestExecuteEndToEnd(t *testing.T) {
	// One delegation with three participants: the delegation stream gets
	// one single-page PDF, the private stream is skipped entirely.
	source := writeCSVs(t,
		"entity_id,entity_type,team_name,institution_name\nE1,Delegation,Alpha,\n",
		"entity_id,participant_id,name\nE1,P1,Alice\nE1,P2,Bob\nE1,P3,Carol\n")
	cfg := testConfig(t)

	res, err := NewRunner(nil, nil).Execute(context.Background(), Options{Source: source, Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	if res.RunID == "" {
		t.Error("RunID should be set")
	}

	delegations := findStream(t, res, StreamDelegations)
	if delegations.Skipped {
		t.Fatal("delegation stream should not be skipped")
	}
	if delegations.Entities != 1 || delegations.Participants != 3 {
		t.Errorf("delegations summary = %+v, want 1 entity / 3 participants", delegations)
	}
	if delegations.Pages != 1 {
		t.Errorf("Pages = %d, want 1 (3 badges fit one A4 page)", delegations.Pages)
	}
	info, err := os.Stat(delegations.Path)
	if err != nil {
		t.Fatalf("delegations PDF missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("delegations PDF is empty")
	}

	private := findStream(t, res, StreamPrivateDelegates)
	if !private.Skipped {
		t.Error("private stream should be skipped with no private delegates")
	}
	if _, err := os.Stat(private.Path); !os.IsNotExist(err) {
		t.Error("skipped stream must not produce a file")
	}
}

func TestExecuteBothStreams(t *testing.T) {
	source := writeCSVs(t,
		"entity_id,entity_type,team_name\n"+
			"E1,Delegation,Alpha\n"+
			"E2,Private Delegate,\n",
		"entity_id,participant_id,name\n"+
			"E1,P1,Alice\n"+
			"E2,P2,Bob\n")
	cfg := testConfig(t)

	res, err := NewRunner(nil, nil).Execute(context.Background(), Options{Source: source, Config: cfg})
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{StreamPrivateDelegates, StreamDelegations} {
		s := findStream(t, res, name)
		if s.Skipped {
			t.Errorf("stream %s skipped unexpectedly", name)
			continue
		}
		if _, err := os.Stat(s.Path); err != nil {
			t.Errorf("stream %s output missing: %v", name, err)
		}
		if s.Participants != 1 || s.Pages != 1 {
			t.Errorf("stream %s summary = %+v", name, s)
		}
	}
}

func TestExecuteIdempotentSummaries(t *testing.T) {
	source := writeCSVs(t,
		"entity_id,entity_type,team_name\nE1,Delegation,Alpha\nE2,Delegation,Beta\n",
		"entity_id,participant_id,name\nE1,P1,Alice\nE2,P2,Bob\nE1,P3,Carol\n")

	runner := NewRunner(nil, nil)
	cfg := testConfig(t)

	first, err := runner.Execute(context.Background(), Options{Source: source, Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	second, err := runner.Execute(context.Background(), Options{Source: source, Config: cfg})
	if err != nil {
		t.Fatal(err)
	}

	for i := range first.Streams {
		a, b := first.Streams[i], second.Streams[i]
		if a.Pages != b.Pages || a.Participants != b.Participants || a.Entities != b.Entities {
			t.Errorf("run summaries differ: %+v vs %+v", a, b)
		}
	}
}

func TestExecuteDegenerateGeometry(t *testing.T) {
	source := writeCSVs(t,
		"entity_id,entity_type,team_name\nE1,Delegation,Alpha\n",
		"entity_id,participant_id,name\nE1,P1,Alice\nE1,P2,Bob\n")

	cfg := testConfig(t)
	cfg.Badge.QRSize = 250 // wider than the usable page area

	res, err := NewRunner(nil, nil).Execute(context.Background(), Options{Source: source, Config: cfg})
	if err != nil {
		t.Fatal(err)
	}

	delegations := findStream(t, res, StreamDelegations)
	if delegations.Pages != 2 {
		t.Errorf("Pages = %d, want 2 (one empty page per participant)", delegations.Pages)
	}
}

func TestExecuteFatalInputErrors(t *testing.T) {
	t.Run("missing entities file", func(t *testing.T) {
		source := roster.CSVSource{
			EntitiesPath:     "/nonexistent/entities.csv",
			ParticipantsPath: "/nonexistent/participants.csv",
		}
		_, err := NewRunner(nil, nil).Execute(context.Background(), Options{Source: source, Config: testConfig(t)})
		if !errors.Is(err, errors.ErrCodeIO) {
			t.Errorf("err = %v, want IO_ERROR", err)
		}
	})

	t.Run("missing key column aborts before rendering", func(t *testing.T) {
		source := writeCSVs(t,
			"entity_id,entity_type\nE1,Delegation\n",
			"participant_id,name\nP1,Alice\n") // no entity_id column
		cfg := testConfig(t)

		_, err := NewRunner(nil, nil).Execute(context.Background(), Options{Source: source, Config: cfg})
		if !errors.Is(err, errors.ErrCodeMissingKey) {
			t.Errorf("err = %v, want MISSING_KEY", err)
		}
		// No partial output.
		entries, _ := os.ReadDir(cfg.Output.Directory)
		if len(entries) != 0 {
			t.Errorf("output directory not empty after fatal error: %v", entries)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Page.Width = -1
		_, err := NewRunner(nil, nil).Execute(context.Background(), Options{
			Source: roster.CSVSource{}, Config: cfg,
		})
		if !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("err = %v, want INVALID_CONFIG", err)
		}
	})
}
