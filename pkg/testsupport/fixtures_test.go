package testsupport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-sportdata-cache/dataaccess"
	"github.com/goliatone/go-sportdata-cache/dto"
	"github.com/goliatone/go-sportdata-cache/lang"
	"github.com/goliatone/go-sportdata-cache/urn"
)

func TestLoadFixture(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := os.Mkdir("testdata", 0o755); err != nil {
		t.Fatalf("create testdata: %v", err)
	}
	if err := os.WriteFile(FixturePath("raw.txt"), []byte("fixture content"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if got := LoadFixture(t, "raw.txt"); string(got) != "fixture content" {
		t.Errorf("LoadFixture() = %q", got)
	}
}

func TestLoadPayload(t *testing.T) {
	t.Chdir(t.TempDir())
	if err := os.Mkdir("testdata", 0o755); err != nil {
		t.Fatalf("create testdata: %v", err)
	}
	body := `{"ID":"sr:match:1","Name":"A vs B","Competitors":[{"ID":"sr:competitor:2","Qualifier":"home"}]}`
	if err := os.WriteFile(FixturePath("match.json"), []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	m := LoadPayload[dto.Match](t, "match.json")
	if m.PayloadID() != urn.MustParse("sr:match:1") || m.Name != "A vs B" {
		t.Errorf("unexpected event %+v", m.SportEvent)
	}
	if len(m.Competitors) != 1 || m.Competitors[0].Qualifier != "home" {
		t.Errorf("unexpected competitors %+v", m.Competitors)
	}
}

func TestFixturePath(t *testing.T) {
	if got, want := FixturePath("match.json"), filepath.Join("testdata", "match.json"); got != want {
		t.Errorf("FixturePath() = %q, want %q", got, want)
	}
}

func TestFakeSource(t *testing.T) {
	en := lang.MustParse("en")
	id := urn.MustParse("sr:match:1")
	ctx := context.Background()

	src := NewFakeSource()
	src.AddSummary(en, &dto.Match{SportEvent: dto.SportEvent{ID: id}})

	var hooked []string
	src.OnRequest(func(op, _ string) { hooked = append(hooked, op) })

	if _, err := src.Summary(ctx, id, en); err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if _, err := src.Summary(ctx, urn.MustParse("sr:match:2"), en); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := src.CallsFor(dataaccess.OpSummary, id, en); got != 1 {
		t.Errorf("CallsFor() = %d, want 1", got)
	}
	if got := src.Calls(dataaccess.OpSummary); got != 2 {
		t.Errorf("Calls() = %d, want 2", got)
	}
	if len(hooked) != 2 {
		t.Errorf("hook saw %d requests, want 2", len(hooked))
	}

	down := errors.New("down")
	src.Fail(dataaccess.OpSummary, down)
	if _, err := src.Summary(ctx, id, en); !errors.Is(err, down) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	src.Fail(dataaccess.OpSummary, nil)
	if _, err := src.Summary(ctx, id, en); err != nil {
		t.Fatalf("Summary() after clearing failure error = %v", err)
	}

	if s, err := src.DateSchedule(ctx, nil, en); err != nil || s == nil {
		t.Fatalf("DateSchedule() = %v, %v", s, err)
	}

	src.SetDelay(time.Second)
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := src.Summary(cancelled, id, en); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
