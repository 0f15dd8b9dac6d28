package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jacl-coder/InkBrawl-Server/internal/models"
)

type fakeRecorder struct {
	err     error
	results []models.MatchResult
}

func (f *fakeRecorder) Record(_ context.Context, r models.MatchResult) error {
	f.results = append(f.results, r)
	return f.err
}

func sampleResult() models.MatchResult {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return models.MatchResult{
		ID:        "m1",
		RoomCode:  "ABCD",
		WinnerID:  "p1",
		Reason:    models.ReasonKnockout,
		StartTime: start,
		EndTime:   start.Add(30 * time.Second),
		Ticks:     1800,
		Participants: []models.ParticipantResult{
			{ParticipantID: "p1", HP: 40, MaxHP: 100, Winner: true},
			{ParticipantID: "p2", HP: 0, MaxHP: 100},
		},
	}
}

func TestMultiRecorderWritesAll(t *testing.T) {
	boom := errors.New("boom")
	a := &fakeRecorder{}
	b := &fakeRecorder{err: boom}
	c := &fakeRecorder{}

	err := MultiRecorder{a, nil, b, c}.Record(context.Background(), sampleResult())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	for i, f := range []*fakeRecorder{a, b, c} {
		if len(f.results) != 1 {
			t.Errorf("recorder %d got %d results", i, len(f.results))
		}
	}

	if err := (MultiRecorder{a}).Record(context.Background(), sampleResult()); err != nil {
		t.Fatalf("err = %v", err)
	}
}

func TestNopRecorder(t *testing.T) {
	var n NopRecorder
	if err := n.Record(context.Background(), sampleResult()); err != nil {
		t.Fatal(err)
	}
	got, err := n.Recent(context.Background(), 10)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("Recent = %v, %v", got, err)
	}
}

func TestPostgresRecorderWithoutDB(t *testing.T) {
	err := NewPostgresRecorder(nil).Record(context.Background(), sampleResult())
	if !errors.Is(err, ErrNoDatabase) {
		t.Fatalf("err = %v", err)
	}
}

func TestClampLimit(t *testing.T) {
	cases := []struct{ n, limit, want int }{
		{0, 50, 50},
		{-1, 50, 50},
		{10, 50, 10},
		{80, 50, 50},
	}
	for _, c := range cases {
		if got := clampLimit(c.n, c.limit); got != c.want {
			t.Errorf("clampLimit(%d, %d) = %d, want %d", c.n, c.limit, got, c.want)
		}
	}
	if r := NewRedisRecorder(nil, 0); r.limit != defaultRecentLimit {
		t.Errorf("default limit = %d", r.limit)
	}
}

func TestDecodeResultsSkipsGarbage(t *testing.T) {
	data, err := json.Marshal(sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	got := decodeResults([]string{string(data), "{not json"})
	if len(got) != 1 {
		t.Fatalf("got %d results", len(got))
	}
	if got[0].ID != "m1" || got[0].Duration() != 30*time.Second || len(got[0].Participants) != 2 {
		t.Fatalf("decoded = %+v", got[0])
	}
}
