package stats

import (
	"bytes"
	"testing"

	"github.com/jun-nagaya/competitive-karuta-trainer/internal/model"
)

func TestGameMetrics(t *testing.T) {
	acc, sec := GameMetrics(8, 2, 40000)
	if acc != 0.8 {
		t.Fatalf("expected accuracy 0.8, got %f", acc)
	}
	if sec != 5.0 {
		t.Fatalf("expected 5s per card, got %f", sec)
	}

	acc, sec = GameMetrics(0, 0, 0)
	if acc != 0 || sec != 0 {
		t.Fatalf("expected zero metrics for empty game")
	}
}

func TestSelectWeakCards(t *testing.T) {
	aggs := []model.CardAggregate{
		{Kami: "あ", DurationSumMs: 2000, DurationCount: 1},
		{Kami: "い", DurationSumMs: 8000, DurationCount: 1},
		{Kami: "う", DurationSumMs: 4000, DurationCount: 2},
	}
	weak := SelectWeakCards(aggs, 2)
	if len(weak) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(weak))
	}
	if weak[0].Kami != "い" || weak[1].Kami != "あ" {
		t.Fatalf("unexpected order: %+v", weak)
	}
}

func TestSelectWeakCardsTieBreakOnMisses(t *testing.T) {
	aggs := []model.CardAggregate{
		{Kami: "あ", Misses: 1},
		{Kami: "い", Misses: 4},
	}
	weak := SelectWeakCards(aggs, 1)
	if weak[0].Kami != "い" {
		t.Fatalf("expected most-missed card first: %+v", weak)
	}
}

func TestMovingAverage(t *testing.T) {
	out := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("index %d: expected %f, got %f", i, want[i], out[i])
		}
	}
}

func TestSparklineFlatSeries(t *testing.T) {
	out := Sparkline([]float64{3, 3, 3})
	if len(out) != 3 {
		t.Fatalf("expected 3 chars, got %q", out)
	}
}

func TestRenderSummary(t *testing.T) {
	games := []model.GameAggregate{
		{GameID: 1, Cards: 10, Score: 10, Miss: 2, DurationMs: 50000},
		{GameID: 2, Cards: 10, Score: 10, Miss: 0, DurationMs: 40000},
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, games); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Games: 2", "Total Misses: 2", "Best Time/Card: 4.00s"} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Fatalf("summary missing %q: %s", want, out)
		}
	}
}

func TestRenderCardTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderCardTable(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("No card stats")) {
		t.Fatalf("expected empty notice, got %s", buf.String())
	}
}
