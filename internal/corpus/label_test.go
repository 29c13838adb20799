package corpus

import (
	"context"
	"fmt"
	"math"
	"testing"
)

func TestEngagementScore(t *testing.T) {
	if got := EngagementScore(10, 4); got != 12 {
		t.Fatalf("EngagementScore(10, 4) = %v, want 12", got)
	}
	if got := EngagementScore(0, 0); got != 0 {
		t.Fatalf("EngagementScore(0, 0) = %v", got)
	}
}

func TestQuantile(t *testing.T) {
	if got := quantile(nil, 0.5); got != 0 {
		t.Fatalf("empty sample = %v", got)
	}
	sorted := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	if got := quantile(sorted, 0); got != 1 {
		t.Fatalf("q0 = %v", got)
	}
	if got := quantile(sorted, 1); got != 8 {
		t.Fatalf("q1 = %v", got)
	}
	if got := quantile(sorted, 0.5); math.Abs(got-4.5) > 1e-9 {
		t.Fatalf("median = %v, want 4.5", got)
	}
	if got := quantile(sorted, 0.75); math.Abs(got-6.25) > 1e-9 {
		t.Fatalf("q75 = %v, want 6.25", got)
	}
}

func TestRelabel(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	for i := 1; i <= 8; i++ {
		p := Post{
			Source: "dog_posts.csv", SourceID: fmt.Sprintf("p%d", i), Kind: "dog",
			Body: "woof", Score: float64(i), NumComments: 0, Engagement: float64(i),
		}
		if err := db.UpsertPost(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := db.Relabel(ctx, "dog", 0.75, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 8 {
		t.Fatalf("total = %d", stats.Total)
	}
	// Engagements 1..8: q75 cut 6.25 keeps 7 and 8 HIGH, median cut 4.5
	// keeps 1..4 LOW, and 5..6 fall in the dropped band.
	if stats.High != 2 || stats.Low != 4 || stats.Dropped != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if math.Abs(stats.HighCut-6.25) > 1e-9 || math.Abs(stats.LowCut-4.5) > 1e-9 {
		t.Fatalf("cuts = %v/%v", stats.HighCut, stats.LowCut)
	}

	labeled, err := db.LoadPosts(ctx, "dog", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(labeled) != 6 {
		t.Fatalf("labeled = %d, want 6", len(labeled))
	}
	for _, p := range labeled {
		switch {
		case p.Engagement >= 6.25 && p.Label != "HIGH":
			t.Fatalf("post %s engagement %v labeled %q", p.SourceID, p.Engagement, p.Label)
		case p.Engagement <= 4.5 && p.Label != "LOW":
			t.Fatalf("post %s engagement %v labeled %q", p.SourceID, p.Engagement, p.Label)
		}
	}

	high, low, err := db.LoadCuts(ctx, "dog")
	if err != nil || math.Abs(high-6.25) > 1e-9 || math.Abs(low-4.5) > 1e-9 {
		t.Fatalf("persisted cuts = %v/%v %v", high, low, err)
	}
}

func TestRelabelEmptyKind(t *testing.T) {
	db := openTest(t)
	stats, err := db.Relabel(context.Background(), "cat", 0.75, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 0 || stats.High != 0 || stats.Low != 0 {
		t.Fatalf("stats on empty corpus = %+v", stats)
	}
}
