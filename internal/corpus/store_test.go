package corpus

import (
	"context"
	"testing"
	"time"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertPostIdempotent(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	p := Post{
		Source: "cat_posts.csv", SourceID: "p1", Kind: "cat",
		Title: "Meet Luna", Body: "Sweet cat needs a home",
		Score: 10, NumComments: 4, Engagement: EngagementScore(10, 4),
	}
	if err := db.UpsertPost(ctx, p); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertPost(ctx, p); err != nil {
		t.Fatal(err)
	}
	n, err := db.CountPosts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}

	got, err := db.LoadPosts(ctx, "cat", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Engagement != 12 || got[0].Title != "Meet Luna" {
		t.Fatalf("loaded = %+v", got)
	}
}

func TestUpsertResetsLabelAndFeatures(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	p := Post{Source: "s", SourceID: "1", Kind: "dog", Body: "good boy", Score: 3, NumComments: 0, Engagement: 3}
	if err := db.UpsertPost(ctx, p); err != nil {
		t.Fatal(err)
	}
	posts, err := db.LoadPosts(ctx, "", false)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.UpdateFeatures(ctx, posts[0].ID, []float64{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Relabel(ctx, "dog", 0.75, 0.5); err != nil {
		t.Fatal(err)
	}

	p.Body = "good boy, edited"
	if err := db.UpsertPost(ctx, p); err != nil {
		t.Fatal(err)
	}
	posts, err = db.LoadPosts(ctx, "", false)
	if err != nil {
		t.Fatal(err)
	}
	if posts[0].Label != "" || posts[0].Features != nil {
		t.Fatalf("re-ingest must reset label and features: %+v", posts[0])
	}
}

func TestFeaturesRoundtrip(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	p := Post{Source: "s", SourceID: "1", Kind: "cat", Body: "text", Score: 1, NumComments: 0, Engagement: 1}
	if err := db.UpsertPost(ctx, p); err != nil {
		t.Fatal(err)
	}
	posts, _ := db.LoadPosts(ctx, "cat", false)
	want := []float64{0.25, -1, 42, 0, 1e9}
	if err := db.UpdateFeatures(ctx, posts[0].ID, want); err != nil {
		t.Fatal(err)
	}
	posts, _ = db.LoadPosts(ctx, "cat", false)
	got := posts[0].Features
	if len(got) != len(want) {
		t.Fatalf("features = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("features[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if err := db.UpdateFeatures(ctx, 9999, want); err == nil {
		t.Fatal("expected error for unknown post id")
	}
}

func TestCursorsAndActions(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	if v, err := db.LoadCursor(ctx, "csv:cat_posts.csv"); err != nil || v != "" {
		t.Fatalf("missing cursor: %v %q", err, v)
	}
	if err := db.SaveCursor(ctx, "csv:cat_posts.csv", "mtime:123"); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveCursor(ctx, "csv:cat_posts.csv", "mtime:456"); err != nil {
		t.Fatal(err)
	}
	v, err := db.LoadCursor(ctx, "csv:cat_posts.csv")
	if err != nil || v != "mtime:456" {
		t.Fatalf("cursor mismatch: %v %q", err, v)
	}

	now := time.Now().UTC()
	if err := db.PutAction(ctx, now, "generation"); err != nil {
		t.Fatal(err)
	}
	n, err := db.CountActionsWithin(ctx, now.Add(-time.Hour), now.Add(time.Hour), "generation")
	if err != nil || n != 1 {
		t.Fatalf("action count mismatch: %v %d", err, n)
	}
	n, err = db.CountActionsWithin(ctx, now.Add(-time.Hour), now.Add(time.Hour), "ingest")
	if err != nil || n != 0 {
		t.Fatalf("unrelated kind counted: %v %d", err, n)
	}
}

func TestSnapshots(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	if _, err := db.LoadLatestSnapshot(ctx, "divergence"); err == nil {
		t.Fatal("expected error with no snapshots")
	}
	t0 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := db.PutSnapshot(ctx, t0, "divergence", map[string]any{"v": 1}); err != nil {
		t.Fatal(err)
	}
	if err := db.PutSnapshot(ctx, t0.Add(time.Hour), "divergence", map[string]any{"v": 2}); err != nil {
		t.Fatal(err)
	}
	got, err := db.LoadLatestSnapshot(ctx, "divergence")
	if err != nil {
		t.Fatal(err)
	}
	if got.Payload != `{"v":2}` || !got.TakenAt.Equal(t0.Add(time.Hour)) {
		t.Fatalf("snapshot = %+v", got)
	}
}

func TestCuts(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()

	if _, _, err := db.LoadCuts(ctx, "cat"); err == nil {
		t.Fatal("expected error before save")
	}
	if err := db.saveCuts(ctx, "cat", 6.25, 4.5); err != nil {
		t.Fatal(err)
	}
	high, low, err := db.LoadCuts(ctx, "cat")
	if err != nil || high != 6.25 || low != 4.5 {
		t.Fatalf("cuts = %v %v %v", high, low, err)
	}

	// Relabeling upserts new cuts for the same kind.
	if err := db.saveCuts(ctx, "cat", 7.0, 5.0); err != nil {
		t.Fatal(err)
	}
	high, low, err = db.LoadCuts(ctx, "cat")
	if err != nil || high != 7.0 || low != 5.0 {
		t.Fatalf("cuts after upsert = %v %v %v", high, low, err)
	}
}
