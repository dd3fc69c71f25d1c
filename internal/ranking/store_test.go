package ranking

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client), mr
}

func TestSetExamScoreIsLastWriteWins(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.SetExamScore(ctx, 1, 10, 80); err != nil {
		t.Fatalf("set score: %v", err)
	}
	if err := store.SetExamScore(ctx, 1, 10, 60); err != nil {
		t.Fatalf("set score: %v", err)
	}

	top, err := store.ExamTopN(ctx, 1, 10)
	if err != nil {
		t.Fatalf("topN: %v", err)
	}
	if len(top) != 1 || top[0].Score != 60 {
		t.Fatalf("re-submission must overwrite, not sum: %+v", top)
	}
}

func TestExamTopNDescendingOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_ = store.SetExamScore(ctx, 1, 10, 50)
	_ = store.SetExamScore(ctx, 1, 11, 90)
	_ = store.SetExamScore(ctx, 1, 12, 70)

	top, err := store.ExamTopN(ctx, 1, 2)
	if err != nil {
		t.Fatalf("topN: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 members, got %d", len(top))
	}
	if top[0].UserID != 11 || top[1].UserID != 12 {
		t.Fatalf("expected descending score order, got %+v", top)
	}
}

func TestMarkProcessedDedup(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.MarkProcessed(ctx, 77)
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if !first {
		t.Fatalf("first mark must return true")
	}
	second, err := store.MarkProcessed(ctx, 77)
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if second {
		t.Fatalf("second mark must return false")
	}

	if err := store.UnmarkProcessed(ctx, 77); err != nil {
		t.Fatalf("unmark: %v", err)
	}
	again, err := store.MarkProcessed(ctx, 77)
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if !again {
		t.Fatalf("mark after unmark must return true")
	}
}

func TestIncrementSubmissionsAndRank(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.IncrementSubmissions(ctx, 10); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	_ = store.IncrementSubmissions(ctx, 11)

	rank, score, ok, err := store.SubmissionRank(ctx, 10)
	if err != nil || !ok {
		t.Fatalf("rank lookup failed: ok=%v err=%v", ok, err)
	}
	if rank != 1 || score != 3 {
		t.Fatalf("expected rank 1 with 3 submissions, got rank=%d score=%v", rank, score)
	}

	_, _, ok, err = store.SubmissionRank(ctx, 999)
	if err != nil {
		t.Fatalf("rank lookup: %v", err)
	}
	if ok {
		t.Fatalf("unknown member must report ok=false")
	}
}
