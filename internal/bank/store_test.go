package bank_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/artpromedia/aivo-qti/internal/bank"
	"github.com/artpromedia/aivo-qti/internal/qti/model"
	"github.com/artpromedia/aivo-qti/internal/qti/processor"
)

func TestMemoryStoreItems(t *testing.T) {
	ctx := context.Background()
	s := bank.NewInMemoryStore()

	if _, err := s.GetItem(ctx, "nope"); !errors.Is(err, bank.ErrNotFound) {
		t.Errorf("GetItem on empty store = %v, want ErrNotFound", err)
	}
	if err := s.PutItem(ctx, "", &model.AssessmentItem{}); err == nil {
		t.Error("PutItem with empty id should fail")
	}

	item := &model.AssessmentItem{Identifier: "q1", Title: "One"}
	if err := s.PutItem(ctx, "res-1", item); err != nil {
		t.Fatalf("PutItem: %v", err)
	}
	if err := s.PutItem(ctx, "res-0", &model.AssessmentItem{Identifier: "q0"}); err != nil {
		t.Fatalf("PutItem: %v", err)
	}

	got, err := s.GetItem(ctx, "res-1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Identifier != "q1" {
		t.Errorf("Identifier = %q", got.Identifier)
	}

	ids, err := s.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if diff := cmp.Diff([]string{"res-0", "res-1"}, ids); diff != "" {
		t.Errorf("ListItems order mismatch (-want +got):\n%s", diff)
	}

	// put under the same id replaces
	if err := s.PutItem(ctx, "res-1", &model.AssessmentItem{Identifier: "q1b"}); err != nil {
		t.Fatalf("PutItem replace: %v", err)
	}
	got, _ = s.GetItem(ctx, "res-1")
	if got.Identifier != "q1b" {
		t.Errorf("replacement not visible, Identifier = %q", got.Identifier)
	}
}

func TestMemoryStoreResults(t *testing.T) {
	ctx := context.Background()
	s := bank.NewInMemoryStore()

	if _, err := s.GetResult(ctx, "nope"); !errors.Is(err, bank.ErrNotFound) {
		t.Errorf("GetResult on empty store = %v, want ErrNotFound", err)
	}
	if err := s.PutResult(ctx, bank.ResultRecord{}); err == nil {
		t.Error("PutResult with empty id should fail")
	}

	rec := bank.ResultRecord{
		ID:     "r-1",
		ItemID: "res-1",
		Result: processor.Result{IsCorrect: true, TotalScore: 1, MaxScore: 1, NormalizedScore: 1},
	}
	if err := s.PutResult(ctx, rec); err != nil {
		t.Fatalf("PutResult: %v", err)
	}
	got, err := s.GetResult(ctx, "r-1")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if got.ItemID != "res-1" || !got.Result.IsCorrect {
		t.Errorf("record = %+v", got)
	}
	if got.CreatedAt == 0 {
		t.Error("CreatedAt should be stamped when absent")
	}
}
