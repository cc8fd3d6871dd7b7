package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("zero limit should default, got %d", got)
	}
	if got := NormalizeLimit(-5); got != DefaultLimit {
		t.Fatalf("negative limit should default, got %d", got)
	}
	if got := NormalizeLimit(MaxLimit + 1); got != MaxLimit {
		t.Fatalf("limit should cap at max, got %d", got)
	}
	if got := NormalizeLimit(10); got != 10 {
		t.Fatalf("valid limit should pass through, got %d", got)
	}
}

func TestNormalize(t *testing.T) {
	params := Normalize(Params{Limit: -1, Offset: -10})
	if params.Limit != DefaultLimit || params.Offset != 0 {
		t.Fatalf("unexpected normalized params %+v", params)
	}
}

func TestHasMore(t *testing.T) {
	if !HasMore(100, 25, 0) {
		t.Fatal("expected more pages at the start")
	}
	if HasMore(100, 25, 75) {
		t.Fatal("expected no more pages at the end")
	}
	if HasMore(10, 25, 0) {
		t.Fatal("single short page should have no more")
	}
}
