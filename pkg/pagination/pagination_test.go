package pagination

import "testing"

func TestParamsNormalize(t *testing.T) {
	got := Params{Limit: 0, Offset: -5}.Normalize()
	if got.Limit != DefaultLimit || got.Offset != 0 {
		t.Fatalf("unexpected normalized params %+v", got)
	}
	got = Params{Limit: 500, Offset: 20}.Normalize()
	if got.Limit != MaxLimit || got.Offset != 20 {
		t.Fatalf("unexpected normalized params %+v", got)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(0, 100, 1000) != 100 {
		t.Fatal("expected default")
	}
	if Clamp(5000, 100, 1000) != 1000 {
		t.Fatal("expected max")
	}
	if Clamp(42, 100, 1000) != 42 {
		t.Fatal("expected passthrough")
	}
}
