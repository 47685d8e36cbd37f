package calculator

import (
	"math"
	"testing"
)

func TestEMASeries_SeedsWithFirstValue(t *testing.T) {
	out, err := EMASeries([]float64{10, 10, 10}, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range out {
		if v != 10 {
			t.Errorf("constant input should stay constant, out[%d] = %v", i, v)
		}
	}
}

func TestEMASeries_KnownValues(t *testing.T) {
	// period 3 -> alpha = 0.5
	out, err := EMASeries([]float64{2, 4, 8}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{2, 3, 5.5}
	if len(out) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(out))
	}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-9 {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestEMASeries_OneOutputPerInput(t *testing.T) {
	for _, n := range []int{0, 1, 2, 50} {
		values := make([]float64, n)
		for i := range values {
			values[i] = float64(i)
		}
		out, err := EMASeries(values, 26)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out) != n {
			t.Errorf("len(out) = %d, want %d", len(out), n)
		}
	}
}

func TestEMASeries_InvalidPeriod(t *testing.T) {
	if _, err := EMASeries([]float64{1, 2}, 0); err == nil {
		t.Error("expected error for period 0")
	}
	if _, err := EMASeries([]float64{1, 2}, -5); err == nil {
		t.Error("expected error for negative period")
	}
}
