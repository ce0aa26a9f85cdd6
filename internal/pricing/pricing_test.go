package pricing

import (
	"errors"
	"testing"
)

func TestTotalPrice_NegativeInputs(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		quantity int
	}{
		{"negative price", -0.01, 1},
		{"negative quantity", 10.0, -1},
		{"both negative", -5.0, -5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := TotalPrice(tc.price, tc.quantity, 0)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrNegativeAmount) {
				t.Errorf("error = %v, want ErrNegativeAmount", err)
			}
		})
	}
}

func TestTotalPrice_DiscountOutOfRange(t *testing.T) {
	tests := []struct {
		name     string
		discount float64
	}{
		{"below zero", -0.5},
		{"just above hundred", 100.5},
		{"far above hundred", 150},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := TotalPrice(10.0, 1, tc.discount)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrDiscountRange) {
				t.Errorf("error = %v, want ErrDiscountRange", err)
			}
		})
	}
}

func TestTotalPrice_Computation(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		quantity int
		discount float64
		want     float64
	}{
		{"no discount", 100.0, 2, 0, 200.0},
		{"ten percent off", 100.0, 2, 10, 180.0},
		{"full discount", 50.0, 4, 100, 0.0},
		{"zero quantity", 99.99, 0, 25, 0.0},
		{"zero price", 0.0, 10, 50, 0.0},
		{"single unit", 42.5, 1, 0, 42.5},
		{"half off", 10.0, 3, 50, 15.0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := TotalPrice(tc.price, tc.quantity, tc.discount)
			if err != nil {
				t.Fatalf("TotalPrice() err = %v", err)
			}
			if got != tc.want {
				t.Errorf("total = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTotalPrice_DiscountBoundaries(t *testing.T) {
	// Exactly 0 and exactly 100 are both valid.
	got, err := TotalPrice(20.0, 5, 0)
	if err != nil {
		t.Fatalf("discount 0: err = %v", err)
	}
	if got != 100.0 {
		t.Errorf("discount 0: total = %v, want 100", got)
	}
	got, err = TotalPrice(20.0, 5, 100)
	if err != nil {
		t.Fatalf("discount 100: err = %v", err)
	}
	if got != 0.0 {
		t.Errorf("discount 100: total = %v, want 0", got)
	}
}

func TestTotalPrice_DiscountNeverIncreasesTotal(t *testing.T) {
	prev, err := TotalPrice(80.0, 3, 0)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	for d := 5.0; d <= 100; d += 5 {
		got, err := TotalPrice(80.0, 3, d)
		if err != nil {
			t.Fatalf("discount %v: err = %v", d, err)
		}
		if got > prev {
			t.Errorf("discount %v: total %v exceeds total at lower discount %v", d, got, prev)
		}
		prev = got
	}
}
