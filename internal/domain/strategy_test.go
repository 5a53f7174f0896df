package domain

import "testing"

func TestStrategy_IsValid(t *testing.T) {
	cases := []struct {
		strategy Strategy
		want     bool
	}{
		{StrategySparse, true},
		{StrategyDense, true},
		{Strategy(""), false},
		{Strategy("hybrid"), false},
	}
	for _, tc := range cases {
		if got := tc.strategy.IsValid(); got != tc.want {
			t.Errorf("IsValid(%q) = %v, want %v", tc.strategy, got, tc.want)
		}
	}
}
