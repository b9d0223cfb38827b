package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestLevelFor(t *testing.T) {
	cases := []struct {
		env, raw string
		want     zerolog.Level
	}{
		{"production", "", zerolog.InfoLevel},
		{"development", "", zerolog.DebugLevel},
		{"production", "warn", zerolog.WarnLevel},
		{"production", "nonsense", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		if got := levelFor(tc.env, tc.raw); got != tc.want {
			t.Fatalf("levelFor(%q, %q) = %v, want %v", tc.env, tc.raw, got, tc.want)
		}
	}
}
