package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp   int
		want int
	}{
		{-50, 1},
		{0, 1},
		{99, 1},
		{100, 2},
		{299, 2},
		{300, 3},
		{599, 3},
		{600, 4},
		{1000, 5},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LevelForXP(tc.xp), "xp=%d", tc.xp)
	}
}

func TestLevelForXPMonotonic(t *testing.T) {
	prev := LevelForXP(0)
	for xp := 1; xp <= 5000; xp += 7 {
		level := LevelForXP(xp)
		assert.GreaterOrEqual(t, level, prev, "xp=%d", xp)
		prev = level
	}
}
