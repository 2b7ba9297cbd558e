package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cerebrovinny/memoss-ios-sub001/internal/recurrence"
)

func TestParseRepeat(t *testing.T) {
	tests := []struct {
		in       string
		expected recurrence.Rule
	}{
		{"", recurrence.None()},
		{"none", recurrence.None()},
		{"hourly", recurrence.Hourly()},
		{"daily", recurrence.Daily()},
		{"weekly:tue", recurrence.Weekly(3)},
		{"weekly:7", recurrence.Weekly(7)},
		{"WEEKLY:Mon", recurrence.Weekly(2)},
		{"monthly:31", recurrence.Monthly(31)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			rule, err := parseRepeat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rule)
		})
	}
}

func TestParseRepeat_Invalid(t *testing.T) {
	for _, in := range []string{"yearly", "weekly:someday", "weekly:8", "monthly:0", "monthly:32", "monthly:x"} {
		t.Run(in, func(t *testing.T) {
			_, err := parseRepeat(in)
			assert.Error(t, err)
		})
	}
}
