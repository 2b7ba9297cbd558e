package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRule_CodecRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		rule     Rule
		expected string
	}{
		{"none", None(), `{"type":"none"}`},
		{"hourly", Hourly(), `{"type":"hourly"}`},
		{"daily", Daily(), `{"type":"daily"}`},
		{"weekly", Weekly(3), `{"type":"weekly","weekday":3}`},
		{"monthly", Monthly(31), `{"type":"monthly","day":31}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeRule(tt.rule)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))

			decoded, err := DecodeRule(data)
			require.NoError(t, err)
			assert.Equal(t, tt.rule, decoded)
		})
	}
}

func TestRule_DecodeErrors(t *testing.T) {
	_, err := DecodeRule([]byte(`{"type":"yearly"}`))
	assert.Error(t, err)

	_, err = DecodeRule([]byte(`not json`))
	assert.Error(t, err)
}

func TestRule_DecodeClampsPayload(t *testing.T) {
	rule, err := DecodeRule([]byte(`{"type":"weekly","weekday":42}`))
	require.NoError(t, err)
	assert.Equal(t, 7, rule.Weekday())

	rule, err = DecodeRule([]byte(`{"type":"monthly","day":0}`))
	require.NoError(t, err)
	assert.Equal(t, 1, rule.Day())
}

func TestRule_ZeroValueIsNone(t *testing.T) {
	var r Rule
	assert.Equal(t, KindNone, r.Kind())
	assert.False(t, r.IsRecurring())
}

func TestRule_ConstructorsClamp(t *testing.T) {
	assert.Equal(t, 1, Weekly(0).Weekday())
	assert.Equal(t, 7, Weekly(9).Weekday())
	assert.Equal(t, 1, Monthly(-3).Day())
	assert.Equal(t, 31, Monthly(99).Day())
}

func TestRule_RRuleString(t *testing.T) {
	assert.Equal(t, "", None().RRuleString())
	assert.Equal(t, "FREQ=HOURLY", Hourly().RRuleString())
	assert.Equal(t, "FREQ=DAILY", Daily().RRuleString())
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=TU", Weekly(3).RRuleString())
	assert.Equal(t, "FREQ=MONTHLY;BYMONTHDAY=15", Monthly(15).RRuleString())
}

func TestRule_RRule(t *testing.T) {
	dtstart := time.Date(2024, 5, 16, 9, 0, 0, 0, time.UTC)

	_, err := None().RRule(dtstart)
	assert.Error(t, err)

	rule, err := Daily().RRule(dtstart)
	require.NoError(t, err)
	next := rule.After(dtstart, false)
	assert.True(t, dtstart.AddDate(0, 0, 1).Equal(next))

	weekly, err := Weekly(3).RRule(dtstart)
	require.NoError(t, err)
	assert.Equal(t, time.Tuesday, weekly.After(dtstart, false).Weekday())
}
