package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected map[string]any
	}{
		{
			name:     "age only",
			text:     "I'm 70, can I get Medi-Cal?",
			expected: map[string]any{ArgAge: 70},
		},
		{
			name: "income household and flag",
			text: "I am 34 and pregnant, household of 3 making $30k a year",
			expected: map[string]any{
				ArgAge:           34,
				ArgAnnualIncome:  30000.0,
				ArgHouseholdSize: 3,
				"pregnant":       true,
			},
		},
		{
			name: "years old and people",
			text: "My dad is 81 years old and blind. We are 2 people earning 25,500.50",
			expected: map[string]any{
				ArgAge:              81,
				ArgAnnualIncome:     25500.5,
				ArgHouseholdSize:    2,
				"blind_or_disabled": true,
			},
		},
		{
			name:     "count after make is not income",
			text:     "I want to make an application for 2 people",
			expected: map[string]any{ArgHouseholdSize: 2},
		},
		{
			name:     "nothing",
			text:     "what is medi-cal?",
			expected: map[string]any{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseQuery(tt.text))
		})
	}
}

func TestWithQuery_ExplicitArgumentsWin(t *testing.T) {
	args := WithQuery(map[string]any{
		ArgQuery:         "I'm 70 with a household of 4",
		ArgHouseholdSize: 2,
	})

	assert.Equal(t, map[string]any{ArgAge: 70, ArgHouseholdSize: 2}, args)
	assert.True(t, Evaluate(args).Eligible)
}

func TestWithQuery_QueryOnlyMissing(t *testing.T) {
	v := Evaluate(WithQuery(map[string]any{ArgQuery: "tell me about medi-cal"}))
	assert.Equal(t, StatusMissing, v.Status)
	assert.False(t, v.Eligible)
}
