package explainer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExplanation(t *testing.T) {
	t.Run("plain object", func(t *testing.T) {
		exp, err := parseExplanation(validReply)
		require.NoError(t, err)
		assert.Equal(t, "Collect Request Expired", exp.Title)
		assert.Equal(t, "The payment request was not approved in time.", exp.Explanation)
	})

	t.Run("fenced with language tag", func(t *testing.T) {
		exp, err := parseExplanation("```json\n" + validReply + "\n```")
		require.NoError(t, err)
		assert.Equal(t, "Collect Request Expired", exp.Title)
	})

	t.Run("fenced without tag", func(t *testing.T) {
		exp, err := parseExplanation("```\n" + validReply + "\n```\n")
		require.NoError(t, err)
		assert.Len(t, exp.NextSteps, 2)
	})

	t.Run("empty lists allowed", func(t *testing.T) {
		exp, err := parseExplanation(`{"title":"t","explanation":"e","reasons":[],"next_steps":[]}`)
		require.NoError(t, err)
		assert.Empty(t, exp.Reasons)
		assert.Empty(t, exp.NextSteps)
	})

	errorCases := []struct {
		name string
		text string
		want error
	}{
		{"empty", "", ErrEmptyResponse},
		{"two line fence", "```\n{}", ErrInvalidJSON},
		{"prose", "Sure! Here is the JSON.", ErrInvalidJSON},
		{"array", `["title"]`, ErrInvalidJSON},
		{"numeric title", `{"title":1,"explanation":"e","reasons":[],"next_steps":[]}`, ErrMissingField},
		{"missing explanation", `{"title":"t","reasons":[],"next_steps":[]}`, ErrMissingField},
		{"object reasons", `{"title":"t","explanation":"e","reasons":{},"next_steps":[]}`, ErrMissingField},
		{"non-string step", `{"title":"t","explanation":"e","reasons":[],"next_steps":["a",2]}`, ErrMissingField},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseExplanation(tc.text)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt(`U30 "declined"`)
	assert.Contains(t, p, `The user encountered this error: "U30 'declined'"`)
	assert.Contains(t, p, `"next_steps"`)
}
