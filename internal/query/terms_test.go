package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTermsUnwrapsQuotedWords(t *testing.T) {
	assert.Equal(t, []string{"annual", "budget"}, Terms(`"annual" "budget"`))
}

func TestTermsSplitsPhrases(t *testing.T) {
	assert.Equal(t, []string{"state", "of", "texas"}, Terms(`"state of texas"`))
}

func TestTermsDropsOperatorsAndPrefixes(t *testing.T) {
	terms := Terms(`filename:"report" "tax" AND ( "return" OR "refund" ) NOT "draft"`)
	assert.Equal(t, []string{"report", "tax", "return", "refund", "draft"}, terms)
}

func TestTermsLowercasesAndDeduplicates(t *testing.T) {
	assert.Equal(t, []string{"alpha", "beta"}, Terms(`"Alpha" "beta" "ALPHA"`))
}

func TestTermsUndoesEscapedQuotes(t *testing.T) {
	assert.Equal(t, []string{"he", "said", `"hi"`}, Terms(`"he said ""hi"""`))
}

func TestTermsEmptyQuery(t *testing.T) {
	assert.Empty(t, Terms(""))
}
