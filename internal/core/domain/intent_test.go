package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntentSet(t *testing.T) {
	var s IntentSet
	assert.True(t, s.IsGeneric())
	assert.Equal(t, "generic", s.String())

	s = s.With(IntentCount).With(IntentDetail)
	assert.True(t, s.Has(IntentCount))
	assert.True(t, s.Has(IntentDetail))
	assert.False(t, s.Has(IntentList))
	assert.False(t, s.IsGeneric())
	assert.Equal(t, []string{"count", "detail"}, s.Names())
	assert.Equal(t, "count+detail", s.String())
}

func TestDocType_IsSummary(t *testing.T) {
	assert.True(t, DocTypeGlobalSummary.IsSummary())
	assert.True(t, DocTypeCustomersSummary.IsSummary())
	assert.False(t, DocTypeAsset.IsSummary())
}
