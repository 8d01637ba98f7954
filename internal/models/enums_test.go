package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertycrm/server/internal/apperr"
)

func TestParseTimeline(t *testing.T) {
	got, err := ParseTimeline(" onetothreemonths ")
	require.NoError(t, err)
	assert.Equal(t, TimelineOneToThreeMonths, got)

	_, err = ParseTimeline("Someday")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestParseRejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name  string
		parse func(string) error
	}{
		{"buyer type", func(s string) error { _, err := ParseBuyerType(s); return err }},
		{"property type", func(s string) error { _, err := ParsePropertyType(s); return err }},
		{"property status", func(s string) error { _, err := ParsePropertyStatus(s); return err }},
		{"lead status", func(s string) error { _, err := ParseLeadStatus(s); return err }},
		{"engagement kind", func(s string) error { _, err := ParseEngagementKind(s); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.parse("definitely-not-a-value")
			assert.True(t, apperr.Is(err, apperr.KindValidation))
			assert.Error(t, tt.parse(""))
		})
	}
}

func TestParseCanonicalValues(t *testing.T) {
	bt, err := ParseBuyerType("hni")
	require.NoError(t, err)
	assert.Equal(t, BuyerTypeHNI, bt)

	pt, err := ParsePropertyType("Investment")
	require.NoError(t, err)
	assert.Equal(t, PropertyTypeInvestment, pt)

	kind, err := ParseEngagementKind("OFFER")
	require.NoError(t, err)
	assert.Equal(t, EngagementOffer, kind)
}

func TestValid(t *testing.T) {
	assert.True(t, TimelineFlexible.Valid())
	assert.False(t, Timeline("flexible").Valid())
	assert.True(t, PropertyStatusSold.Valid())
	assert.False(t, LeadStatus("Archived").Valid())
}

func TestLeadStatusInMarket(t *testing.T) {
	for _, s := range InMarketLeadStatuses() {
		assert.True(t, s.InMarket(), s)
	}
	for _, s := range []LeadStatus{LeadStatusNegotiating, LeadStatusConverted, LeadStatusLost} {
		assert.False(t, s.InMarket(), s)
	}
}
