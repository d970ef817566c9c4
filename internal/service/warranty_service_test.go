package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/rules"
)

func issueYear(t *testing.T, f *fixture) *models.WarrantyView {
	t.Helper()
	start := rules.Date(2024, 1, 1)
	v, err := f.warranties().Issue(f.ctx, &IssueWarrantyRequest{
		IMEI:           ptr("356938035643809"),
		ProductName:    "iPhone 14",
		WarrantyMonths: 12,
		StartDate:      &start,
	})
	require.NoError(t, err)
	return v
}

func TestWarrantyLookup_ExpiresByDate(t *testing.T) {
	f := newFixture(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	v := issueYear(t, f)
	assert.True(t, rules.Date(2025, 1, 1).Equal(v.EndDate))
	assert.Equal(t, models.WarrantyActive, v.EffectiveStatus)

	f.at(time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC))
	last, err := f.warranties().Lookup(f.ctx, v.WarrantyNumber)
	require.NoError(t, err)
	assert.Equal(t, models.WarrantyActive, last.EffectiveStatus)

	f.at(time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC))
	expired, err := f.warranties().Lookup(f.ctx, v.WarrantyNumber)
	require.NoError(t, err)
	assert.Equal(t, models.WarrantyExpired, expired.EffectiveStatus)
	assert.Equal(t, models.WarrantyActive, expired.Status)
	assert.Equal(t, -1, expired.RemainingDays)
}

func TestWarrantyLookup_AllKeysAgree(t *testing.T) {
	f := newFixture(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	v := issueYear(t, f)

	byNumber, err := f.warranties().Lookup(f.ctx, v.WarrantyNumber)
	require.NoError(t, err)
	again, err := f.warranties().Lookup(f.ctx, v.WarrantyNumber)
	require.NoError(t, err)
	assert.Equal(t, byNumber, again)

	byToken, err := f.warranties().Lookup(f.ctx, v.LookupToken)
	require.NoError(t, err)
	assert.Equal(t, v.ID, byToken.ID)

	padded, err := f.warranties().Lookup(f.ctx, "  "+v.LookupToken+" ")
	require.NoError(t, err)
	assert.Equal(t, v.ID, padded.ID)

	byIMEI, err := f.warranties().Lookup(f.ctx, "356938035643809")
	require.NoError(t, err)
	assert.Equal(t, v.ID, byIMEI.ID)

	_, err = f.warranties().Lookup(f.ctx, "BH19990101000000")
	assert.True(t, rules.IsNotFound(err))
	_, err = f.warranties().Lookup(f.ctx, " ")
	var invalid *rules.ValidationError
	assert.ErrorAs(t, err, &invalid)
}

func TestWarrantyClaimAndVoid(t *testing.T) {
	f := newFixture(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	v := issueYear(t, f)

	claimed, err := f.warranties().Claim(f.ctx, f.actor, v.WarrantyNumber, &WarrantyNoteRequest{Notes: ptr("Màn hình sọc")})
	require.NoError(t, err)
	assert.Equal(t, models.WarrantyClaimed, claimed.Status)
	assert.Equal(t, "Màn hình sọc", *claimed.ClaimNotes)

	_, err = f.warranties().Void(f.ctx, f.actor, v.WarrantyNumber, nil)
	var illegal *rules.IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, string(models.WarrantyClaimed), illegal.From)
}

func TestWarrantyClaim_ExpiredRejected(t *testing.T) {
	f := newFixture(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	v := issueYear(t, f)

	f.at(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	_, err := f.warranties().Claim(f.ctx, f.actor, v.WarrantyNumber, nil)
	var illegal *rules.IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, string(models.WarrantyExpired), illegal.From)

	voided, err := f.warranties().Void(f.ctx, f.actor, v.WarrantyNumber, nil)
	require.NoError(t, err)
	assert.Equal(t, models.WarrantyVoided, voided.EffectiveStatus)
}

func TestWarrantyIssue_Validation(t *testing.T) {
	f := newFixture(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))

	tests := []struct {
		name  string
		req   IssueWarrantyRequest
		field string
	}{
		{"zero months", IssueWarrantyRequest{ProductName: "Tai nghe", WarrantyMonths: 0}, "warranty_months"},
		{"bad type", IssueWarrantyRequest{ProductName: "Tai nghe", WarrantyMonths: 6, WarrantyType: "lifetime"}, "warranty_type"},
		{"bad imei", IssueWarrantyRequest{ProductName: "Tai nghe", WarrantyMonths: 6, IMEI: ptr("abc")}, "imei"},
		{"no product", IssueWarrantyRequest{WarrantyMonths: 6}, "product_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.warranties().Issue(f.ctx, &tt.req)
			var invalid *rules.ValidationError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestWarrantyExpiring(t *testing.T) {
	f := newFixture(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	issueYear(t, f)

	f.at(time.Date(2024, 12, 10, 8, 0, 0, 0, time.UTC))
	list, err := f.warranties().Expiring(f.ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 22, list[0].RemainingDays)

	f.at(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	list, err = f.warranties().Expiring(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
