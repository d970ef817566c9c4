package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_pos/internal/models"
)

func newWarranty(t *testing.T, months int) *models.Warranty {
	t.Helper()
	start := Date(2024, 1, 1)
	end, err := WarrantyEnd(start, months)
	require.NoError(t, err)
	return &models.Warranty{
		WarrantyNumber: "BH20240101090000",
		StartDate:      start,
		EndDate:        end,
		Status:         models.WarrantyActive,
	}
}

func TestWarranty_ExpiresAfterEndDate(t *testing.T) {
	w := newWarranty(t, 12)
	assert.Equal(t, Date(2025, 1, 1), w.EndDate)

	assert.Equal(t, models.WarrantyActive, EffectiveWarrantyStatus(w, Date(2025, 1, 1)))
	assert.Equal(t, 0, RemainingDays(w, Date(2025, 1, 1)))

	assert.Equal(t, models.WarrantyExpired, EffectiveWarrantyStatus(w, Date(2025, 1, 2)))
	assert.Equal(t, -1, RemainingDays(w, Date(2025, 1, 2)))
	assert.Equal(t, models.WarrantyActive, w.Status, "stored status is not rewritten")
}

func TestWarranty_TerminalStatusesIgnoreDate(t *testing.T) {
	w := newWarranty(t, 12)
	w.Status = models.WarrantyClaimed
	assert.Equal(t, models.WarrantyClaimed, EffectiveWarrantyStatus(w, Date(2024, 6, 1)))
	assert.Equal(t, models.WarrantyClaimed, EffectiveWarrantyStatus(w, Date(2030, 6, 1)))

	w.Status = models.WarrantyVoided
	assert.Equal(t, models.WarrantyVoided, EffectiveWarrantyStatus(w, Date(2030, 6, 1)))
}

func TestWarranty_LookupIsIdempotent(t *testing.T) {
	w := newWarranty(t, 6)
	today := Date(2024, 5, 20)
	first := ViewWarranty(*w, today)
	second := ViewWarranty(*w, today)
	assert.Equal(t, first, second)
	assert.Equal(t, 42, first.RemainingDays)
}

func TestTransitionWarranty(t *testing.T) {
	w := newWarranty(t, 12)
	require.NoError(t, TransitionWarranty(w, models.WarrantyClaimed, Date(2024, 3, 1)))
	assert.Equal(t, models.WarrantyClaimed, w.Status)

	var illegal *IllegalTransitionError
	err := TransitionWarranty(w, models.WarrantyVoided, Date(2024, 3, 2))
	assert.True(t, errors.As(err, &illegal))

	expired := newWarranty(t, 1)
	err = TransitionWarranty(expired, models.WarrantyClaimed, Date(2024, 3, 1))
	require.True(t, errors.As(err, &illegal))
	assert.Equal(t, "expired", illegal.From)

	require.NoError(t, TransitionWarranty(expired, models.WarrantyVoided, Date(2024, 3, 1)))

	active := newWarranty(t, 12)
	assert.Error(t, TransitionWarranty(active, models.WarrantyExpired, Date(2024, 3, 1)))
}

func TestWarrantyEnd_RejectsNegativeMonths(t *testing.T) {
	_, err := WarrantyEnd(Date(2024, 1, 1), -1)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}
