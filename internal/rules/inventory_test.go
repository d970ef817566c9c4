package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_pos/internal/models"
)

func strPtr(s string) *string { return &s }

func TestCanTransitionUnit(t *testing.T) {
	assert.True(t, CanTransitionUnit(models.UnitAvailable, models.UnitSold))
	assert.True(t, CanTransitionUnit(models.UnitAvailable, models.UnitRepair))
	assert.True(t, CanTransitionUnit(models.UnitRepair, models.UnitAvailable))
	assert.True(t, CanTransitionUnit(models.UnitRepair, models.UnitDamaged))
	assert.True(t, CanTransitionUnit(models.UnitReserved, models.UnitSold))

	assert.False(t, CanTransitionUnit(models.UnitSold, models.UnitAvailable))
	assert.False(t, CanTransitionUnit(models.UnitDamaged, models.UnitAvailable))
	assert.False(t, CanTransitionUnit(models.UnitRepair, models.UnitSold))
}

func TestTransitionUnit_SellRequiresAvailable(t *testing.T) {
	u := &models.InventoryUnit{ID: 4, Status: models.UnitAvailable}
	require.NoError(t, TransitionUnit(u, models.UnitSold))
	assert.Equal(t, models.UnitSold, u.Status)

	var illegal *IllegalTransitionError
	err := TransitionUnit(u, models.UnitSold)
	require.True(t, errors.As(err, &illegal))
	assert.Contains(t, err.Error(), "not available")

	inRepair := &models.InventoryUnit{ID: 5, Status: models.UnitRepair}
	assert.True(t, errors.As(TransitionUnit(inRepair, models.UnitSold), &illegal))
}

func TestValidateReceipt(t *testing.T) {
	phone := &models.Product{ID: 1, Name: "Galaxy A55", TrackIMEI: true, IsActive: true}
	accessory := &models.Product{ID: 2, Name: "Ốp lưng", IsActive: true}

	assert.NoError(t, ValidateReceipt(StockReceipt{Product: phone, IMEI: strPtr("356938035643809"), Cost: 1, Price: 2}))
	assert.NoError(t, ValidateReceipt(StockReceipt{Product: accessory}))

	var verr *ValidationError
	assert.True(t, errors.As(ValidateReceipt(StockReceipt{Product: phone}), &verr))
	assert.True(t, errors.As(ValidateReceipt(StockReceipt{Product: phone, IMEI: strPtr("35693803564380X")}), &verr))
	assert.True(t, errors.As(ValidateReceipt(StockReceipt{Product: accessory, Cost: -5}), &verr))
	assert.True(t, errors.As(ValidateReceipt(StockReceipt{Product: accessory, Condition: "broken"}), &verr))

	inactive := &models.Product{ID: 3, Name: "old", IsActive: false}
	assert.True(t, errors.As(ValidateReceipt(StockReceipt{Product: inactive}), &verr))
}

func TestNormalizeIMEI(t *testing.T) {
	assert.Nil(t, NormalizeIMEI(nil))
	assert.Nil(t, NormalizeIMEI(strPtr("   ")))
	assert.Equal(t, "356938035643809", *NormalizeIMEI(strPtr(" 356938035643809 ")))
}

func TestLowStock(t *testing.T) {
	// selling the last unit drops the count to zero, which is low stock
	assert.True(t, IsLowStock(0, 5))
	assert.True(t, IsLowStock(5, 5))
	assert.False(t, IsLowStock(6, 5))

	assert.Equal(t, UrgencyOut, StockUrgency(0, 5))
	assert.Equal(t, UrgencyCritical, StockUrgency(2, 5))
	assert.Equal(t, UrgencyLow, StockUrgency(4, 5))
	assert.Equal(t, "", StockUrgency(6, 5))
}
