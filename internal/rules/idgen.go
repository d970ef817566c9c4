package rules

import (
	"context"
	"fmt"
	"time"
)

// Number prefixes for generated document identifiers.
const (
	PrefixInvoice  = "HD"
	PrefixRepair   = "SC"
	PrefixPawn     = "CD"
	PrefixWarranty = "BH"
)

// Lookup token prefixes encoded on printed receipts.
const (
	TokenWarranty = "WARRANTY:"
	TokenRepair   = "REPAIR:"
)

const (
	numberLayout      = "20060102150405"
	maxNumberAttempts = 100
)

// ExistsFunc reports whether a generated identifier is already taken.
type ExistsFunc func(ctx context.Context, number string) (bool, error)

// NextNumber builds <prefix><YYYYMMDDHHMMSS> from now. If that is taken, a
// two-digit suffix is appended and incremented until a free number is found.
// Every candidate is checked through exists.
func NextNumber(ctx context.Context, prefix string, now time.Time, exists ExistsFunc) (string, error) {
	base := prefix + now.Format(numberLayout)
	candidate := base
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%02d", base, attempt)
	}
	return "", &DuplicateKeyError{Key: prefix + " number", Value: base}
}
