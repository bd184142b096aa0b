package billing

import (
	"fmt"
	"strings"
)

// CreditPackage is a purchasable credit bundle. The catalog is fixed at
// deploy time and is the single source of truth for both order creation
// (package -> price) and settlement (price -> credits), so the two mappings
// can never drift apart.
type CreditPackage struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Credits         int64  `json:"credits"`
	PriceMinorUnits int64  `json:"price_minor_units"`
	Currency        string `json:"currency"`
}

// Prices in paise (INR minor units), matching the hosted checkout display.
var creditPackages = []CreditPackage{
	{ID: "starter", Name: "Starter Pack", Credits: 10, PriceMinorUnits: 24900, Currency: "INR"},
	{ID: "professional", Name: "Professional Pack", Credits: 25, PriceMinorUnits: 49900, Currency: "INR"},
	{ID: "enterprise", Name: "Enterprise Pack", Credits: 50, PriceMinorUnits: 89900, Currency: "INR"},
}

// Packages returns the catalog in display order.
func Packages() []CreditPackage {
	out := make([]CreditPackage, len(creditPackages))
	copy(out, creditPackages)
	return out
}

// PackageByID resolves a catalog entry by its identifier.
func PackageByID(id string) (CreditPackage, error) {
	needle := strings.ToLower(strings.TrimSpace(id))
	for _, pkg := range creditPackages {
		if pkg.ID == needle {
			return pkg, nil
		}
	}
	return CreditPackage{}, fmt.Errorf("%w: %s", ErrUnknownPackage, needle)
}

// PackageForAmount maps an exact paid amount back to its catalog entry.
// The mapping is total over the configured prices only: an amount that does
// not match any package exactly is an error, never a zero-credit grant.
func PackageForAmount(amountMinorUnits int64, currency string) (CreditPackage, error) {
	cur := strings.ToUpper(strings.TrimSpace(currency))
	for _, pkg := range creditPackages {
		if pkg.PriceMinorUnits == amountMinorUnits && pkg.Currency == cur {
			return pkg, nil
		}
	}
	return CreditPackage{}, fmt.Errorf("%w: %d %s", ErrUnrecognizedAmount, amountMinorUnits, cur)
}

// ValidateCatalog checks the catalog invariants settlement relies on. It is
// called at startup so a bad edit fails the boot, not a customer payment.
func ValidateCatalog() error {
	seenIDs := make(map[string]struct{}, len(creditPackages))
	seenPrices := make(map[string]struct{}, len(creditPackages))
	for _, pkg := range creditPackages {
		if pkg.ID == "" {
			return fmt.Errorf("catalog: package with empty id")
		}
		if pkg.Credits <= 0 {
			return fmt.Errorf("catalog: package %s has non-positive credits", pkg.ID)
		}
		if pkg.PriceMinorUnits <= 0 {
			return fmt.Errorf("catalog: package %s has non-positive price", pkg.ID)
		}
		if pkg.Currency == "" {
			return fmt.Errorf("catalog: package %s has empty currency", pkg.ID)
		}
		if _, dup := seenIDs[pkg.ID]; dup {
			return fmt.Errorf("catalog: duplicate package id %s", pkg.ID)
		}
		seenIDs[pkg.ID] = struct{}{}

		priceKey := fmt.Sprintf("%d:%s", pkg.PriceMinorUnits, pkg.Currency)
		if _, dup := seenPrices[priceKey]; dup {
			return fmt.Errorf("catalog: duplicate price %s (amount->credits mapping would be ambiguous)", priceKey)
		}
		seenPrices[priceKey] = struct{}{}
	}
	return nil
}
