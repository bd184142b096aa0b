package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackages(t *testing.T) {
	pkgs := Packages()
	require.Len(t, pkgs, 3)

	// Returned slice is a copy, mutating it must not touch the catalog
	pkgs[0].Credits = 999999
	fresh := Packages()
	assert.NotEqual(t, int64(999999), fresh[0].Credits)
}

func TestPackageByID(t *testing.T) {
	pkg, err := PackageByID("professional")
	require.NoError(t, err)
	assert.Equal(t, "professional", pkg.ID)
	assert.Equal(t, int64(25), pkg.Credits)
	assert.Equal(t, int64(49900), pkg.PriceMinorUnits)

	// Lookup tolerates case and surrounding whitespace
	pkg, err = PackageByID("  Starter ")
	require.NoError(t, err)
	assert.Equal(t, "starter", pkg.ID)

	_, err = PackageByID("mega")
	assert.ErrorIs(t, err, ErrUnknownPackage)
}

func TestPackageForAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		currency string
		wantID   string
		wantErr  bool
	}{
		{name: "starter price", amount: 24900, currency: "INR", wantID: "starter"},
		{name: "professional price", amount: 49900, currency: "INR", wantID: "professional"},
		{name: "enterprise price", amount: 89900, currency: "INR", wantID: "enterprise"},
		{name: "lowercase currency", amount: 24900, currency: "inr", wantID: "starter"},
		{name: "unknown amount", amount: 10000, currency: "INR", wantErr: true},
		{name: "off by one", amount: 24901, currency: "INR", wantErr: true},
		{name: "wrong currency", amount: 24900, currency: "USD", wantErr: true},
		{name: "zero amount", amount: 0, currency: "INR", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg, err := PackageForAmount(tt.amount, tt.currency)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnrecognizedAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, pkg.ID)
		})
	}
}

func TestValidateCatalog(t *testing.T) {
	assert.NoError(t, ValidateCatalog())
}

func TestValidateCatalogRejectsBadEntries(t *testing.T) {
	original := creditPackages
	defer func() { creditPackages = original }()

	tests := []struct {
		name    string
		catalog []CreditPackage
	}{
		{
			name: "duplicate id",
			catalog: []CreditPackage{
				{ID: "starter", Name: "A", Credits: 10, PriceMinorUnits: 100, Currency: "INR"},
				{ID: "starter", Name: "B", Credits: 20, PriceMinorUnits: 200, Currency: "INR"},
			},
		},
		{
			name: "duplicate price makes settlement ambiguous",
			catalog: []CreditPackage{
				{ID: "a", Name: "A", Credits: 10, PriceMinorUnits: 100, Currency: "INR"},
				{ID: "b", Name: "B", Credits: 20, PriceMinorUnits: 100, Currency: "INR"},
			},
		},
		{
			name: "zero credits",
			catalog: []CreditPackage{
				{ID: "a", Name: "A", Credits: 0, PriceMinorUnits: 100, Currency: "INR"},
			},
		},
		{
			name: "zero price",
			catalog: []CreditPackage{
				{ID: "a", Name: "A", Credits: 10, PriceMinorUnits: 0, Currency: "INR"},
			},
		},
		{
			name: "empty currency",
			catalog: []CreditPackage{
				{ID: "a", Name: "A", Credits: 10, PriceMinorUnits: 100, Currency: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creditPackages = tt.catalog
			assert.Error(t, ValidateCatalog())
		})
	}
}
