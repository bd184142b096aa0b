package billing

import "errors"

var (
	// ErrUnknownPackage is returned when an order is requested for a package
	// id that is not in the catalog.
	ErrUnknownPackage = errors.New("unknown credit package")

	// ErrProviderUnavailable covers payment provider transport failures,
	// timeouts and rejections during order creation.
	ErrProviderUnavailable = errors.New("payment provider unavailable")

	// ErrUnrecognizedAmount is returned when a paid amount matches no
	// catalog price exactly.
	ErrUnrecognizedAmount = errors.New("unrecognized payment amount")

	// ErrUnknownAccount is returned when neither the order linkage nor the
	// payer email resolves to a local user.
	ErrUnknownAccount = errors.New("unknown paying account")
)
