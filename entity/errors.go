package entity

import "errors"

// Domain errors raised by the session engine. Handlers translate these into
// negative protocol acknowledgements; the device never sees the detail.
var (
	ErrStationNotFound     = errors.New("charging station not found")
	ErrStationDeleted      = errors.New("charging station is deleted")
	ErrVendorMismatch      = errors.New("station vendor or model differs from registration")
	ErrConnectorNotFound   = errors.New("connector not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTransactionFinished = errors.New("transaction is already finished")
	ErrNotAuthorized       = errors.New("not authorized")
)
