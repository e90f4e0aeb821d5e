package errors

import "errors"

var ErrNotFound = errors.New("resource not found")
var ErrInvalidInput = errors.New("invalid input")

// ErrLedgerUnavailable covers every transport or store failure of the sales ledger
var ErrLedgerUnavailable = errors.New("sales ledger unavailable")
