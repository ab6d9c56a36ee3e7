package application

import "errors"

var (
	// ErrSourceUnavailable is returned when the ledger can't be queried, either
	// while listing the activity of the incubator or fetching the details of
	// its transactions.
	ErrSourceUnavailable = errors.New("ledger source is unavailable")
	// ErrInvalidAccount is returned when the given user is not a valid account.
	ErrInvalidAccount = errors.New("invalid account")
	// ErrNoDataAvailable is returned when the deposit of a user can't be
	// computed and there's no previous value to fall back to.
	ErrNoDataAvailable = errors.New("no deposit data available, try again later")
	// ErrMissingExplorer is returned if the deposit service is created without
	// a ledger explorer.
	ErrMissingExplorer = errors.New("missing explorer service")
	// ErrMissingDepositCache is returned if the deposit service is created
	// without a deposit cache.
	ErrMissingDepositCache = errors.New("missing deposit cache")
)
