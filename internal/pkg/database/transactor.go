package database

import "context"

// Transactor runs fn as one all-or-nothing unit. Repositories called with the
// context handed to fn take part in the same transaction. Calls nested inside
// an open transaction join it instead of starting a new one.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
