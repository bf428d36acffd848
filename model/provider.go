package model

import "context"

// Provider hands the traversal its root symbols.
//
// Roots may mix modules, packages and types. Packages listed inside a
// module need not be repeated at the root. Member order within every
// symbol is the order facts are emitted in, so providers must return a
// stable order.
type Provider interface {
	Roots(ctx context.Context) ([]Symbol, error)
}

// Static is a Provider over a fixed symbol list.
type Static []Symbol

// Roots returns the list unchanged.
func (s Static) Roots(ctx context.Context) ([]Symbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s, nil
}
