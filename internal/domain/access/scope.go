package access

import (
	"context"
	"errors"
)

var ErrBranchForbidden = errors.New("branch not accessible to user")

// Scope is the set of branches a caller may act on.
type Scope struct {
	UserID       string
	Unrestricted bool
	BranchIDs    []uint64
}

// All is the scope of internal callers and users without branch assignments.
func All() Scope { return Scope{Unrestricted: true} }

// ForUser builds a scope from a user's assignments; none means every branch.
func ForUser(userID string, branchIDs []uint64) Scope {
	if len(branchIDs) == 0 {
		return Scope{UserID: userID, Unrestricted: true}
	}
	return Scope{UserID: userID, BranchIDs: branchIDs}
}

func (s Scope) Allows(branchID uint64) bool {
	if s.Unrestricted {
		return true
	}
	for _, id := range s.BranchIDs {
		if id == branchID {
			return true
		}
	}
	return false
}

// Check returns ErrBranchForbidden when branchID is outside the scope.
func (s Scope) Check(branchID uint64) error {
	if !s.Allows(branchID) {
		return ErrBranchForbidden
	}
	return nil
}

// Filter narrows requested to what the scope permits. With nothing requested it returns the
// scope's own branches, nil meaning no restriction.
func (s Scope) Filter(requested []uint64) []uint64 {
	if len(requested) == 0 {
		if s.Unrestricted {
			return nil
		}
		return s.BranchIDs
	}
	out := make([]uint64, 0, len(requested))
	for _, id := range requested {
		if s.Allows(id) {
			out = append(out, id)
		}
	}
	return out
}

type ctxKey struct{}

func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the caller's scope; a context without one is unrestricted.
func FromContext(ctx context.Context) Scope {
	if s, ok := ctx.Value(ctxKey{}).(Scope); ok {
		return s
	}
	return All()
}
