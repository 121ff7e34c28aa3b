// Package ref holds typed references to entities owned by other systems,
// such as the host a package is bought for or the package itself.
package ref

import (
	"fmt"
	"strconv"
	"strings"
)

// Ref points at an entity by kind and numeric id.
type Ref struct {
	Kind string `json:"kind"`
	ID   uint   `json:"id"`
}

// New builds a Ref.
func New(kind string, id uint) Ref {
	return Ref{Kind: kind, ID: id}
}

// IsZero reports whether r is unset.
func (r Ref) IsZero() bool {
	return r.Kind == "" && r.ID == 0
}

// String renders "kind:id".
func (r Ref) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// Parse parses "kind:id".
func Parse(s string) (Ref, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok || kind == "" {
		return Ref{}, fmt.Errorf("invalid reference %q", s)
	}
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return Ref{}, fmt.Errorf("invalid reference id in %q", s)
	}
	return Ref{Kind: kind, ID: uint(n)}, nil
}
