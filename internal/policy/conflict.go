// Package policy holds the per-run decision helpers: how rename target
// collisions are handled and how already-normalized files are recognized.
package policy

import (
	"errors"
	"fmt"
	"os"

	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/pkg/types"
)

// ErrTargetExists is returned by the fail policy on a rename collision.
var ErrTargetExists = errors.New("rename target already exists")

// ConflictResolver decides what to do when a computed rename target is
// already taken by another file.
type ConflictResolver struct {
	policy types.ConflictPolicy
}

func NewConflictResolver(policy types.ConflictPolicy) *ConflictResolver {
	return &ConflictResolver{policy: policy}
}

// Resolve inspects the rename from current to target. It reports whether
// the rename may proceed; under the fail policy a collision is an error,
// under skip it silently drops the rename.
func (c *ConflictResolver) Resolve(current, target string) (bool, error) {
	if target == current {
		return false, nil
	}

	_, err := os.Stat(target)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	switch c.policy {
	case types.ConflictPolicySkip:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrTargetExists, target)
	}
}
