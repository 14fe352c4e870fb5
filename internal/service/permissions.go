package service

import "context"

// PermissionChecker answers whether a user holds a permission code.
// Reporting surfaces over session data gate on "analytics:read".
type PermissionChecker interface {
	Has(ctx context.Context, userID, code string) bool
}

// StaticPermissionChecker resolves permissions from a fixed grant table,
// typically loaded from configuration. A "*" code grants everything.
type StaticPermissionChecker struct {
	grants map[string][]string
}

var _ PermissionChecker = (*StaticPermissionChecker)(nil)

// NewStaticPermissionChecker creates a checker over a user -> codes table.
func NewStaticPermissionChecker(grants map[string][]string) *StaticPermissionChecker {
	if grants == nil {
		grants = make(map[string][]string)
	}
	return &StaticPermissionChecker{grants: grants}
}

func (c *StaticPermissionChecker) Has(_ context.Context, userID, code string) bool {
	for _, granted := range c.grants[userID] {
		if granted == "*" || granted == code {
			return true
		}
	}
	return false
}
