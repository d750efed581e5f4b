package comment

import "github.com/evcraddock/project-tracker/internal/target"

// resolveOwnership fills in what a new comment inherits from its target:
// the author and project when unset, and the target's privacy. Only the
// target's owner may override privacy, and only by setting it explicitly.
// Must run before validation, which depends on UserID.
func resolveOwnership(c *Comment, t target.Target, privateSet bool) {
	if c.UserID == 0 {
		c.UserID = t.Owner()
	}
	if c.ProjectID == nil {
		if p := t.Project(); p != nil {
			id := *p
			c.ProjectID = &id
		}
	}

	canChangePrivacy := c.UserID == t.Owner()
	if p, ok := t.(target.Private); ok {
		if !canChangePrivacy || !privateSet {
			c.IsPrivate = p.IsPrivate()
		}
	}
}
