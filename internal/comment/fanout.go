package comment

import (
	"slices"

	"github.com/evcraddock/project-tracker/internal/target"
)

// fanOut applies a newly created comment to its target in memory: privacy
// set by the owner, watchers, and the update time. The caller saves t.
func fanOut(c *Comment, t target.Target, op *operation) {
	if w, ok := t.(target.Watchable); ok {
		canChangePrivacy := c.UserID == t.Owner()
		private := false

		if p, ok := t.(target.Private); ok {
			if canChangePrivacy {
				p.SetPrivate(c.IsPrivate)
			}
			private = p.IsPrivate()

			if private && canChangePrivacy && op.privateWatcherIDs != nil && op.privateSet {
				w.SetPrivateWatchers(op.privateWatcherIDs)
			} else if private {
				w.AddWatchers(t.Owner())
			}
		}

		if !private {
			watchers := slices.Clone(op.mentionedUserIDs)
			if c.User != nil {
				watchers = append(watchers, c.User.ID)
			}
			w.AddWatchers(watchers...)
		}
	}

	if u, ok := t.(target.Touchable); ok {
		u.SetUpdatedAt(c.CreatedAt)
	}
}
