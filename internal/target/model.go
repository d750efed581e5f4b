package target

import (
	"slices"
	"time"
)

// Base holds the columns every target has.
type Base struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	ProjectID     *int64    `json:"project_id,omitempty"`
	Title         string    `json:"title"`
	CommentsCount int       `json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Owner returns the user who created the target.
func (b *Base) Owner() int64 { return b.UserID }

// Project returns the owning project, if any.
func (b *Base) Project() *int64 { return b.ProjectID }

// Privacy is the privacy flag shared by Task and Conversation.
type Privacy struct {
	Private bool `json:"is_private"`
}

func (p *Privacy) IsPrivate() bool     { return p.Private }
func (p *Privacy) SetPrivate(on bool) { p.Private = on }

// WatcherList is a sorted set of watching user IDs.
type WatcherList struct {
	WatcherIDs []int64 `json:"watcher_ids"`
}

// Watchers returns the watching user IDs in ascending order.
func (w *WatcherList) Watchers() []int64 { return w.WatcherIDs }

// AddWatchers adds users to the list. Zero IDs are ignored.
func (w *WatcherList) AddWatchers(ids ...int64) {
	w.WatcherIDs = normalizeIDs(append(slices.Clone(w.WatcherIDs), ids...))
}

// SetPrivateWatchers replaces the list with exactly ids.
func (w *WatcherList) SetPrivateWatchers(ids []int64) {
	w.WatcherIDs = normalizeIDs(slices.Clone(ids))
}

func normalizeIDs(ids []int64) []int64 {
	ids = slices.DeleteFunc(ids, func(id int64) bool { return id == 0 })
	slices.Sort(ids)
	return slices.Compact(ids)
}

// Timestamps holds the update time of touchable targets.
type Timestamps struct {
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Timestamps) LastUpdated() time.Time     { return t.UpdatedAt }
func (t *Timestamps) SetUpdatedAt(at time.Time) { t.UpdatedAt = at }

// Task is a unit of work. Comments on tasks may omit a body.
type Task struct {
	Base
	Privacy
	WatcherList
	Timestamps
}

func (t *Task) Ref() Ref { return Ref{Kind: KindTask, ID: t.ID} }

// Conversation is a discussion thread. A simple conversation exists only to
// hold its comments and is removed with the last one.
type Conversation struct {
	Base
	Privacy
	WatcherList
	Timestamps
	IsSimple bool `json:"simple"`
}

func (c *Conversation) Ref() Ref     { return Ref{Kind: KindConversation, ID: c.ID} }
func (c *Conversation) Simple() bool { return c.IsSimple }

// Page is a wiki-style page. It has watchers but no privacy.
type Page struct {
	Base
	WatcherList
	Timestamps
}

func (p *Page) Ref() Ref { return Ref{Kind: KindPage, ID: p.ID} }

// Note is a plain target with no capabilities.
type Note struct {
	Base
}

func (n *Note) Ref() Ref { return Ref{Kind: KindNote, ID: n.ID} }

var (
	_ Private    = (*Task)(nil)
	_ Watchable  = (*Task)(nil)
	_ Touchable  = (*Task)(nil)
	_ Private    = (*Conversation)(nil)
	_ Watchable  = (*Conversation)(nil)
	_ Touchable  = (*Conversation)(nil)
	_ Disposable = (*Conversation)(nil)
	_ Watchable  = (*Page)(nil)
	_ Touchable  = (*Page)(nil)
	_ Target     = (*Note)(nil)
)
