// Package target provides the objects comments attach to. The set of kinds
// is closed; what a target can do is expressed by the capability interfaces
// it implements.
package target

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when a target row does not exist.
var ErrNotFound = errors.New("target not found")

// Kind names a target type. Its value is what comments store in target_type.
type Kind string

const (
	KindTask         Kind = "Task"
	KindConversation Kind = "Conversation"
	KindPage         Kind = "Page"
	KindNote         Kind = "Note"
)

// Kinds is the set of known target kinds.
var Kinds = []Kind{KindTask, KindConversation, KindPage, KindNote}

// IsValid checks if a kind is recognized.
func (k Kind) IsValid() bool {
	for _, v := range Kinds {
		if k == v {
			return true
		}
	}
	return false
}

// Table returns the table holding targets of this kind.
func (k Kind) Table() string {
	switch k {
	case KindTask:
		return "tasks"
	case KindConversation:
		return "conversations"
	case KindPage:
		return "pages"
	case KindNote:
		return "notes"
	default:
		return ""
	}
}

// ParseKind resolves a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown target kind: %q", s)
}

// Ref is a polymorphic reference to a target.
type Ref struct {
	Kind Kind  `json:"type"`
	ID   int64 `json:"id"`
}

// IsZero reports whether the reference points at nothing.
func (r Ref) IsZero() bool {
	return r.Kind == "" && r.ID == 0
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// ParseRef parses "kind:id", e.g. "task:12".
func ParseRef(s string) (Ref, error) {
	name, rawID, ok := strings.Cut(s, ":")
	if !ok {
		return Ref{}, fmt.Errorf("invalid target %q (use kind:id)", s)
	}
	kind, err := ParseKind(name)
	if err != nil {
		return Ref{}, err
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return Ref{}, fmt.Errorf("invalid target ID: %s", rawID)
	}
	return Ref{Kind: kind, ID: id}, nil
}

// Target is implemented by every kind.
type Target interface {
	Ref() Ref
	Owner() int64
	Project() *int64
}

// Private is implemented by targets with a privacy flag.
type Private interface {
	Target
	IsPrivate() bool
	SetPrivate(bool)
}

// Watchable is implemented by targets with a watcher list.
type Watchable interface {
	Target
	Watchers() []int64
	AddWatchers(ids ...int64)
	SetPrivateWatchers(ids []int64)
}

// Touchable is implemented by targets that track their last update.
type Touchable interface {
	Target
	LastUpdated() time.Time
	SetUpdatedAt(time.Time)
}

// Disposable is implemented by targets that may be removed once their last
// comment is gone.
type Disposable interface {
	Target
	Simple() bool
}
