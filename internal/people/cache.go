package people

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of users CachedDirectory keeps.
const DefaultCacheSize = 256

// CachedDirectory keeps recently resolved users in an LRU so a batch of
// comments by the same few people hits the database once per person.
// Misses are not cached.
type CachedDirectory struct {
	inner Directory
	users *lru.Cache[int64, *User]
}

// NewCachedDirectory wraps inner with an LRU of the given size.
// A non-positive size uses DefaultCacheSize.
func NewCachedDirectory(inner Directory, size int) (*CachedDirectory, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	users, err := lru.New[int64, *User](size)
	if err != nil {
		return nil, fmt.Errorf("creating user cache: %w", err)
	}
	return &CachedDirectory{inner: inner, users: users}, nil
}

// FindIncludingDeleted implements Directory.
func (c *CachedDirectory) FindIncludingDeleted(id int64) (*User, error) {
	if u, ok := c.users.Get(id); ok {
		return u, nil
	}

	u, err := c.inner.FindIncludingDeleted(id)
	if err != nil || u == nil {
		return u, err
	}

	c.users.Add(id, u)
	return u, nil
}

// Forget drops a cached user, e.g. after it was soft-deleted.
func (c *CachedDirectory) Forget(id int64) {
	c.users.Remove(id)
}

// Len returns the number of cached users.
func (c *CachedDirectory) Len() int {
	return c.users.Len()
}
