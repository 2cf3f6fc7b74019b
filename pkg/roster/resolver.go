package roster

import (
	"errors"
	"fmt"
)

// UnresolvedError reports a student whose roster record carries no hosting
// platform login.
type UnresolvedError struct {
	StudentID int64
	Name      string
}

// Error implements the error interface.
func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("student %s (id %d) has no hosting platform login", e.Name, e.StudentID)
}

// IsUnresolved reports whether err is an identity resolution failure.
func IsUnresolved(err error) bool {
	var unresolved *UnresolvedError
	return errors.As(err, &unresolved)
}

// Cache memoizes resolved identities for the lifetime of a run. It is
// injected so tests can seed or invalidate it deterministically.
type Cache interface {
	Get(studentID int64) (string, bool)
	Put(studentID int64, username string)
}

// MapCache is the default in-memory Cache.
type MapCache map[int64]string

// NewMapCache creates an empty MapCache.
func NewMapCache() MapCache {
	return make(MapCache)
}

// Get looks up a cached username.
func (c MapCache) Get(studentID int64) (string, bool) {
	username, ok := c[studentID]
	return username, ok
}

// Put stores a resolved username.
func (c MapCache) Put(studentID int64, username string) {
	c[studentID] = username
}

// Resolver maps roster students to hosting platform usernames. A successful
// resolution is cached for the remainder of the run; the student record is
// never re-inspected for a cached id.
type Resolver struct {
	cache Cache
}

// NewResolver creates a resolver backed by cache. A nil cache gets a fresh
// MapCache.
func NewResolver(cache Cache) *Resolver {
	if cache == nil {
		cache = NewMapCache()
	}
	return &Resolver{cache: cache}
}

// Resolve returns the hosting platform username for a student, or an
// UnresolvedError when the record carries no login attribute.
func (r *Resolver) Resolve(student Student) (string, error) {
	if username, ok := r.cache.Get(student.ID); ok {
		return username, nil
	}
	if student.Login == "" {
		return "", &UnresolvedError{StudentID: student.ID, Name: student.Name}
	}
	r.cache.Put(student.ID, student.Login)
	return student.Login, nil
}
