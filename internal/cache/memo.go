package cache

import (
	"net/url"
	"strings"

	"mysphere/internal/core"
)

// KindPrefix is the key prefix shared by every cached entry of kind.
func KindPrefix(kind core.Kind) string {
	return string(kind) + ":"
}

// Key builds "<kind>:<name>?<sorted query>". url.Values.Encode sorts by key,
// so equivalent queries share an entry.
func Key(kind core.Kind, name string, query url.Values) string {
	var b strings.Builder
	b.WriteString(KindPrefix(kind))
	b.WriteString(name)
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	return b.String()
}

// Memoize returns the cached value for key, or calls load and caches its result.
// A nil cache always calls load. Errors are never cached.
func Memoize[T any](c Cache[any], key string, load func() (T, error)) (T, error) {
	if c == nil {
		return load()
	}
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

// Invalidate drops every entry cached for kind.
func Invalidate(c Cache[any], kind core.Kind) int {
	if c == nil {
		return 0
	}
	return c.DeletePrefix(KindPrefix(kind))
}
