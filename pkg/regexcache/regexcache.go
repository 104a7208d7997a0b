// Package regexcache keeps compiled regular expressions keyed by pattern so
// hot paths (placeholder scanning, path normalization, target matching)
// compile each pattern once.
package regexcache

import (
	"regexp"
	"sync"
)

var cache sync.Map

// Get returns a compiled regexp for the given pattern, compiling and
// caching it on first use.
func Get(pattern string) (*regexp.Regexp, error) {
	if cached, ok := cache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	actual, _ := cache.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}

// MustGet is Get for patterns known at compile time. It panics on an
// invalid pattern.
func MustGet(pattern string) *regexp.Regexp {
	re, err := Get(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

// Size returns the number of cached patterns.
func Size() int {
	count := 0
	cache.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
