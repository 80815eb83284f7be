package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}

// CacheKey builds a stable cache key from its parts, case-folded so that
// "Data Scientist" and "data scientist" share an entry.
func CacheKey(parts ...string) string {
	return HashString(strings.ToLower(strings.Join(parts, "|")))
}
