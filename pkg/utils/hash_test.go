package utils

import "testing"

func TestHashStringIsStable(t *testing.T) {
	if HashString("abc") != HashString("abc") {
		t.Fatalf("hash not stable")
	}
	if HashString("abc") == HashString("abd") {
		t.Fatalf("distinct inputs collided")
	}
	if len(HashString("abc")) != 32 {
		t.Fatalf("expected 32 hex characters, got %d", len(HashString("abc")))
	}
}

func TestCacheKeyCaseFolds(t *testing.T) {
	if CacheKey("Data Scientist", "8") != CacheKey("data scientist", "8") {
		t.Fatalf("cache key must be case-insensitive")
	}
	if CacheKey("a", "b") == CacheKey("a", "c") {
		t.Fatalf("distinct parts collided")
	}
}
