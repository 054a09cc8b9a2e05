package util

import (
	"time"

	"github.com/reavers-game/go-reavers/service/logger"
)

// Track the time it takes to execute a function
func Track(s string, startTime time.Time) {
	endTime := time.Now()
	logger.For(nil).Debugf("%s took %v", s, endTime.Sub(startTime))
}

// Filter returns the elements of s for which keep returns true. When inPlace
// is true the backing array of s is reused.
func Filter[T any](s []T, keep func(T) bool, inPlace bool) []T {
	result := s[:0]
	if !inPlace {
		result = make([]T, 0, len(s))
	}
	for _, v := range s {
		if keep(v) {
			result = append(result, v)
		}
	}
	return result
}

// Map returns the result of applying f to every element of s
func Map[T, U any](s []T, f func(T) U) []U {
	result := make([]U, len(s))
	for i, v := range s {
		result[i] = f(v)
	}
	return result
}

// Contains reports whether s contains v
func Contains[T comparable](s []T, v T) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

// Dedupe returns s with duplicates removed, preserving first-seen order
func Dedupe[T comparable](s []T) []T {
	seen := make(map[T]struct{}, len(s))
	result := make([]T, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

// TruncateWithEllipsis truncates s to at most length runes, appending an
// ellipsis when anything was cut
func TruncateWithEllipsis(s string, length int) string {
	if length < 0 {
		length = 0
	}
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	return string(runes[:length]) + "..."
}

// FirstNonEmpty returns the first non-empty string of its arguments
func FirstNonEmpty(strs ...string) string {
	for _, s := range strs {
		if s != "" {
			return s
		}
	}
	return ""
}
