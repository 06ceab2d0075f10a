// Package utils contains general helper functions used across the repojson tool.
package utils

// DeduplicatePatterns removes duplicate entries from a slice while preserving
// order. The first occurrence of each unique entry is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// ContainsString checks if a slice of strings contains a specific target string.
func ContainsString(stringSlice []string, targetString string) bool {
	for _, currentString := range stringSlice {
		if currentString == targetString {
			return true
		}
	}
	return false
}

// AppendUniquePatterns appends each pattern to the base slice unless it is
// already present, preserving base ordering.
func AppendUniquePatterns(basePatterns []string, additionalPatterns []string) []string {
	result := basePatterns
	for _, pattern := range additionalPatterns {
		if pattern == "" {
			continue
		}
		if !ContainsString(result, pattern) {
			result = append(result, pattern)
		}
	}
	return result
}
