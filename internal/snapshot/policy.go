package snapshot

import "strings"

// Default exclusion rule values applied when no configuration overrides them.
var (
	defaultExcludedDirectories = []string{".git", "node_modules", "dist", "build", "__pycache__"}
	defaultExcludedFiles       = []string{".DS_Store", "*.log", "*.lock"}
	defaultExcludedExtensions  = []string{".js", ".js.map", ".d.ts", ".exe", ".pyc"}
)

// ExclusionPolicy holds the three independent exclusion rules applied while
// building a snapshot. Directories lists directory basenames that are pruned
// before recursion. Files lists exact file basenames; the entries are literal
// names, not glob patterns, so "*.log" only matches a file literally named
// "*.log". Extensions lists name suffixes.
type ExclusionPolicy struct {
	Directories []string
	Files       []string
	Extensions  []string
}

// DefaultExclusionPolicy returns the fixed default exclusion rules.
func DefaultExclusionPolicy() ExclusionPolicy {
	return ExclusionPolicy{
		Directories: append([]string{}, defaultExcludedDirectories...),
		Files:       append([]string{}, defaultExcludedFiles...),
		Extensions:  append([]string{}, defaultExcludedExtensions...),
	}
}

// ExcludesDirectory reports whether a directory with the given basename must
// be pruned from traversal.
func (policy ExclusionPolicy) ExcludesDirectory(directoryName string) bool {
	for _, excludedDirectoryName := range policy.Directories {
		if directoryName == excludedDirectoryName {
			return true
		}
	}
	return false
}

// ExcludesFile reports whether a file with the given basename must be skipped,
// either because its name ends with an excluded suffix or because it exactly
// matches an excluded file name.
func (policy ExclusionPolicy) ExcludesFile(fileName string) bool {
	for _, excludedSuffix := range policy.Extensions {
		if strings.HasSuffix(fileName, excludedSuffix) {
			return true
		}
	}
	for _, excludedFileName := range policy.Files {
		if fileName == excludedFileName {
			return true
		}
	}
	return false
}
