package snapshot_test

import (
	"testing"

	"github.com/deeplifeai/repojson/internal/snapshot"
)

// TestExcludesDirectory verifies directory basename matching.
func TestExcludesDirectory(testingInstance *testing.T) {
	exclusionPolicy := snapshot.DefaultExclusionPolicy()
	testCases := []struct {
		directoryName string
		expected      bool
	}{
		{directoryName: ".git", expected: true},
		{directoryName: "node_modules", expected: true},
		{directoryName: "dist", expected: true},
		{directoryName: "build", expected: true},
		{directoryName: "__pycache__", expected: true},
		{directoryName: "src", expected: false},
		{directoryName: "git", expected: false},
		{directoryName: "node_modules_backup", expected: false},
	}
	for _, testCase := range testCases {
		if actual := exclusionPolicy.ExcludesDirectory(testCase.directoryName); actual != testCase.expected {
			testingInstance.Errorf("ExcludesDirectory(%q): expected %t, got %t", testCase.directoryName, testCase.expected, actual)
		}
	}
}

// TestExcludesFile verifies suffix and literal file name matching, including
// the literal (non-glob) semantics of the default entries.
func TestExcludesFile(testingInstance *testing.T) {
	exclusionPolicy := snapshot.DefaultExclusionPolicy()
	testCases := []struct {
		fileName string
		expected bool
	}{
		{fileName: "app.js", expected: true},
		{fileName: "bundle.js.map", expected: true},
		{fileName: "types.d.ts", expected: true},
		{fileName: "tool.exe", expected: true},
		{fileName: "module.pyc", expected: true},
		{fileName: ".DS_Store", expected: true},
		{fileName: "*.log", expected: true},
		{fileName: "*.lock", expected: true},
		{fileName: "build.log", expected: false},
		{fileName: "yarn.lock", expected: false},
		{fileName: "main.ts", expected: false},
		{fileName: "readme.md", expected: false},
	}
	for _, testCase := range testCases {
		if actual := exclusionPolicy.ExcludesFile(testCase.fileName); actual != testCase.expected {
			testingInstance.Errorf("ExcludesFile(%q): expected %t, got %t", testCase.fileName, testCase.expected, actual)
		}
	}
}

// TestCustomPolicyExtensions verifies that a caller-provided policy replaces
// the defaults rather than augmenting them.
func TestCustomPolicyExtensions(testingInstance *testing.T) {
	exclusionPolicy := snapshot.ExclusionPolicy{
		Directories: []string{"vendor"},
		Extensions:  []string{".min.css"},
	}
	if !exclusionPolicy.ExcludesDirectory("vendor") {
		testingInstance.Fatalf("expected vendor directory exclusion")
	}
	if exclusionPolicy.ExcludesDirectory(".git") {
		testingInstance.Fatalf("expected .git to survive under a custom policy")
	}
	if !exclusionPolicy.ExcludesFile("site.min.css") {
		testingInstance.Fatalf("expected .min.css suffix exclusion")
	}
	if exclusionPolicy.ExcludesFile("app.js") {
		testingInstance.Fatalf("expected app.js to survive under a custom policy")
	}
}
