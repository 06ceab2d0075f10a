package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const (
	unknownVersion      = "unknown"
	developmentVersion  = "(devel)"
	gitExecutableName   = "git"
	gitDescribeSubcmd   = "describe"
	errorNoGitDirFormat = "%s directory not found in or above %s"
	errorAbsPathFormat  = "resolving absolute path for %s: %w"
)

// gitDescribeArgumentSets lists the describe invocations tried in order when
// the binary carries no release version: an exact tag first, then the
// long form with commit distance and dirty marker.
var gitDescribeArgumentSets = [][]string{
	{gitDescribeSubcmd, "--tags", "--exact-match"},
	{gitDescribeSubcmd, "--tags", "--long", "--dirty"},
}

// GetApplicationVersion reports the repojson version shown by --version.
// A module-aware install gets the version from Go build info; a source
// checkout falls back to git describe against the enclosing repository.
func GetApplicationVersion() string {
	buildInformation, buildInformationAvailable := debug.ReadBuildInfo()
	if buildInformationAvailable && buildInformation.Main.Version != "" && buildInformation.Main.Version != developmentVersion {
		return buildInformation.Main.Version
	}

	repositoryDirectory, repositoryLookupError := findGitDirectory(".")
	if repositoryLookupError != nil {
		return unknownVersion
	}
	for _, describeArguments := range gitDescribeArgumentSets {
		// #nosec G204
		describeCommand := exec.Command(gitExecutableName, describeArguments...)
		describeCommand.Dir = repositoryDirectory
		describeOutput, describeError := describeCommand.Output()
		if describeError == nil && len(describeOutput) > 0 {
			return strings.TrimSpace(string(describeOutput))
		}
	}
	return unknownVersion
}

// findGitDirectory walks upward from startDirectory until it finds a
// directory containing .git and returns that directory.
func findGitDirectory(startDirectory string) (string, error) {
	absoluteStartDirectory, absolutePathError := filepath.Abs(startDirectory)
	if absolutePathError != nil {
		return "", fmt.Errorf(errorAbsPathFormat, startDirectory, absolutePathError)
	}

	currentDirectory := absoluteStartDirectory
	for {
		gitDirectoryInformation, statError := os.Stat(filepath.Join(currentDirectory, GitDirectoryName))
		if statError == nil && gitDirectoryInformation.IsDir() {
			return currentDirectory, nil
		}

		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			break
		}
		currentDirectory = parentDirectory
	}

	return "", fmt.Errorf(errorNoGitDirFormat, GitDirectoryName, absoluteStartDirectory)
}
