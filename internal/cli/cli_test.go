package cli_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/deeplifeai/repojson/internal/cli"
)

// runRootCommand executes the root command with the provided arguments from
// the given working directory.
func runRootCommand(testingInstance *testing.T, workingDirectory string, arguments []string) error {
	testingInstance.Helper()
	testingInstance.Setenv("HOME", workingDirectory)
	testingInstance.Setenv("USERPROFILE", workingDirectory)
	previousDirectory, getwdError := os.Getwd()
	if getwdError != nil {
		testingInstance.Fatalf("reading working directory: %v", getwdError)
	}
	if chdirError := os.Chdir(workingDirectory); chdirError != nil {
		testingInstance.Fatalf("changing working directory: %v", chdirError)
	}
	testingInstance.Cleanup(func() {
		if chdirError := os.Chdir(previousDirectory); chdirError != nil {
			testingInstance.Fatalf("restoring working directory: %v", chdirError)
		}
	})
	rootCommand := cli.NewRootCommand(zap.NewNop())
	rootCommand.SetArgs(arguments)
	return rootCommand.Execute()
}

// TestSnapshotCommandWritesDocument verifies the happy path: exit without
// error and a parseable document mirroring the filtered repository.
func TestSnapshotCommandWritesDocument(testingInstance *testing.T) {
	workingDirectory := testingInstance.TempDir()
	repositoryDirectory := filepath.Join(workingDirectory, "repo")
	if mkdirError := os.MkdirAll(filepath.Join(repositoryDirectory, "src"), 0o755); mkdirError != nil {
		testingInstance.Fatalf("creating fixture directories: %v", mkdirError)
	}
	if writeError := os.WriteFile(filepath.Join(repositoryDirectory, "src", "main.txt"), []byte("hello"), 0o644); writeError != nil {
		testingInstance.Fatalf("writing fixture file: %v", writeError)
	}
	if writeError := os.WriteFile(filepath.Join(repositoryDirectory, "app.js"), []byte("x"), 0o644); writeError != nil {
		testingInstance.Fatalf("writing fixture file: %v", writeError)
	}
	outputPath := filepath.Join(workingDirectory, "snapshot.json")

	if executeError := runRootCommand(testingInstance, workingDirectory, []string{"snapshot", repositoryDirectory, outputPath}); executeError != nil {
		testingInstance.Fatalf("snapshot command returned error: %v", executeError)
	}

	writtenBytes, readError := os.ReadFile(outputPath)
	if readError != nil {
		testingInstance.Fatalf("reading output file: %v", readError)
	}
	var decodedDocument map[string]any
	if unmarshalError := json.Unmarshal(writtenBytes, &decodedDocument); unmarshalError != nil {
		testingInstance.Fatalf("decoding output file: %v", unmarshalError)
	}
	expectedDocument := map[string]any{
		"src": map[string]any{
			"main.txt": "hello",
		},
	}
	if !reflect.DeepEqual(decodedDocument, expectedDocument) {
		testingInstance.Fatalf("expected %v, got %v", expectedDocument, decodedDocument)
	}
}

// TestSnapshotCommandRejectsMissingRepository verifies the fatal precondition
// path: an error is returned and no output file is created.
func TestSnapshotCommandRejectsMissingRepository(testingInstance *testing.T) {
	workingDirectory := testingInstance.TempDir()
	outputPath := filepath.Join(workingDirectory, "snapshot.json")

	executeError := runRootCommand(testingInstance, workingDirectory, []string{"snapshot", filepath.Join(workingDirectory, "missing"), outputPath})
	if executeError == nil {
		testingInstance.Fatalf("expected error for missing repository path")
	}
	if _, statError := os.Stat(outputPath); !os.IsNotExist(statError) {
		testingInstance.Fatalf("expected no output file, stat returned %v", statError)
	}
}

// TestSnapshotCommandAppliesFlagExclusions verifies that flag-provided
// exclusions extend the defaults.
func TestSnapshotCommandAppliesFlagExclusions(testingInstance *testing.T) {
	workingDirectory := testingInstance.TempDir()
	repositoryDirectory := filepath.Join(workingDirectory, "repo")
	if mkdirError := os.MkdirAll(filepath.Join(repositoryDirectory, "vendor"), 0o755); mkdirError != nil {
		testingInstance.Fatalf("creating fixture directories: %v", mkdirError)
	}
	if writeError := os.WriteFile(filepath.Join(repositoryDirectory, "vendor", "lib.txt"), []byte("dropped"), 0o644); writeError != nil {
		testingInstance.Fatalf("writing fixture file: %v", writeError)
	}
	if writeError := os.WriteFile(filepath.Join(repositoryDirectory, "kept.md"), []byte("stays"), 0o644); writeError != nil {
		testingInstance.Fatalf("writing fixture file: %v", writeError)
	}
	outputPath := filepath.Join(workingDirectory, "snapshot.json")

	if executeError := runRootCommand(testingInstance, workingDirectory, []string{"snapshot", "-e", "vendor", repositoryDirectory, outputPath}); executeError != nil {
		testingInstance.Fatalf("snapshot command returned error: %v", executeError)
	}

	writtenBytes, readError := os.ReadFile(outputPath)
	if readError != nil {
		testingInstance.Fatalf("reading output file: %v", readError)
	}
	var decodedDocument map[string]any
	if unmarshalError := json.Unmarshal(writtenBytes, &decodedDocument); unmarshalError != nil {
		testingInstance.Fatalf("decoding output file: %v", unmarshalError)
	}
	expectedDocument := map[string]any{
		"kept.md": "stays",
	}
	if !reflect.DeepEqual(decodedDocument, expectedDocument) {
		testingInstance.Fatalf("expected %v, got %v", expectedDocument, decodedDocument)
	}
}

// TestSnapshotCommandHonorsLocalConfiguration verifies that a local
// configuration file replaces the default exclusion sets.
func TestSnapshotCommandHonorsLocalConfiguration(testingInstance *testing.T) {
	workingDirectory := testingInstance.TempDir()

	configurationContent := "snapshot:\n  exclude:\n    extensions: [.md]\n"
	if writeError := os.WriteFile(filepath.Join(workingDirectory, ".repojson.yaml"), []byte(configurationContent), 0o644); writeError != nil {
		testingInstance.Fatalf("writing configuration file: %v", writeError)
	}

	repositoryDirectory := filepath.Join(workingDirectory, "repo")
	if mkdirError := os.MkdirAll(repositoryDirectory, 0o755); mkdirError != nil {
		testingInstance.Fatalf("creating repository directory: %v", mkdirError)
	}
	if writeError := os.WriteFile(filepath.Join(repositoryDirectory, "readme.md"), []byte("dropped"), 0o644); writeError != nil {
		testingInstance.Fatalf("writing fixture file: %v", writeError)
	}
	if writeError := os.WriteFile(filepath.Join(repositoryDirectory, "app.js"), []byte("kept under custom policy"), 0o644); writeError != nil {
		testingInstance.Fatalf("writing fixture file: %v", writeError)
	}
	outputPath := filepath.Join(workingDirectory, "snapshot.json")

	if executeError := runRootCommand(testingInstance, workingDirectory, []string{"snapshot", repositoryDirectory, outputPath}); executeError != nil {
		testingInstance.Fatalf("snapshot command returned error: %v", executeError)
	}

	writtenBytes, readError := os.ReadFile(outputPath)
	if readError != nil {
		testingInstance.Fatalf("reading output file: %v", readError)
	}
	var decodedDocument map[string]any
	if unmarshalError := json.Unmarshal(writtenBytes, &decodedDocument); unmarshalError != nil {
		testingInstance.Fatalf("decoding output file: %v", unmarshalError)
	}
	expectedDocument := map[string]any{
		"app.js": "kept under custom policy",
	}
	if !reflect.DeepEqual(decodedDocument, expectedDocument) {
		testingInstance.Fatalf("expected %v, got %v", expectedDocument, decodedDocument)
	}
}

// TestKeyCheckCommandRequiresCredentials verifies that keycheck fails when no
// key is available from flags or the environment.
func TestKeyCheckCommandRequiresCredentials(testingInstance *testing.T) {
	workingDirectory := testingInstance.TempDir()
	testingInstance.Setenv("OPENAI_API_KEY", "")
	testingInstance.Setenv("PERPLEXITY_API_KEY", "")

	if executeError := runRootCommand(testingInstance, workingDirectory, []string{"keycheck"}); executeError == nil {
		testingInstance.Fatalf("expected error when no API keys are provided")
	}
}
