// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deeplifeai/repojson/internal/config"
	"github.com/deeplifeai/repojson/internal/keycheck"
	"github.com/deeplifeai/repojson/internal/output"
	"github.com/deeplifeai/repojson/internal/snapshot"
	"github.com/deeplifeai/repojson/internal/tokenizer"
	"github.com/deeplifeai/repojson/internal/types"
	"github.com/deeplifeai/repojson/internal/utils"
)

const (
	configFlagName      = "config"
	versionFlagName     = "version"
	excludeDirFlagName  = "exclude-dir"
	excludeDirFlagShort = "e"
	excludeFileFlagName = "exclude-file"
	excludeExtFlagName  = "exclude-ext"
	tokensFlagName      = "tokens"
	modelFlagName       = "model"
	copyFlagName        = "copy"
	openAIKeyFlagName   = "openai-key"
	perplexityFlagName  = "perplexity-key"
	timeoutFlagName     = "timeout"

	versionTemplate      = "repojson version: %s\n"
	rootUse              = "repojson"
	rootShortDescription = "repojson command line interface"
	rootLongDescription  = `repojson serializes a repository into a single JSON document.
It walks a directory tree, prunes excluded directories, skips excluded and
binary files, and writes the filtered hierarchy with file contents as leaves.
Use repojson keycheck to validate chat-completion API credentials.`
	versionFlagDescription = "display application version"
	configFlagDescription  = "path to a configuration file"

	snapshotUse              = "snapshot <repo_path> <output_file>"
	snapshotAlias            = "s"
	snapshotShortDescription = "serialize a repository to JSON (" + snapshotAlias + ")"
	snapshotLongDescription  = `Serialize the filtered contents of a repository into one JSON document.
Directories become nested objects, surviving files become string values.`
	snapshotUsageExample = `  # Snapshot the current repository
  repojson snapshot . repo.json

  # Exclude an extra directory and copy the document to the clipboard
  repojson snapshot -e vendor --copy . repo.json`

	keyCheckUse              = "keycheck"
	keyCheckAlias            = "k"
	keyCheckShortDescription = "validate chat-completion API keys (" + keyCheckAlias + ")"
	keyCheckLongDescription  = `Validate OpenAI and Perplexity API keys with one probe request each.
Keys are read from flags or from the OPENAI_API_KEY and PERPLEXITY_API_KEY
environment variables; a .env file in the working directory is honored.`
	keyCheckUsageExample = `  # Check both keys from the environment
  repojson keycheck

  # Check an explicit OpenAI key with a shorter timeout
  repojson keycheck --openai-key sk-... --timeout 5`

	excludeDirFlagDescription  = "additional directory basename to prune"
	excludeFileFlagDescription = "additional file basename to skip"
	excludeExtFlagDescription  = "additional file name suffix to skip"
	tokensFlagDescription      = "log the estimated token count of the snapshot"
	modelFlagDescription       = "tokenizer model used for token counting"
	copyFlagDescription        = "copy the snapshot document to the clipboard"
	openAIKeyFlagDescription   = "OpenAI API key to validate"
	perplexityFlagDescription  = "Perplexity API key to validate"
	timeoutFlagDescription     = "per-request timeout in seconds"

	defaultTokenizerModelName = "gpt-4o"
	defaultKeyCheckTimeout    = 10

	openAIKeyEnvironmentName     = "OPENAI_API_KEY"
	perplexityKeyEnvironmentName = "PERPLEXITY_API_KEY"

	snapshotConfirmationFormat = "Repository JSON created at %s\n"
	keyCheckVerdictValid       = "valid"
	keyCheckVerdictInvalid     = "invalid"
	keyCheckVerdictFormat      = "%s API key (%s): %s\n"
	keyCheckDetailFormat       = "%s API key (%s): %s (%s)\n"

	snapshotWrittenMessage   = "snapshot written"
	tokenEstimateMessage     = "estimated snapshot tokens"
	warningClipboardMessage  = "failed to copy snapshot to clipboard"
	warningTokenCountMessage = "failed to count snapshot tokens"

	outputPathLogField = "output"
	digestLogField     = "digest"
	tokensLogField     = "tokens"
	modelLogField      = "model"

	// errorNoAPIKeysMessage reports that keycheck has nothing to validate.
	errorNoAPIKeysMessage = "no API keys provided"
	// configurationLoadErrorFormat reports a configuration loading failure.
	configurationLoadErrorFormat = "loading configuration: %w"
)

// Execute runs the repojson application.
func Execute(loggerInstance *zap.Logger) error {
	rootCommand := NewRootCommand(loggerInstance)
	return rootCommand.Execute()
}

// NewRootCommand builds the root Cobra command and its subcommands.
func NewRootCommand(loggerInstance *zap.Logger) *cobra.Command {
	if loggerInstance == nil {
		loggerInstance = zap.NewNop()
	}
	var showVersion bool
	var configFilePath string

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&configFilePath, configFlagName, "", configFlagDescription)
	rootCommand.AddCommand(
		createSnapshotCommand(loggerInstance, &configFilePath),
		createKeyCheckCommand(&configFilePath),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// exclusionOptions stores flag-provided additions to the exclusion policy.
type exclusionOptions struct {
	directories []string
	files       []string
	extensions  []string
}

// createSnapshotCommand returns the snapshot subcommand.
func createSnapshotCommand(loggerInstance *zap.Logger, configFilePath *string) *cobra.Command {
	var exclusionConfiguration exclusionOptions
	var tokensEnabled bool
	var tokenizerModel string = defaultTokenizerModelName
	var copyToClipboard bool

	snapshotCommand := &cobra.Command{
		Use:     snapshotUse,
		Aliases: []string{snapshotAlias},
		Short:   snapshotShortDescription,
		Long:    snapshotLongDescription,
		Example: snapshotUsageExample,
		Args:    cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, arguments []string) error {
			applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
				ExplicitFilePath: *configFilePath,
			})
			if configurationError != nil {
				return fmt.Errorf(configurationLoadErrorFormat, configurationError)
			}

			exclusionPolicy := resolveExclusionPolicy(applicationConfiguration.Snapshot.Exclude, exclusionConfiguration)

			if !command.Flags().Changed(tokensFlagName) && applicationConfiguration.Snapshot.Tokens.Enabled != nil {
				tokensEnabled = *applicationConfiguration.Snapshot.Tokens.Enabled
			}
			if !command.Flags().Changed(modelFlagName) && applicationConfiguration.Snapshot.Tokens.Model != "" {
				tokenizerModel = applicationConfiguration.Snapshot.Tokens.Model
			}
			if !command.Flags().Changed(copyFlagName) && applicationConfiguration.Snapshot.Clipboard != nil {
				copyToClipboard = *applicationConfiguration.Snapshot.Clipboard
			}

			return runSnapshot(loggerInstance, arguments[0], arguments[1], exclusionPolicy, tokensEnabled, tokenizerModel, copyToClipboard)
		},
	}

	snapshotCommand.Flags().StringArrayVarP(&exclusionConfiguration.directories, excludeDirFlagName, excludeDirFlagShort, nil, excludeDirFlagDescription)
	snapshotCommand.Flags().StringArrayVar(&exclusionConfiguration.files, excludeFileFlagName, nil, excludeFileFlagDescription)
	snapshotCommand.Flags().StringArrayVar(&exclusionConfiguration.extensions, excludeExtFlagName, nil, excludeExtFlagDescription)
	snapshotCommand.Flags().BoolVar(&tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	snapshotCommand.Flags().StringVar(&tokenizerModel, modelFlagName, defaultTokenizerModelName, modelFlagDescription)
	snapshotCommand.Flags().BoolVar(&copyToClipboard, copyFlagName, false, copyFlagDescription)
	return snapshotCommand
}

// resolveExclusionPolicy combines the built-in defaults, configuration
// overrides, and flag additions into the effective exclusion policy. A
// non-empty configured list replaces the corresponding default set; flag
// values always append.
func resolveExclusionPolicy(configured config.ExclusionConfiguration, flagProvided exclusionOptions) snapshot.ExclusionPolicy {
	exclusionPolicy := snapshot.DefaultExclusionPolicy()
	if len(configured.Directories) > 0 {
		exclusionPolicy.Directories = append([]string{}, configured.Directories...)
	}
	if len(configured.Files) > 0 {
		exclusionPolicy.Files = append([]string{}, configured.Files...)
	}
	if len(configured.Extensions) > 0 {
		exclusionPolicy.Extensions = append([]string{}, configured.Extensions...)
	}
	exclusionPolicy.Directories = utils.AppendUniquePatterns(exclusionPolicy.Directories, flagProvided.directories)
	exclusionPolicy.Files = utils.AppendUniquePatterns(exclusionPolicy.Files, flagProvided.files)
	exclusionPolicy.Extensions = utils.AppendUniquePatterns(exclusionPolicy.Extensions, flagProvided.extensions)
	return exclusionPolicy
}

// runSnapshot builds the snapshot tree, writes the JSON document, and applies
// the optional token count and clipboard steps.
func runSnapshot(
	loggerInstance *zap.Logger,
	repositoryPath string,
	outputPath string,
	exclusionPolicy snapshot.ExclusionPolicy,
	tokensEnabled bool,
	tokenizerModel string,
	copyToClipboard bool,
) error {
	snapshotBuilder := snapshot.NewBuilder(exclusionPolicy, loggerInstance)
	snapshotTree, buildError := snapshotBuilder.Build(repositoryPath)
	if buildError != nil {
		return buildError
	}

	serializedDocument, writeError := output.WriteSnapshot(snapshotTree, outputPath)
	if writeError != nil {
		return writeError
	}

	loggerInstance.Info(snapshotWrittenMessage,
		zap.String(outputPathLogField, outputPath),
		zap.String(digestLogField, output.SnapshotDigest(serializedDocument)),
	)

	if tokensEnabled {
		tokenCounter, resolvedModel, counterError := tokenizer.NewCounter(tokenizerModel)
		if counterError != nil {
			loggerInstance.Warn(warningTokenCountMessage, zap.Error(counterError))
		} else if tokenCount, countError := tokenCounter.CountString(string(serializedDocument)); countError != nil {
			loggerInstance.Warn(warningTokenCountMessage, zap.Error(countError))
		} else {
			loggerInstance.Info(tokenEstimateMessage,
				zap.Int(tokensLogField, tokenCount),
				zap.String(modelLogField, resolvedModel),
			)
		}
	}

	if copyToClipboard {
		if clipboardError := clipboard.WriteAll(string(serializedDocument)); clipboardError != nil {
			loggerInstance.Warn(warningClipboardMessage, zap.Error(clipboardError))
		}
	}

	fmt.Printf(snapshotConfirmationFormat, outputPath)
	return nil
}

// createKeyCheckCommand returns the keycheck subcommand.
func createKeyCheckCommand(configFilePath *string) *cobra.Command {
	var openAIKey string
	var perplexityKey string
	var timeoutSeconds int = defaultKeyCheckTimeout

	keyCheckCommand := &cobra.Command{
		Use:     keyCheckUse,
		Aliases: []string{keyCheckAlias},
		Short:   keyCheckShortDescription,
		Long:    keyCheckLongDescription,
		Example: keyCheckUsageExample,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
				ExplicitFilePath: *configFilePath,
			})
			if configurationError != nil {
				return fmt.Errorf(configurationLoadErrorFormat, configurationError)
			}
			if !command.Flags().Changed(timeoutFlagName) && applicationConfiguration.KeyCheck.TimeoutSeconds != nil {
				timeoutSeconds = *applicationConfiguration.KeyCheck.TimeoutSeconds
			}

			_ = godotenv.Load()
			if openAIKey == "" {
				openAIKey = strings.TrimSpace(os.Getenv(openAIKeyEnvironmentName))
			}
			if perplexityKey == "" {
				perplexityKey = strings.TrimSpace(os.Getenv(perplexityKeyEnvironmentName))
			}

			var credentials []keycheck.Credential
			if openAIKey != "" {
				credentials = append(credentials, keycheck.Credential{Provider: keycheck.OpenAIProvider(), APIKey: openAIKey})
			}
			if perplexityKey != "" {
				credentials = append(credentials, keycheck.Credential{Provider: keycheck.PerplexityProvider(), APIKey: perplexityKey})
			}
			if len(credentials) == 0 {
				return fmt.Errorf(errorNoAPIKeysMessage)
			}

			checker := keycheck.NewChecker(time.Duration(timeoutSeconds) * time.Second)
			results := checker.CheckAll(command.Context(), credentials)
			printKeyCheckResults(credentials, results)
			return nil
		},
	}

	keyCheckCommand.Flags().StringVar(&openAIKey, openAIKeyFlagName, "", openAIKeyFlagDescription)
	keyCheckCommand.Flags().StringVar(&perplexityKey, perplexityFlagName, "", perplexityFlagDescription)
	keyCheckCommand.Flags().IntVar(&timeoutSeconds, timeoutFlagName, defaultKeyCheckTimeout, timeoutFlagDescription)
	return keyCheckCommand
}

// printKeyCheckResults prints one verdict line per credential with the key masked.
func printKeyCheckResults(credentials []keycheck.Credential, results []types.KeyCheckResult) {
	for resultIndex, result := range results {
		maskedKey := keycheck.MaskKey(credentials[resultIndex].APIKey)
		verdict := keyCheckVerdictInvalid
		if result.Valid {
			verdict = keyCheckVerdictValid
		}
		if result.Message != "" && !result.Valid {
			fmt.Printf(keyCheckDetailFormat, result.ProviderName, maskedKey, verdict, result.Message)
			continue
		}
		fmt.Printf(keyCheckVerdictFormat, result.ProviderName, maskedKey, verdict)
	}
}
