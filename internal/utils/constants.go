package utils

const (
	// ConfigFileName is the name of the local configuration file.
	ConfigFileName = ".repojson.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration file.
	GlobalConfigDirectoryName = ".repojson"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"

	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal application errors.
	ApplicationExecutionFailedMessage = "application execution failed"
)
