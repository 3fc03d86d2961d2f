// Package cmd provides the init, list and run subcommands.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"

	// PluginDirIdentifier is the kong variable identifier containing the
	// default namespace manifest directory.
	PluginDirIdentifier = "pluginDir"
)
