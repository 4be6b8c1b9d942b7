package config

const (
	UserConfigDirectoryNotFoundErrorMessage = "user config directory not found"
	UserCacheDirectoryNotFoundErrorMessage  = "user cache directory not found"

	DuskCLIConfigDirectory = "dusk"
	DuskCLIConfigFile      = "preferences.yaml"

	DuskCacheDirectory = "dusk"
	DuskCacheFile       = "dusk.sqlite"
)
