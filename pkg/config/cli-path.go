package config

import (
	"errors"
	"os"
	"path/filepath"
)

var UserConfigDirectory = os.UserConfigDir

func CliPath() (cliConfigDir string, cliConfigFile string, err error) {
	userConfigDir, err := UserConfigDirectory()
	if err != nil {
		return "", "", errors.New(UserConfigDirectoryNotFoundErrorMessage)
	}
	cliConfigDir = filepath.Join(userConfigDir, DuskCLIConfigDirectory)
	cliConfigFile = filepath.Join(cliConfigDir, DuskCLIConfigFile)
	return cliConfigDir, cliConfigFile, nil
}
