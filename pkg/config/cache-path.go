package config

import (
	"errors"
	"os"
	"path/filepath"
)

// UserCacheDirectory is a package-level function variable wrapping
// os.UserCacheDir so tests can substitute a fake cache root.
var UserCacheDirectory = os.UserCacheDir

// CacheDBPath resolves the SQLite cache file's directory and full path:
// <UserCacheDir>/dusk/dusk.sqlite.
func CacheDBPath() (dbDir string, dbFile string, err error) {
	userCacheDir, err := UserCacheDirectory()
	if err != nil {
		return "", "", errors.New(UserCacheDirectoryNotFoundErrorMessage)
	}
	dbDir = filepath.Join(userCacheDir, DuskCacheDirectory)
	dbFile = filepath.Join(dbDir, DuskCacheFile)
	return dbDir, dbFile, nil
}
