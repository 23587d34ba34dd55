package file

import "os"

// Exists returns true if there is a file or directory at the specified path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
