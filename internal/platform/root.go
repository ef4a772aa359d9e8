package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProfileName is the file FindProfile looks for.
const ProfileName = "odf.toml"

// FindProfile looks upwards from startDir for an odf.toml profile.
// Returns the absolute path of the first one found.
func FindProfile(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ProfileName) {
			return filepath.Join(dir, ProfileName), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("profile not found")
}

func hasFile(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && !info.IsDir()
}
