package bench

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// manifestFile is the declarative manifest naming the engine package.
const manifestFile = "Cargo.toml"

// cargoManifest extracts just the package name from the workspace manifest.
type cargoManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
}

// ManifestBinaryName reads the engine binary name from the workspace
// manifest. Parse failure is reported to the caller as an
// artifact-missing-class condition, never a crash.
func ManifestBinaryName(workspace string) (string, error) {
	data, err := os.ReadFile(filepath.Join(workspace, manifestFile))
	if err != nil {
		return "", fmt.Errorf("read manifest: %w", err)
	}

	var manifest cargoManifest

	unmarshalErr := toml.Unmarshal(data, &manifest)
	if unmarshalErr != nil {
		return "", fmt.Errorf("parse manifest: %w", unmarshalErr)
	}

	if manifest.Package.Name == "" {
		return "", fmt.Errorf("parse manifest: %s has no package name", manifestFile)
	}

	return manifest.Package.Name, nil
}
