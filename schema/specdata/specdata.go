// Package specdata bundles the DataCite JSON Schema documents so they can be
// compiled without access to the network or the filesystem.
package specdata

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

//go:embed schemas/*.json
var files embed.FS

// Asset returns the contents of the named file, e.g.
// "schemas/datacite-v4.6.json".
func Asset(name string) ([]byte, error) {
	blob, err := files.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("asset %s not found: %v", name, err)
	}
	return blob, nil
}

// MustAsset is like Asset but panics when the asset can not be found.
func MustAsset(name string) []byte {
	blob, err := Asset(name)
	if err != nil {
		panic(err)
	}
	return blob
}

// AssetNames returns the names of all the assets, sorted.
func AssetNames() []string {
	var names []string
	_ = fs.WalkDir(files, ".", func(p string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			names = append(names, p)
		}
		return nil
	})
	sort.Strings(names)
	return names
}

// SchemaAssetName returns the asset name of the schema of a DataCite version.
func SchemaAssetName(version string) string {
	return path.Join("schemas", fmt.Sprintf("datacite-v%s.json", version))
}
