// Package assets embeds the example programs.
package assets

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed examples/*.s
var examples embed.FS

// Examples is the example sources, at the root of the FS.
var Examples fs.FS

func init() {
	sub, err := fs.Sub(examples, "examples")
	if err != nil {
		panic(err)
	}
	Examples = sub
}

// Names lists the examples, without extension.
func Names() []string {
	entries, err := fs.ReadDir(Examples, ".")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".s") {
			out = append(out, strings.TrimSuffix(e.Name(), ".s"))
		}
	}
	sort.Strings(out)
	return out
}

// Source returns the example source.
func Source(name string) ([]byte, error) {
	return fs.ReadFile(Examples, path.Clean(name)+".s")
}
