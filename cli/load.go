package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.creack.net/smol/asm"
	"go.creack.net/smol/asm/parser"
	"go.creack.net/smol/smolfile"
)

// Program is a loaded program.
type Program struct {
	PathName  string
	ShortName string

	File   *smolfile.File
	Source *parser.Parser // Nil when loaded from a compiled file.
}

// LoadProgram compiles a .s file or reads a compiled file.
func LoadProgram(pathName string) (*Program, error) {
	p := &Program{
		PathName:  pathName,
		ShortName: strings.TrimSuffix(filepath.Base(pathName), filepath.Ext(pathName)),
	}

	if strings.HasSuffix(pathName, ".s") {
		data, err := os.ReadFile(pathName)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %q: %w", pathName, err)
		}
		f, src, err := asm.Compile(pathName, string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to compile %q: %w", pathName, err)
		}
		p.File, p.Source = f, src
		return p, nil
	}

	f, err := smolfile.ReadFile(pathName)
	if err != nil {
		return nil, err
	}
	p.File = f
	return p, nil
}

// OutputPath returns the compiled file path for a source file.
func OutputPath(src, ext string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + ext
}
