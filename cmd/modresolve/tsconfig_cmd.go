package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modresolve/modresolve/internal/tsconfig"
)

type tsconfigOutput struct {
	AbsPath         string              `json:"absPath"`
	BaseURL         string              `json:"baseUrl,omitempty"`
	Paths           map[string][]string `json:"paths,omitempty"`
	References      string              `json:"references"`
	ReferenceDirs   []string            `json:"referenceDirs,omitempty"`
	ExtendsChain    []string            `json:"extendsChain,omitempty"`
}

func newTsconfigCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "tsconfig <path>",
		Short: "Print a tsconfig.json fully resolved through its \"extends\" chain, as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			ldr := tsconfig.NewLoader(readFileRaw, resolveExtendsOnDisk)
			cfg, err := ldr.Load(absPath)
			if err != nil {
				return err
			}

			out := tsconfigOutput{
				AbsPath:       cfg.AbsPath,
				References:    referencesModeName(cfg.References),
				ReferenceDirs: cfg.ReferenceDirs,
				ExtendsChain:  cfg.ExtendsChain,
			}
			if cfg.BaseURL != nil {
				out.BaseURL = *cfg.BaseURL
			}
			if cfg.Paths != nil {
				out.Paths = make(map[string][]string, len(cfg.Paths.Map))
				for pattern, fallbacks := range cfg.Paths.Map {
					texts := make([]string, len(fallbacks))
					for i, f := range fallbacks {
						texts[i] = f.Text
					}
					out.Paths[pattern] = texts
				}
			}

			enc, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(enc))
			return nil
		},
	}
}

func referencesModeName(m tsconfig.ReferencesMode) string {
	switch m {
	case tsconfig.ReferencesExplicit:
		return "explicit"
	case tsconfig.ReferencesDisabled:
		return "disabled"
	default:
		return "auto"
	}
}

func readFileRaw(absPath string) (string, error) {
	b, err := os.ReadFile(absPath)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// resolveExtendsOnDisk resolves an "extends" specifier the same way
// the library's resolver does, but against the plain OS file system
// with no node_modules package-entry-point lookup beyond a bare
// "tsconfig.json" at the package root, since this command has no
// Resolver of its own to delegate to.
func resolveExtendsOnDisk(fromDir string, spec string) (string, bool) {
	candidates := []string{
		filepath.Join(fromDir, spec),
		filepath.Join(fromDir, spec+".json"),
		filepath.Join(fromDir, "node_modules", spec, "tsconfig.json"),
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}
