package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modresolve/modresolve/internal/fs"
	resolver "github.com/modresolve/modresolve"
)

type resolveOutput struct {
	Path            string `json:"path"`
	Query           string `json:"query,omitempty"`
	Fragment        string `json:"fragment,omitempty"`
	PackageJSONPath string `json:"packageJsonPath,omitempty"`
	ModuleType      string `json:"moduleType"`
}

func newResolveCmd(v *viper.Viper) *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "resolve <dir> <specifier>",
		Short: "Resolve one specifier from a directory and print the result as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, spec := args[0], args[1]

			opts := optionsFromConfig(v)
			r := resolver.NewResolver(opts)

			kind := resolver.KindRequire
			if kindFlag == "import" {
				kind = resolver.KindImport
			}

			res, err := r.Resolve(dir, spec, kind)
			if err != nil {
				return err
			}

			out := resolveOutput{
				Path:            res.Path,
				Query:           res.Query,
				Fragment:        res.Fragment,
				PackageJSONPath: res.PackageJSONPath,
				ModuleType:      moduleTypeName(res.ModuleType),
			}
			enc, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(enc))
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "require", `module kind driving the active condition set: "require" or "import"`)
	return cmd
}

func moduleTypeName(t resolver.ModuleType) string {
	switch t {
	case resolver.ModuleTypeCommonJS:
		return "commonjs"
	case resolver.ModuleTypeModule:
		return "module"
	case resolver.ModuleTypeJSON:
		return "json"
	default:
		return "unknown"
	}
}

// optionsFromConfig builds ResolveOptions from whatever viper resolved
// across flags and .modresolve.yaml, always rooted at the real OS file
// system.
func optionsFromConfig(v *viper.Viper) resolver.ResolveOptions {
	opts := resolver.ResolveOptions{
		FS:             fs.RealFS(),
		ExtensionOrder: v.GetStringSlice("extensions"),
		MainFields:     v.GetStringSlice("main-fields"),
		Conditions:     v.GetStringSlice("conditions"),
		AliasFields:    v.GetStringSlice("alias-fields"),
		Alias:          v.GetStringMapString("alias"),
		Fallback:       v.GetStringMapString("fallback"),
		Roots:          v.GetStringSlice("roots"),
		Tsconfig:       v.GetString("tsconfig"),
		Symlinks:       !v.GetBool("no-symlinks"),
		BuiltinModules: v.GetBool("builtin-modules"),
	}
	if v.GetBool("verbose") {
		opts.Log = func(line string) { fmt.Println(line) }
	}
	return opts
}
