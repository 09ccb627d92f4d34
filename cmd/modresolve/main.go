// Command modresolve exercises the resolver library from the shell:
// resolving one specifier, or dumping a fully extended tsconfig, as
// JSON for scripting and debugging extends/paths chains.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "modresolve",
		Short:        "Node/TypeScript-compatible module resolution from the command line",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "path to a .modresolve.yaml config file")
	root.PersistentFlags().StringSlice("extensions", nil, "extension order tried after an exact match fails")
	root.PersistentFlags().StringSlice("main-fields", nil, "package.json main fields tried in order")
	root.PersistentFlags().StringSlice("conditions", nil, "extra active export/import conditions")
	root.PersistentFlags().StringSlice("alias-fields", nil, "package.json fields treated as browser-style alias maps")
	root.PersistentFlags().StringToString("alias", nil, "specifier=target alias pairs")
	root.PersistentFlags().StringToString("fallback", nil, "specifier=target fallback pairs, tried after normal resolution fails")
	root.PersistentFlags().StringSlice("roots", nil, "directories that absolute specifiers are restricted to")
	root.PersistentFlags().String("tsconfig", "", "explicit tsconfig.json path")
	root.PersistentFlags().Bool("no-symlinks", false, "don't resolve symlinks to their real path")
	root.PersistentFlags().Bool("builtin-modules", false, "fail bare specifiers that name a Node builtin instead of searching node_modules")
	root.PersistentFlags().Bool("verbose", false, "print a line for each tsconfig that fails to load")

	v := viper.New()
	v.SetConfigName(".modresolve")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	bindConfigFlags(v, root)

	root.AddCommand(newResolveCmd(v), newTsconfigCmd(v))
	return root
}

// bindConfigFlags wires every persistent flag to viper so that a value
// set in .modresolve.yaml is used whenever the corresponding flag
// wasn't passed on the command line, flags always taking priority.
func bindConfigFlags(v *viper.Viper, root *cobra.Command) {
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cfgPath, _ := cmd.Flags().GetString("config"); cfgPath != "" {
			v.SetConfigFile(cfgPath)
		}
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return err
			}
		}
		return v.BindPFlags(cmd.Flags())
	}
}
