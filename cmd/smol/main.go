// Command smol assembles, runs and inspects smol programs.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	"github.com/tliron/kutil/util"

	"go.creack.net/smol/cli"
	"go.creack.net/smol/vm"
)

var log = commonlog.GetLogger("smol.cli")

var (
	cfg       *cli.Config
	verbosity int
)

var rootCmd = &cobra.Command{
	Use:   "smol",
	Short: "The smol assembler and virtual machine",
	Long: `Smol is a small 8/16 bits instruction set.

The asm command compiles a .s source into a .smol file, run executes a
source or compiled program and disasm turns a compiled program back into
assembly. Settings are read from the closest smol.toml file.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		if cfg, err = cli.FindAndLoad(wd); err != nil {
			return err
		}
		if cmd.Flags().Changed("verbose") {
			cfg.Log.Verbosity = verbosity
		}
		cli.ConfigureLogging(cfg.Log)
		if cfg.Path != "" {
			log.Debugf("loaded %s", cfg.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&verbosity, "verbose", "v", 1, "log verbosity, 0 disables logging")
}

func main() {
	util.Exit(exitCode(rootCmd.Execute()))
}

// exitCode maps a command error to the process status. A halted program
// exits with the status it passed to exit.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *vm.ExitError
	if errors.As(err, &exit) {
		return exit.Status
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	return 1
}
