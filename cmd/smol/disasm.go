package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.creack.net/smol/assets"
	"go.creack.net/smol/disasm"
	"go.creack.net/smol/smolfile"
)

var disasmKnown bool

var disasmCmd = &cobra.Command{
	Use:   "disasm program.smol",
	Short: "Print the assembly of a compiled program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := smolfile.ReadFile(args[0])
		if err != nil {
			return err
		}

		if disasmKnown {
			p, name, err := disasm.FindSource(f, assets.Examples)
			if err != nil {
				return err
			}
			if p != nil {
				log.Noticef("found match in known sources: %s", name)
				fmt.Fprint(cmd.OutOrStdout(), p.PrettyPrint())
				return nil
			}
		}

		p, err := disasm.Disasm(f)
		if err != nil {
			return fmt.Errorf("failed to decode program: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), p.PrettyPrint())
		return nil
	},
}

func init() {
	disasmCmd.Flags().BoolVarP(&disasmKnown, "known", "k", true, "use the original source when the program is a known example")
	rootCmd.AddCommand(disasmCmd)
}
