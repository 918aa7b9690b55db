package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.creack.net/smol/cli"
	"go.creack.net/smol/smolfile"
)

var (
	asmOutput      string
	asmPrettyPrint bool
)

var asmCmd = &cobra.Command{
	Use:   "asm source.s",
	Short: "Assemble a source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := cli.LoadProgram(args[0])
		if err != nil {
			return err
		}
		if p.Source == nil {
			return fmt.Errorf("%q is not a source file", args[0])
		}
		if asmPrettyPrint {
			fmt.Fprint(cmd.OutOrStdout(), p.Source.PrettyPrint())
			return nil
		}

		output := asmOutput
		if output == "" {
			output = cli.OutputPath(args[0], cfg.Asm.OutputExt)
		}
		if err := smolfile.WriteFile(output, p.File); err != nil {
			return err
		}
		log.Noticef("wrote %s: %d bytes of code, %d bytes of variables", output, len(p.File.Instructions), p.File.VariableSize())
		return nil
	},
}

func init() {
	asmCmd.Flags().StringVarP(&asmOutput, "output", "o", "", "output file, defaults to the source name with the configured extension")
	asmCmd.Flags().BoolVarP(&asmPrettyPrint, "pretty", "p", false, "print the formatted source instead of assembling")
	rootCmd.AddCommand(asmCmd)
}
