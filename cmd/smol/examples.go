package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.creack.net/smol/asm"
	"go.creack.net/smol/assets"
)

var examplesRun bool

var examplesCmd = &cobra.Command{
	Use:   "examples [name]",
	Short: "List, print or run the bundled examples",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, name := range assets.Names() {
				fmt.Fprintln(w, name)
			}
			return nil
		}

		src, err := assets.Source(args[0])
		if err != nil {
			return fmt.Errorf("unknown example %q", args[0])
		}
		if !examplesRun {
			_, _ = w.Write(src)
			return nil
		}

		f, _, err := asm.Compile(args[0]+".s", string(src))
		if err != nil {
			return err
		}
		m, err := newMachine(cmd)
		if err != nil {
			return err
		}
		if err := m.Load(f); err != nil {
			return err
		}
		return finish(cmd, m, m.Run())
	},
}

func init() {
	examplesCmd.Flags().BoolVar(&examplesRun, "run", false, "run the example")
	addRunFlags(examplesCmd)
	rootCmd.AddCommand(examplesCmd)
}
