package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.creack.net/smol/cli"
	"go.creack.net/smol/op"
	"go.creack.net/smol/vm"
)

var (
	snapshotResume bool
	snapshotStack  bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot file",
	Short: "Inspect or resume a machine snapshot",
	Long: `Snapshot prints the registers and the variable region of a snapshot
written by run --dump. With --resume, the machine continues from there.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}

		s, err := vm.DecodeSnapshot(data)
		if err != nil {
			return err
		}

		if snapshotResume {
			bridge, err := newBridge(cmd)
			if err != nil {
				return err
			}
			m, err := vm.Restore(data, bridge)
			if err != nil {
				return err
			}
			m.Trace = cfg.VM.Trace || runTrace
			log.Infof("resuming at 0x%04x after %d steps", s.Registers.IC, s.Steps)
			return finish(cmd, m, m.Run())
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "steps: %d, code: %d bytes\n%s\n", s.Steps, len(s.Code), s.Registers)
		if snapshotStack {
			fmt.Fprint(w, "\nstack:")
			cli.Dump(w, s.Memory[:op.StackSize], 0, int(s.Registers.SP), true)
		}
		fmt.Fprint(w, "\nvariables:")
		cli.Dump(w, s.Memory[op.VariableBase:], op.VariableBase, int(s.Registers.VP), true)
		return nil
	},
}

func init() {
	snapshotCmd.Flags().BoolVar(&snapshotResume, "resume", false, "resume the machine")
	snapshotCmd.Flags().BoolVarP(&snapshotStack, "stack", "s", false, "also dump the stack region")
	addRunFlags(snapshotCmd)
	rootCmd.AddCommand(snapshotCmd)
}
