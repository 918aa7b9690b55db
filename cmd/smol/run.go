package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.creack.net/smol/cli"
	"go.creack.net/smol/sysbridge"
	"go.creack.net/smol/vm"
)

var (
	runTrace  bool
	runBridge string
	runDump   string
	runRegs   bool
)

var runCmd = &cobra.Command{
	Use:   "run program",
	Short: "Run a source or compiled program",
	Long: `Run executes the program until it halts, faults or exits.

The program exit status is forwarded. A fault exits with status 1.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := cli.LoadProgram(args[0])
		if err != nil {
			return err
		}
		m, err := newMachine(cmd)
		if err != nil {
			return err
		}
		if err := m.Load(p.File); err != nil {
			return err
		}
		return finish(cmd, m, m.Run())
	},
}

// newBridge returns the bridge from the flags or the configuration.
func newBridge(cmd *cobra.Command) (vm.Bridge, error) {
	name := cfg.VM.Bridge
	if cmd.Flags().Changed("bridge") {
		name = runBridge
	}
	return sysbridge.New(name)
}

// newMachine creates a machine with the configured bridge and tracing.
func newMachine(cmd *cobra.Command) (*vm.Machine, error) {
	bridge, err := newBridge(cmd)
	if err != nil {
		return nil, err
	}
	m := vm.New(bridge)
	m.Trace = cfg.VM.Trace || runTrace
	return m, nil
}

// finish reports the run outcome and writes the requested snapshot.
func finish(cmd *cobra.Command, m *vm.Machine, runErr error) error {
	if runRegs {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", m.Regs)
	}
	if runDump != "" {
		data, err := m.Snapshot()
		if err != nil {
			return err
		}
		if err := os.WriteFile(runDump, data, 0o644); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		log.Infof("snapshot written to %s", runDump)
	}
	if runErr != nil {
		return runErr
	}
	log.Infof("halted after %d steps", m.Steps)
	return nil
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&runTrace, "trace", "t", false, "log every instruction")
	cmd.Flags().StringVarP(&runBridge, "bridge", "b", sysbridge.NameUnix, "syscall bridge: unix or stdio")
	cmd.Flags().StringVarP(&runDump, "dump", "d", "", "write a snapshot of the machine to this file when done")
	cmd.Flags().BoolVarP(&runRegs, "registers", "r", false, "print the registers when done")
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
