// Command vm-viewer is a terminal debugger for smol programs.
//
// Keys: n steps, space runs or pauses, [ and ] page the memory, v and k
// jump to the variable pointer and the stack pointer, s writes a
// snapshot, q quits.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	"github.com/tliron/kutil/util"

	"go.creack.net/smol/asm/parser"
	"go.creack.net/smol/cli"
	"go.creack.net/smol/disasm"
	"go.creack.net/smol/op"
	"go.creack.net/smol/sysbridge"
	"go.creack.net/smol/vm"
)

var log = commonlog.GetLogger("smol.viewer")

const (
	memWidth = 16
	memRows  = 64
	memPage  = memWidth * memRows
)

// codeLine is a row of the code view.
type codeLine struct {
	addr int // -1 for labels.
	text string
}

type Debugger struct {
	app *tview.Application

	root *tview.Pages

	codeView   *tview.Table
	memView    *tview.Table
	regsView   *tview.TextView
	outputView *tview.TextView
	logsView   *tview.TextView

	name string
	code []codeLine
	rows map[uint16]int // Instruction address to code row.

	mu      sync.Mutex // Guards the machine and the fields below.
	m       *vm.Machine
	memBase int
	done    bool

	paused   bool
	nextStep bool

	messages chan vm.Message
	quit     chan struct{}
	quitOnce sync.Once
}

func NewDebugger(p *cli.Program, m *vm.Machine) (*Debugger, error) {
	app := tview.NewApplication().EnableMouse(true)

	newTextView := func(title string) *tview.TextView {
		tv := tview.NewTextView().SetDynamicColors(true)
		tv.SetTitle(title).SetBorder(true)
		return tv
	}

	codeView := tview.NewTable().SetBorders(false).SetSelectable(true, false)
	codeView.SetTitle("Code").SetBorder(true)

	memView := tview.NewTable().SetBorders(false)
	memView.SetBorder(true)

	regsView := newTextView("Registers")
	outputView := newTextView("Output")
	outputView.SetDynamicColors(false)
	logsView := newTextView("Messages")
	logsView.ScrollToEnd()

	rightPane := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(regsView, 0, 2, false).
		AddItem(outputView, 0, 3, false).
		AddItem(logsView, 0, 3, false)

	flex := tview.NewFlex().
		AddItem(codeView, 0, 2, false).
		AddItem(memView, 0, 3, true).
		AddItem(rightPane, 0, 2, false)

	pages := tview.NewPages()
	pages.AddPage("main", flex, true, true)

	d := &Debugger{
		app:  app,
		root: pages,

		codeView:   codeView,
		memView:    memView,
		regsView:   regsView,
		outputView: outputView,
		logsView:   logsView,

		name:    p.ShortName,
		rows:    map[uint16]int{},
		m:       m,
		memBase: op.VariableBase,
		paused:  true,

		messages: make(chan vm.Message, 256),
		quit:     make(chan struct{}),
	}

	if err := d.loadCode(p); err != nil {
		return nil, err
	}
	if s, ok := m.Bridge.(*sysbridge.Stdio); ok {
		s.In, s.Out, s.Err = nil, outputView, outputView
	}
	m.Hook = d.hook
	return d, nil
}

// loadCode disassembles the program for the code view.
func (d *Debugger) loadCode(p *cli.Program) error {
	prog, err := disasm.Disasm(p.File)
	if err != nil {
		return fmt.Errorf("failed to disassemble: %w", err)
	}
	addr := 0
	for _, n := range prog.Nodes {
		switch n := n.(type) {
		case *parser.Label:
			d.code = append(d.code, codeLine{addr: -1, text: n.Name + string(op.LabelChar)})
		case *parser.Instruction:
			d.rows[uint16(addr)] = len(d.code)
			d.code = append(d.code, codeLine{addr: addr, text: strings.TrimPrefix(n.PrettyPrint(nil), "\t")})
			addr += n.Size
		}
	}
	for i, line := range d.code {
		if line.addr < 0 {
			d.codeView.SetCell(i, 0, tview.NewTableCell(""))
			d.codeView.SetCell(i, 1, tview.NewTableCell(line.text).SetTextColor(tcell.ColorYellow))
			continue
		}
		d.codeView.SetCell(i, 0, tview.NewTableCell(fmt.Sprintf("%04x", line.addr)).SetTextColor(tcell.ColorDimGray))
		d.codeView.SetCell(i, 1, tview.NewTableCell("  "+line.text))
	}
	return nil
}

// hook runs on the update goroutine, with d.mu held.
func (d *Debugger) hook(msg vm.Message) {
	if msg.Type == vm.MsgStep {
		return
	}
	select {
	case d.messages <- msg:
	default:
		log.Warningf("dropped message: %s", msg)
	}
}

func (d *Debugger) Stop() {
	d.quitOnce.Do(func() { close(d.quit) })
	d.app.Stop()
}

func (d *Debugger) snapshot() {
	d.mu.Lock()
	data, err := d.m.Snapshot()
	d.mu.Unlock()
	if err != nil {
		fmt.Fprintf(d.logsView, "[red]snapshot: %s[-]\n", err)
		return
	}
	path := d.name + ".snapshot"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(d.logsView, "[red]snapshot: %s[-]\n", err)
		return
	}
	fmt.Fprintf(d.logsView, "snapshot written to %s\n", path)
}

func (d *Debugger) Init() {
	f := func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC, tcell.KeyEscape:
			d.Stop()
			return nil
		}

		d.mu.Lock()
		defer d.mu.Unlock()
		switch event.Rune() {
		case 'n':
			d.nextStep = true
		case ' ':
			d.paused = !d.paused
		case '[':
			d.memBase = (d.memBase - memPage + op.MemSize) % op.MemSize
		case ']':
			d.memBase = (d.memBase + memPage) % op.MemSize
		case 'v':
			d.memBase = int(d.m.Regs.VP) / memPage * memPage
		case 'k':
			d.memBase = int(d.m.Regs.SP) / memPage * memPage
		case 's':
			go d.snapshot()
		case 'q':
			go d.Stop()
		default:
			return event
		}
		go d.app.QueueUpdateDraw(d.Draw)
		return nil
	}
	d.root.SetInputCapture(f)

	go func() {
		for {
			select {
			case msg := <-d.messages:
				color := "[-:::]"
				switch msg.Type {
				case vm.MsgFault:
					color = "[red:::]"
				case vm.MsgHalt, vm.MsgExit:
					color = "[green:::]"
				}
				d.app.QueueUpdateDraw(func() {
					fmt.Fprintf(d.logsView, "%s%s[-:::]\n", color, tview.Escape(msg.String()))
				})
			case <-d.quit:
				return
			}
		}
	}()
}

// Update executes an instruction when running or when a step was
// requested. Returns io.EOF once the machine stopped.
func (d *Debugger) Update() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.done {
		return io.EOF
	}
	if !d.nextStep && d.paused {
		return nil
	}
	d.nextStep = false

	if err := d.m.Step(); err != nil {
		d.done = true
		var exit *vm.ExitError
		if errors.Is(err, io.EOF) || errors.As(err, &exit) {
			return io.EOF
		}
		return fmt.Errorf("failed to execute instruction: %w", err)
	}
	return nil
}

func (d *Debugger) drawRegisters() {
	r := d.m.Regs
	d.regsView.Clear()
	for i, v := range r.R {
		fmt.Fprintf(d.regsView, "r%d [yellow]%02x[-]  ", i, v)
		if i%4 == 3 {
			fmt.Fprintln(d.regsView)
		}
	}
	fmt.Fprintf(d.regsView, "\nl0 [yellow]%04x[-]  l1 [yellow]%04x[-]  zr [yellow]%04x[-]\n", r.L0, r.L1, r.ZR)
	fmt.Fprintf(d.regsView, "vp [yellow]%04x[-]  sp [yellow]%04x[-]  cr [yellow]%04x[-]\n", r.VP, r.SP, r.CR)
	fmt.Fprintf(d.regsView, "ic [yellow]%04x[-]  fg [yellow]%03b[-]\n\n", r.IC, r.FG)

	state := "paused"
	switch {
	case d.done:
		state = "stopped"
	case !d.paused:
		state = "running"
	}
	fmt.Fprintf(d.regsView, "Steps: %d (%s)\n", d.m.Steps, state)
}

func (d *Debugger) drawMemory() {
	region := "variables"
	if d.memBase < op.StackSize {
		region = "stack"
	}
	d.memView.SetTitle(fmt.Sprintf("Memory 0x%04x-0x%04x (%s)", d.memBase, d.memBase+memPage-1, region))

	mem := d.m.Mem.Bytes()
	for row := range memRows {
		base := d.memBase + row*memWidth
		d.memView.SetCell(row, 0, tview.NewTableCell(fmt.Sprintf("%04x ", base)).SetTextColor(tcell.ColorDimGray))
		for col := range memWidth {
			addr := base + col
			cell := tview.NewTableCell(fmt.Sprintf("%02x", mem[addr]))
			if mem[addr] == 0 {
				cell.SetTextColor(tcell.ColorDimGray).SetAttributes(tcell.AttrDim)
			}
			switch addr {
			case int(d.m.Regs.SP):
				cell.SetAttributes(tcell.AttrReverse).SetTextColor(tcell.ColorRed)
			case int(d.m.Regs.VP):
				cell.SetAttributes(tcell.AttrReverse).SetTextColor(tcell.ColorGreen)
			}
			d.memView.SetCell(row, col+1, cell)
		}
	}
}

func (d *Debugger) drawCode() {
	if row, ok := d.rows[d.m.Regs.IC]; ok {
		d.codeView.Select(row, 0)
	}
}

// Draw refreshes the views. Runs on the UI goroutine.
func (d *Debugger) Draw() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.drawRegisters()
	d.drawMemory()
	d.drawCode()
}

func run(p *cli.Program, bridgeName string, trace bool) error {
	bridge, err := sysbridge.New(bridgeName)
	if err != nil {
		return err
	}
	m := vm.New(bridge)
	m.Trace = trace
	if err := m.Load(p.File); err != nil {
		return err
	}

	d, err := NewDebugger(p, m)
	if err != nil {
		return err
	}
	d.Init()
	d.Draw()

	go func() {
		defer func() {
			if e := recover(); e != nil {
				d.app.Stop()
				log.Errorf("recovered from panic: %v\n%s", e, debug.Stack())
			}
		}()
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			err := d.Update()
			if err != nil && !errors.Is(err, io.EOF) {
				d.app.QueueUpdateDraw(func() {
					fmt.Fprintf(d.logsView, "[red]%s[-]\n", tview.Escape(err.Error()))
				})
			}
			d.app.QueueUpdateDraw(d.Draw)
			if err != nil {
				return
			}
			select {
			case <-ticker.C:
			case <-d.quit:
				return
			}
		}
	}()

	return d.app.SetRoot(d.root, true).SetFocus(d.root).Run()
}

func main() {
	var (
		bridge string
		trace  bool
	)
	cmd := &cobra.Command{
		Use:          "vm-viewer program",
		Short:        "Step through a smol program",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := cli.FindAndLoad(wd)
			if err != nil {
				return err
			}
			// Logs would draw over the terminal UI.
			if cfg.Log.File == "" {
				cfg.Log.Verbosity = 0
			}
			cli.ConfigureLogging(cfg.Log)

			p, err := cli.LoadProgram(args[0])
			if err != nil {
				return err
			}
			return run(p, bridge, trace || cfg.VM.Trace)
		},
	}
	cmd.Flags().StringVarP(&bridge, "bridge", "b", sysbridge.NameStdio, "syscall bridge, stdio writes into the output pane")
	cmd.Flags().BoolVarP(&trace, "trace", "t", false, "log every instruction")
	if err := cmd.Execute(); err != nil {
		util.Exit(1)
	}
	util.Exit(0)
}
