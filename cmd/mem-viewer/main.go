// Command mem-viewer runs a smol program and shows its memory as a heat
// map. Each pixel is a byte, recent writes glow.
//
// Keys: space pauses, n steps once when paused, up and down change the
// speed.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/hajimehoshi/bitmapfont/v3"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	"github.com/tliron/kutil/util"
	"golang.org/x/image/font"

	"go.creack.net/smol/cli"
	"go.creack.net/smol/op"
	"go.creack.net/smol/sysbridge"
	"go.creack.net/smol/vm"
)

var log = commonlog.GetLogger("smol.viewer")

var (
	bitmapFace font.Face = bitmapfont.Face
	fontFace             = text.NewGoXFace(bitmapFace)
)

const (
	side       = 256 // 256x256 bytes.
	scale      = 3
	panelWidth = 320

	screenWidth, screenHeight = side*scale + panelWidth, side * scale

	maxOutput = 2048
)

// Game implements ebiten.Game interface.
type Game struct {
	m      *vm.Machine
	output *bytes.Buffer

	memImg *ebiten.Image // Reused 256x256 canvas.
	pixels []byte
	prev   []byte
	heat   []byte

	speed  int // Instructions per tick.
	paused bool
	status string
}

func NewGame(m *vm.Machine, output *bytes.Buffer) *Game {
	return &Game{
		m:      m,
		output: output,
		pixels: make([]byte, op.MemSize*4),
		prev:   bytes.Clone(m.Mem.Bytes()),
		heat:   make([]byte, op.MemSize),
		speed:  1,
		status: "running",
	}
}

// Update proceeds the machine.
func (g *Game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.paused = !g.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		g.speed = min(g.speed*2, 1<<14)
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		g.speed = max(g.speed/2, 1)
	}

	steps := g.speed
	if g.paused {
		steps = 0
		if inpututil.IsKeyJustPressed(ebiten.KeyN) {
			steps = 1
		}
	}
	for range steps {
		if g.status != "running" {
			break
		}
		if err := g.m.Step(); err != nil {
			var exit *vm.ExitError
			switch {
			case errors.Is(err, io.EOF):
				g.status = "halted"
			case errors.As(err, &exit):
				g.status = fmt.Sprintf("exit %d", exit.Status)
			default:
				g.status = "fault: " + err.Error()
			}
			log.Noticef("%s after %d steps", g.status, g.m.Steps)
		}
	}

	mem := g.m.Mem.Bytes()
	for i, b := range mem {
		if b != g.prev[i] {
			g.heat[i] = 255
		} else if g.heat[i] > 0 {
			g.heat[i] -= min(g.heat[i], 4)
		}
	}
	copy(g.prev, mem)

	if g.output.Len() > maxOutput {
		g.output.Next(g.output.Len() - maxOutput)
	}
	return nil
}

// byteColor maps a byte to a pixel. The stack is blue, the variables
// green, recent writes red.
func (g *Game) byteColor(addr int) color.RGBA {
	v := g.m.Mem.Bytes()[addr]
	c := color.RGBA{A: 255}
	level := v/2 + 32
	if v == 0 {
		level = 0
	}
	if addr < op.StackSize {
		c.B = level
	} else {
		c.G = level
	}
	c.R = g.heat[addr]
	switch addr {
	case int(g.m.Regs.SP):
		c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	case int(g.m.Regs.VP):
		c = color.RGBA{R: 255, G: 255, A: 255}
	}
	return c
}

func (g *Game) drawMemory(screen *ebiten.Image) {
	for i := range op.MemSize {
		c := g.byteColor(i)
		g.pixels[4*i], g.pixels[4*i+1], g.pixels[4*i+2], g.pixels[4*i+3] = c.R, c.G, c.B, c.A
	}
	if g.memImg == nil {
		g.memImg = ebiten.NewImage(side, side)
	}
	g.memImg.WritePixels(g.pixels)

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(scale, scale)
	screen.DrawImage(g.memImg, opts)
}

func (g *Game) drawPanel(screen *ebiten.Image) {
	r := g.m.Regs
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s, %d steps, x%d\n\n", g.status, g.m.Steps, g.speed)
	if g.paused {
		sb.WriteString("paused\n\n")
	}
	for i, v := range r.R {
		fmt.Fprintf(&sb, "r%d %02x  ", i, v)
		if i%4 == 3 {
			sb.WriteString("\n")
		}
	}
	fmt.Fprintf(&sb, "l0 %04x  l1 %04x\nvp %04x  sp %04x\nic %04x  fg %03b\ncr %04x  zr %04x\n\n", r.L0, r.L1, r.VP, r.SP, r.IC, r.FG, r.CR, r.ZR)

	lines := strings.Split(g.output.String(), "\n")
	if len(lines) > 20 {
		lines = lines[len(lines)-20:]
	}
	sb.WriteString("output:\n" + strings.Join(lines, "\n"))

	textOp := &text.DrawOptions{}
	textOp.GeoM.Translate(side*scale+8, 8)
	m := fontFace.Metrics()
	textOp.LineSpacing = m.HLineGap + m.HAscent + m.HDescent
	textOp.ColorScale.ScaleWithColor(color.White)
	text.Draw(screen, sb.String(), fontFace, textOp)
}

// Draw draws the memory map and the register panel.
func (g *Game) Draw(screen *ebiten.Image) {
	g.drawMemory(screen)
	g.drawPanel(screen)
}

// Layout returns a fixed logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	cmd := &cobra.Command{
		Use:          "mem-viewer program",
		Short:        "Show the memory of a running smol program",
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
			cli.ConfigureLogging(cfg.Log)

			p, err := cli.LoadProgram(args[0])
			if err != nil {
				return err
			}

			output := &bytes.Buffer{}
			bridge := sysbridge.NewStdio()
			bridge.In, bridge.Out, bridge.Err = nil, output, output
			m := vm.New(bridge)
			m.Trace = cfg.VM.Trace
			if err := m.Load(p.File); err != nil {
				return err
			}

			ebiten.SetWindowSize(screenWidth, screenHeight)
			ebiten.SetWindowTitle("smol: " + p.ShortName)
			ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
			return ebiten.RunGame(NewGame(m, output))
		},
	}
	if err := cmd.Execute(); err != nil {
		util.Exit(1)
	}
	util.Exit(0)
}
