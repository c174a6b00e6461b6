package debug

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/term"

	"github.com/Versifine/strider/internal/physics"
	"github.com/Versifine/strider/internal/sim"
)

const (
	defaultTickInterval = 16 * time.Millisecond
	defaultMovePulse    = 180 * time.Millisecond
	defaultLookStep     = 50.0
)

type ControlledBody interface {
	Tick(dt float64, input physics.InputSampler) (physics.Result, error)
	PhysicsState() physics.State
	LastResult() physics.Result
	SetLocalPosition(pos mgl64.Vec3)
	FloorBelow() float64
}

type Options struct {
	TickInterval time.Duration
	MovePulse    time.Duration
	// LookStep is the pointer delta, in pixels, injected per arrow key press.
	LookStep float64
}

type Console struct {
	body         ControlledBody
	clock        *sim.FrameClock
	tickInterval time.Duration
	movePulse    time.Duration
	lookStep     float64
	out          io.Writer
	now          func() time.Time

	mu            sync.Mutex
	currentInput  physics.InputState
	forwardUntil  time.Time
	backwardUntil time.Time
	leftUntil     time.Time
	rightUntil    time.Time
	jumpUntil     time.Time
	pendingDX     float64
	pendingDY     float64
	commandMode   bool
	commandBuf    []rune
	statusWidth   int
}

func NewConsole(body ControlledBody, opts Options) *Console {
	c := &Console{
		body:         body,
		clock:        sim.NewFrameClock(),
		tickInterval: opts.TickInterval,
		movePulse:    opts.MovePulse,
		lookStep:     opts.LookStep,
		out:          os.Stdout,
		now:          time.Now,
	}
	if c.tickInterval <= 0 {
		c.tickInterval = defaultTickInterval
	}
	if c.movePulse <= 0 {
		c.movePulse = defaultMovePulse
	}
	if c.lookStep <= 0 {
		c.lookStep = defaultLookStep
	}
	return c
}

func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.body == nil {
		return fmt.Errorf("console body is nil")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		fmt.Fprint(c.out, "\r\n")
	}()

	fmt.Fprintln(c.out, "[debug] console started (W/A/S/D pulse, Space jump, ] run, arrows look, X, :)\r")
	c.renderStatusLine()

	go c.tickLoop(ctx)

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		b, err := reader.ReadByte()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		}
		// Ctrl+C arrives as a byte in raw mode.
		if b == 3 {
			return nil
		}
		c.handleKey(reader, b)
	}
}

func (c *Console) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.step(c.clock.Tick())
			c.renderStatusLine()
		}
	}
}

func (c *Console) step(dt float64) {
	input := c.takeInput()
	if _, err := c.body.Tick(dt, input); err != nil {
		slog.Debug("debug body tick failed", "error", err)
	}
}

func (c *Console) handleKey(reader *bufio.Reader, b byte) {
	if c.isCommandMode() {
		c.handleCommandByte(b)
		return
	}

	switch b {
	case ':':
		c.enterCommandMode()
		return
	case 'w', 'W':
		c.pulseForward()
	case 's', 'S':
		c.pulseBackward()
	case 'a', 'A':
		c.pulseLeft()
	case 'd', 'D':
		c.pulseRight()
	case ' ':
		c.pulseJump()
	case ']':
		c.toggleRun()
	case 'x', 'X':
		c.clearInput()
	case 27: // ESC + arrow sequence
		next, err := reader.ReadByte()
		if err != nil || next != '[' {
			return
		}
		arrow, err := reader.ReadByte()
		if err != nil {
			return
		}
		switch arrow {
		case 'D': // left
			c.look(-c.lookStep, 0)
		case 'C': // right
			c.look(c.lookStep, 0)
		case 'A': // up
			c.look(0, -c.lookStep)
		case 'B': // down
			c.look(0, c.lookStep)
		}
	}
	c.renderStatusLine()
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	fmt.Fprint(c.out, "\r\n:")
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		fmt.Fprint(c.out, "\r\n")
		if cmd != "" {
			c.executeCommand(cmd)
		}
		c.renderStatusLine()
		return
	case 27: // ESC cancel command mode
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		fmt.Fprint(c.out, "\r\n[debug] command cancelled\r\n")
		c.renderStatusLine()
		return
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s ", buf)
		fmt.Fprintf(c.out, "\r:%s", buf)
		return
	default:
		if b < 32 || b > 126 {
			return
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s", buf)
	}
}

func (c *Console) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "state":
		ps := c.body.PhysicsState()
		fmt.Fprintf(c.out, "[debug] pos=(%.3f,%.3f,%.3f) heading=%.2f camera=%.2f pitch=%.2f speed=%.2f vv=%.3f ground=%t intent=(%.2f,%.2f)\r\n",
			ps.Position.X(), ps.Position.Y(), ps.Position.Z(),
			ps.Heading, ps.CameraHeading, ps.Pitch,
			ps.Speed, ps.VerticalVelocity, ps.Grounded,
			ps.MoveIntent.X(), ps.MoveIntent.Y(),
		)
		last := c.body.LastResult()
		fmt.Fprintf(c.out, "[debug] last step branch=%s floor=%s correction=%.3g\r\n",
			last.Branch, floorLabel(last.HighestZ), last.Correction)
	case "tp":
		if len(parts) != 4 {
			fmt.Fprintf(c.out, "[debug] usage: :tp <x> <y> <z>\r\n")
			return
		}
		x, err1 := strconv.ParseFloat(parts[1], 64)
		y, err2 := strconv.ParseFloat(parts[2], 64)
		z, err3 := strconv.ParseFloat(parts[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			fmt.Fprintf(c.out, "[debug] invalid tp args\r\n")
			return
		}
		c.body.SetLocalPosition(mgl64.Vec3{x, y, z})
		fmt.Fprintf(c.out, "[debug] teleported to (%.3f, %.3f, %.3f)\r\n", x, y, z)
	case "floor":
		fmt.Fprintf(c.out, "[debug] floor: %s\r\n", floorLabel(c.body.FloorBelow()))
	default:
		fmt.Fprintf(c.out, "[debug] unknown command: %s\r\n", parts[0])
	}
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, "[debug] keys:\r\n")
	fmt.Fprintf(c.out, "  W/S/A/D: pulse movement (~%s)\r\n", c.movePulse)
	fmt.Fprint(c.out, "  Space: jump\r\n")
	fmt.Fprint(c.out, "  ]: toggle run\r\n")
	fmt.Fprintf(c.out, "  Arrows: look (%.0f px per press)\r\n", c.lookStep)
	fmt.Fprint(c.out, "  X: clear all input\r\n")
	fmt.Fprint(c.out, "  : enter command mode\r\n")
	fmt.Fprint(c.out, "[debug] commands:\r\n")
	fmt.Fprint(c.out, "  :tp <x> <y> <z>\r\n")
	fmt.Fprint(c.out, "  :floor\r\n")
	fmt.Fprint(c.out, "  :state\r\n")
	fmt.Fprint(c.out, "  :help\r\n")
}

func (c *Console) renderStatusLine() {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	input := c.currentInput
	width := c.statusWidth
	c.mu.Unlock()

	ps := c.body.PhysicsState()

	line := fmt.Sprintf(
		"[FWD:%s BCK:%s RUN:%s JMP:%s | HDG:%.1f CAM:%.1f PIT:%.1f | X:%.2f Y:%.2f Z:%.2f vv:%.2f ground:%t]",
		boolLabel(input.Forward),
		boolLabel(input.Backward),
		boolLabel(input.Run),
		boolLabel(input.Jump),
		ps.Heading,
		ps.CameraHeading,
		ps.Pitch,
		ps.Position.X(),
		ps.Position.Y(),
		ps.Position.Z(),
		ps.VerticalVelocity,
		ps.Grounded,
	)

	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	fmt.Fprintf(c.out, "\r%s%s", line, padding)

	c.mu.Lock()
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()
}

func (c *Console) look(dx, dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDX += dx
	c.pendingDY += dy
}

// takeInput expires pulses and hands out the accumulated pointer delta once.
func (c *Console) takeInput() physics.InputState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyPulsesLocked(c.now())
	in := c.currentInput
	in.PointerDX, in.PointerDY = c.pendingDX, c.pendingDY
	c.pendingDX, c.pendingDY = 0, 0
	return in
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func floorLabel(z float64) string {
	if math.IsInf(z, -1) {
		return "none"
	}
	return fmt.Sprintf("z=%.3f", z)
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (c *Console) pulseForward() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentInput.Forward = true
	c.forwardUntil = c.now().Add(c.movePulse)
	c.currentInput.Backward = false
	c.backwardUntil = time.Time{}
}

func (c *Console) pulseBackward() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentInput.Backward = true
	c.backwardUntil = c.now().Add(c.movePulse)
	c.currentInput.Forward = false
	c.forwardUntil = time.Time{}
}

func (c *Console) pulseLeft() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentInput.Left = true
	c.leftUntil = c.now().Add(c.movePulse)
	c.currentInput.Right = false
	c.rightUntil = time.Time{}
}

func (c *Console) pulseRight() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentInput.Right = true
	c.rightUntil = c.now().Add(c.movePulse)
	c.currentInput.Left = false
	c.leftUntil = time.Time{}
}

func (c *Console) pulseJump() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentInput.Jump = true
	c.jumpUntil = c.now().Add(c.movePulse)
}

func (c *Console) applyPulsesLocked(now time.Time) {
	expire := func(until *time.Time, held *bool) {
		if !until.IsZero() && !now.Before(*until) {
			*held = false
			*until = time.Time{}
		}
	}
	expire(&c.forwardUntil, &c.currentInput.Forward)
	expire(&c.backwardUntil, &c.currentInput.Backward)
	expire(&c.leftUntil, &c.currentInput.Left)
	expire(&c.rightUntil, &c.currentInput.Right)
	expire(&c.jumpUntil, &c.currentInput.Jump)
}

func (c *Console) toggleRun() {
	c.mu.Lock()
	c.currentInput.Run = !c.currentInput.Run
	enabled := c.currentInput.Run
	c.mu.Unlock()
	slog.Debug("debug run toggled", "enabled", enabled)
}

func (c *Console) clearInput() {
	c.mu.Lock()
	c.currentInput = physics.InputState{}
	c.forwardUntil = time.Time{}
	c.backwardUntil = time.Time{}
	c.leftUntil = time.Time{}
	c.rightUntil = time.Time{}
	c.jumpUntil = time.Time{}
	c.pendingDX, c.pendingDY = 0, 0
	c.mu.Unlock()
}
