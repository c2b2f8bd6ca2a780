// Package interactive provides the interactive command-line interface
// for dcam-console.
package interactive

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/dcam-project/dcam-go/pkg/control"
	"github.com/dcam-project/dcam-go/pkg/device"
	"github.com/dcam-project/dcam-go/pkg/metadata"
)

// Console handles interactive mode for dcam-console.
type Console struct {
	dev *device.Device
	rl  *readline.Instance
}

// New creates a new interactive console over an initialized device.
func New(dev *device.Device) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "dcam> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{dev: dev, rl: rl}, nil
}

// Run starts the interactive command loop.
func (c *Console) Run() {
	defer c.rl.Close()

	c.printHelp()

	for {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "info":
			c.cmdInfo()

		case "caps":
			c.cmdCaps()

		case "controls", "ls":
			c.cmdControls()

		case "get", "g":
			c.cmdGet(args)

		case "set", "s":
			c.cmdSet(args)

		case "meta", "m":
			c.cmdMeta(args)

		case "baseline":
			c.cmdBaseline()

		case "extrinsics":
			c.cmdExtrinsics()

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
Camera Console Commands:
  Inspection:
    info               - Show device descriptor fields
    caps               - Show the decoded capability mask
    controls           - List composed controls with ranges

  Controls:
    get <name>         - Read a control value
    set <name> <val>   - Write a control value (policy rejections shown)

  Frames:
    meta <hex-record> [attr] - Decode a frame metadata record
    baseline           - Resolve the stereo baseline
    extrinsics         - Resolve the left-right extrinsics

  General:
    help               - Show this help
    quit               - Exit console`)
}

func (c *Console) cmdInfo() {
	for _, key := range []string{
		device.InfoName, device.InfoFirmwareVersion, device.InfoRecommendedFirmware,
		device.InfoModuleSerial, device.InfoASICSerial, device.InfoProductID,
		device.InfoProductLine, device.InfoAdvancedMode, device.InfoCameraLocked,
		device.InfoUSBType, device.InfoSessionID,
	} {
		if v, ok := c.dev.Info(key); ok {
			fmt.Fprintf(c.rl.Stdout(), "  %-22s %s\n", key, v)
		}
	}
}

func (c *Console) cmdCaps() {
	fmt.Fprintf(c.rl.Stdout(), "Firmware:     %s\n", c.dev.Firmware())
	fmt.Fprintf(c.rl.Stdout(), "Capabilities: %s\n", c.dev.Capabilities())
	fmt.Fprintf(c.rl.Stdout(), "Locked:       %v\n", c.dev.Locked())
}

func (c *Console) cmdControls() {
	for _, name := range c.dev.Controls().Names() {
		ctl := c.dev.Controls().MustGet(name)
		rng := ctl.Range()
		value := "?"
		if v, err := ctl.Query(); err == nil {
			value = strconv.FormatFloat(v, 'g', -1, 64)
		}
		fmt.Fprintf(c.rl.Stdout(), "  %-24s %-20s = %-10s [%g..%g]\n",
			name, control.KindOf(ctl), value, rng.Min, rng.Max)
	}
}

func (c *Console) cmdGet(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: get <control>")
		return
	}
	ctl, ok := c.dev.Controls().Get(args[0])
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Unknown control: %s (use 'controls' to list)\n", args[0])
		return
	}
	v, err := ctl.Query()
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "%s = %g\n", args[0], v)
}

func (c *Console) cmdSet(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: set <control> <value>")
		return
	}
	ctl, ok := c.dev.Controls().Get(args[0])
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Unknown control: %s (use 'controls' to list)\n", args[0])
		return
	}
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid value: %v\n", err)
		return
	}

	err = ctl.Set(value)
	var policy *control.PolicyError
	switch {
	case errors.As(err, &policy):
		fmt.Fprintf(c.rl.Stdout(), "Refused: %s\n", policy.Reason)
	case err != nil:
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
	default:
		fmt.Fprintln(c.rl.Stdout(), "OK")
	}
}

func (c *Console) cmdMeta(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: meta <hex-record> [attribute]")
		return
	}
	record, err := hex.DecodeString(strings.TrimPrefix(args[0], "0x"))
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid hex record: %v\n", err)
		return
	}

	if len(args) >= 2 {
		c.printAttr(args[1], record)
		return
	}
	for _, name := range c.dev.Metadata().Names() {
		c.printAttr(name, record)
	}
}

func (c *Console) printAttr(name string, record []byte) {
	v, err := c.dev.Metadata().Extract(name, record)
	switch {
	case errors.Is(err, metadata.ErrUnavailable):
		fmt.Fprintf(c.rl.Stdout(), "  %-22s (unavailable)\n", name)
	case err != nil:
		fmt.Fprintf(c.rl.Stdout(), "  %-22s error: %v\n", name, err)
	default:
		fmt.Fprintf(c.rl.Stdout(), "  %-22s %d\n", name, v)
	}
}

func (c *Console) cmdBaseline() {
	mm, err := c.dev.Calibration().StereoBaselineMM()
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Stereo baseline: %.2f mm\n", mm)
}

func (c *Console) cmdExtrinsics() {
	ex, err := c.dev.Calibration().LeftRightExtrinsics()
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Rotation:    %v\n", ex.Rotation)
	fmt.Fprintf(c.rl.Stdout(), "Translation: %v m\n", ex.Translation)
}
