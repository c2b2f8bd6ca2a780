// Command dcam-inspect shows what the negotiation engine derives for a
// device: firmware version, capability mask, the composed control graph
// and the registered metadata attributes.
//
// It works against a simulated camera model, or against a raw firmware
// status blob captured from real hardware.
//
// Usage:
//
//	# Inspect a simulated current-generation camera
//	dcam-inspect
//
//	# Simulate older firmware on the same hardware
//	dcam-inspect -fw 5.11.6.250
//
//	# Simulate a rolling-shutter SKU without an IMU
//	dcam-inspect -global-shutter=false -imu=false
//
//	# Decode a captured status blob (no control composition)
//	dcam-inspect -gvd status.bin -pid 0x0B5C
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/dcam-project/dcam-go/internal/simulator"
	"github.com/dcam-project/dcam-go/pkg/caps"
	"github.com/dcam-project/dcam-go/pkg/control"
	"github.com/dcam-project/dcam-go/pkg/device"
	"github.com/dcam-project/dcam-go/pkg/firmware"
	"github.com/dcam-project/dcam-go/pkg/hwmon"
	"github.com/dcam-project/dcam-go/pkg/product"
)

func main() {
	gvdPath := flag.String("gvd", "", "Path to a captured status blob; skips simulation")
	pidFlag := flag.String("pid", "0x0B5C", "Product ID (hex)")
	fwFlag := flag.String("fw", "5.12.8.100", "Simulated firmware version")
	advanced := flag.Bool("advanced", false, "Simulate the advanced unlock mode")
	projector := flag.Bool("projector", true, "Simulate an active projector")
	rgb := flag.Bool("rgb", true, "Simulate a color sensor")
	imu := flag.Bool("imu", true, "Simulate an IMU")
	globalShutter := flag.Bool("global-shutter", true, "Simulate a global shutter depth sensor")
	flag.Parse()

	pid, err := parsePID(*pidFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *gvdPath != "" {
		if err := inspectBlob(*gvdPath, pid); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if _, err := firmware.Parse(*fwFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid firmware version %q: %v\n", *fwFlag, err)
		os.Exit(1)
	}

	model := simulator.D455()
	model.PID = pid
	model.Firmware = *fwFlag
	model.Projector = *projector
	model.RGB = *rgb
	model.IMU = *imu
	model.GlobalShutter = *globalShutter

	if err := inspectSimulated(model, *advanced); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parsePID(s string) (product.ID, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q: %w", s, err)
	}
	return product.ID(v), nil
}

// inspectBlob decodes a captured status blob without a live device: only
// the version, serials and capability mask are derivable.
func inspectBlob(path string, pid product.ID) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(blob) < hwmon.BufferSize {
		return fmt.Errorf("status blob is %d bytes, need %d", len(blob), hwmon.BufferSize)
	}

	fwString, err := hwmon.VersionString(blob, caps.VersionOffset)
	if err != nil {
		return err
	}
	fw, err := firmware.Parse(fwString)
	if err != nil {
		return err
	}
	moduleSerial, _ := hwmon.SerialString(blob, caps.ModuleSerialOffset, caps.ModuleSerialSize)
	asicSerial, _ := hwmon.SerialString(blob, caps.ASICSerialOffset, caps.ASICSerialSize)

	fmt.Printf("Product:        %s (%s)\n", product.Name(pid), pid)
	fmt.Printf("Firmware:       %s", fw)
	if fw.Experimental() {
		fmt.Print(" (experimental)")
	}
	fmt.Println()
	fmt.Printf("Module serial:  %s\n", moduleSerial)
	fmt.Printf("ASIC serial:    %s\n", asicSerial)

	if !fw.AtLeast(firmware.CapsSupported) {
		fmt.Println("Capabilities:   (firmware predates capability reporting)")
		return nil
	}
	mask := caps.Decode(blob, pid)
	fmt.Printf("Capabilities:   %s\n", mask)
	return nil
}

// inspectSimulated brings up a full device session against the simulator
// and prints everything the engine composed.
func inspectSimulated(model simulator.Model, advanced bool) error {
	sim := simulator.New(model)
	d, err := device.New(device.Config{
		Transport: sim,
		Channel:   sim,
		PID:       model.PID,
		Advanced:  advanced,
		USBSpec:   "3.2",
	})
	if err != nil {
		return err
	}

	fmt.Printf("Product:        %s (%s)\n", product.Name(model.PID), model.PID)
	fmt.Printf("Firmware:       %s", d.Firmware())
	if d.Firmware().Experimental() {
		fmt.Print(" (experimental)")
	}
	fmt.Println()
	fmt.Printf("Capabilities:   %s\n", d.Capabilities())
	fmt.Printf("Session:        %s\n", d.SessionID())

	fmt.Println("\nDevice info:")
	for _, key := range []string{
		device.InfoName, device.InfoModuleSerial, device.InfoASICSerial,
		device.InfoProductLine, device.InfoAdvancedMode, device.InfoCameraLocked,
		device.InfoUSBType, device.InfoRecommendedFirmware,
	} {
		if v, ok := d.Info(key); ok {
			fmt.Printf("  %-22s %s\n", key, v)
		}
	}

	fmt.Println("\nControls:")
	for _, name := range d.Controls().Names() {
		c := d.Controls().MustGet(name)
		rng := c.Range()
		fmt.Printf("  %-24s %-20s [%g..%g] %s\n",
			name, control.KindOf(c), rng.Min, rng.Max, c.Description())
	}

	fmt.Println("\nDepth metadata attributes:")
	for _, name := range d.Metadata().Names() {
		fmt.Printf("  %s\n", name)
	}
	if color := d.ColorMetadata(); color != nil {
		fmt.Println("\nColor metadata attributes:")
		for _, name := range color.Names() {
			fmt.Printf("  %s\n", name)
		}
	}
	return nil
}
