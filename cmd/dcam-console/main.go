// Command dcam-console is an interactive console over a simulated camera.
// It brings up a full device session and lets you read and write the
// composed controls, watching policy rejections the way a client would.
//
// Usage:
//
//	# Current-generation camera, session traced to a file
//	dcam-console -trace session.dlog
//
//	# Older firmware without exposure bracketing
//	dcam-console -fw 5.11.6.250
//
//	# Rolling-shutter hardware in advanced mode
//	dcam-console -global-shutter=false -advanced
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/dcam-project/dcam-go/cmd/dcam-console/interactive"
	"github.com/dcam-project/dcam-go/internal/simulator"
	"github.com/dcam-project/dcam-go/pkg/device"
	"github.com/dcam-project/dcam-go/pkg/firmware"
	"github.com/dcam-project/dcam-go/pkg/log"
	"github.com/dcam-project/dcam-go/pkg/product"
)

func main() {
	pidFlag := flag.String("pid", "0x0B5C", "Product ID (hex)")
	fwFlag := flag.String("fw", "5.12.8.100", "Simulated firmware version")
	advanced := flag.Bool("advanced", false, "Simulate the advanced unlock mode")
	projector := flag.Bool("projector", true, "Simulate an active projector")
	rgb := flag.Bool("rgb", true, "Simulate a color sensor")
	imu := flag.Bool("imu", true, "Simulate an IMU")
	globalShutter := flag.Bool("global-shutter", true, "Simulate a global shutter depth sensor")
	trace := flag.String("trace", "", "Write session trace events to this file")
	verbose := flag.Bool("v", false, "Echo trace events to the console")
	flag.Parse()

	if err := run(*pidFlag, *fwFlag, *advanced, *projector, *rgb, *imu, *globalShutter, *trace, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(pidFlag, fw string, advanced, projector, rgb, imu, globalShutter bool, trace string, verbose bool) error {
	pid, err := strconv.ParseUint(pidFlag, 0, 16)
	if err != nil {
		return fmt.Errorf("invalid product id %q: %w", pidFlag, err)
	}
	if _, err := firmware.Parse(fw); err != nil {
		return fmt.Errorf("invalid firmware version %q: %w", fw, err)
	}

	model := simulator.D455()
	model.PID = product.ID(pid)
	model.Firmware = fw
	model.Projector = projector
	model.RGB = rgb
	model.IMU = imu
	model.GlobalShutter = globalShutter

	var loggers []log.Logger
	if trace != "" {
		fileLogger, err := log.NewFileLogger(trace)
		if err != nil {
			return fmt.Errorf("opening trace file: %w", err)
		}
		defer fileLogger.Close()
		loggers = append(loggers, fileLogger)
	}
	if verbose {
		loggers = append(loggers, log.NewSlogAdapter(slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}
	var eventLogger log.Logger = log.NoopLogger{}
	if len(loggers) > 0 {
		eventLogger = log.NewMultiLogger(loggers...)
	}

	sim := simulator.New(model)
	d, err := device.New(device.Config{
		Transport:   sim,
		Channel:     sim,
		PID:         model.PID,
		Advanced:    advanced,
		USBSpec:     "3.2",
		EventLogger: eventLogger,
	})
	if err != nil {
		return fmt.Errorf("device bring-up: %w", err)
	}

	console, err := interactive.New(d)
	if err != nil {
		return err
	}
	console.Run()
	return nil
}
