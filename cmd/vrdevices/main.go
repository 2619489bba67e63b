// vrdevices is a diagnostic tool that lists the managed tracked
// devices and prints their positions once per second.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vrkit/go-vrbridge/internal/log"
	"github.com/vrkit/go-vrbridge/pkg/openvr"
)

func main() {
	originName := flag.String("origin", "seated", "tracking origin: seated, standing or raw")
	flag.Parse()

	log.Init("warn")

	origin, known := openvr.ParseOrigin(*originName)
	if !known {
		fmt.Fprintf(os.Stderr, "invalid origin %q, using seated\n", *originName)
	}

	manager := openvr.NewDevicesManager(openvr.NewSimRuntime())
	if err := manager.Initialize(origin); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize the manager:", err)
		os.Exit(1)
	}
	defer manager.Close()

	for _, serial := range manager.ManagedDevices() {
		fmt.Printf("found: %s (%s)\n", serial, manager.Type(serial))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sigChan:
			return
		case <-ticker.C:
			if err := manager.ComputePoses(); err != nil {
				fmt.Fprintln(os.Stderr, "pose refresh failed:", err)
				continue
			}
			for _, serial := range manager.ManagedDevices() {
				pose, ok := manager.Pose(serial)
				if !ok {
					fmt.Fprintf(os.Stderr, "%s: no pose available\n", serial)
					continue
				}
				fmt.Printf("%s: %.3f, %.3f, %.3f\n",
					serial, pose.Position[0], pose.Position[1], pose.Position[2])
			}
		}
	}
}
