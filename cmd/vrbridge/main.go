// vrbridge samples the poses of all tracked VR devices and republishes
// them as named transforms relative to a fixed origin frame.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/vrkit/go-vrbridge/internal/config"
	"github.com/vrkit/go-vrbridge/internal/log"
	"github.com/vrkit/go-vrbridge/pkg/openvr"
	"github.com/vrkit/go-vrbridge/pkg/protocol"
	"github.com/vrkit/go-vrbridge/pkg/sink"
	"github.com/vrkit/go-vrbridge/pkg/transform"
	"github.com/vrkit/go-vrbridge/pkg/web"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)

	origin, known := openvr.ParseOrigin(cfg.Origin)
	if !known {
		log.Warn("invalid origin value, using seated", "origin", cfg.Origin)
	}

	manager := openvr.NewDevicesManager(openvr.NewSimRuntime())
	if err := manager.Initialize(origin); err != nil {
		log.Error("failed to initialize the devices manager", "error", err)
		os.Exit(1)
	}
	defer manager.Close()

	if err := manager.ResetSeatedPosition(); err != nil {
		log.Error("failed to reset seated position", "error", err)
		os.Exit(1)
	}

	latest := sink.NewLatest()
	server := web.NewServer(cfg.Name, strconv.Itoa(cfg.Web.Port), latest)

	sinks := sink.Multi{latest, sink.NewHubSink(server.TransformHub())}
	if cfg.Sink.ZMQEndpoint != "" {
		pub, err := sink.NewZMQPub(cfg.Sink.ZMQEndpoint)
		if err != nil {
			log.Error("failed to open transform publisher", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		sinks = append(sinks, pub)
	}
	if cfg.Sink.RemoteURL != "" {
		remote, err := sink.NewWSClient(cfg.Sink.RemoteURL)
		if err != nil {
			log.Error("failed to connect to transform server", "error", err)
			os.Exit(1)
		}
		defer remote.Close()
		sinks = append(sinks, remote)
	}

	broadcaster := transform.NewBroadcaster(manager, sinks, cfg.BaseFrame)

	server.Status = func() protocol.StatusData {
		return protocol.StatusData{
			Initialized: manager.Initialized(),
			Origin:      origin.String(),
			BaseFrame:   broadcaster.BaseFrame(),
			Devices:     manager.ManagedDevices(),
			Ticks:       broadcaster.Ticks(),
			Published:   broadcaster.Published(),
		}
	}
	server.OnResetSeated = manager.ResetSeatedPosition
	server.StartAsync()

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	broadcaster.Run(ctx, time.Duration(cfg.PeriodMS)*time.Millisecond)

	if err := server.Shutdown(); err != nil {
		log.Warn("web server shutdown failed", "error", err)
	}
}
