// vrcamera pulls video frames from the headset's tracked camera and
// serves them as JPEG over HTTP and websocket.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/vrkit/go-vrbridge/internal/config"
	"github.com/vrkit/go-vrbridge/internal/log"
	"github.com/vrkit/go-vrbridge/pkg/camera"
	"github.com/vrkit/go-vrbridge/pkg/openvr"
	"github.com/vrkit/go-vrbridge/pkg/sink"
	"github.com/vrkit/go-vrbridge/pkg/web"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	port := flag.Int("port", 0, "web port (overrides config)")
	width := flag.Int("width", 640, "simulated camera width")
	height := flag.Int("height", 480, "simulated camera height")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)
	if *port != 0 {
		cfg.Web.Port = *port
	}

	camCfg := camera.Config{
		DeviceIndex: uint32(cfg.Camera.DeviceIndex),
		Quality:     cfg.Camera.Quality,
		PollRate:    cfg.Camera.PollRate,
	}
	if errs := camCfg.Validate(); len(errs) > 0 {
		fmt.Fprintln(os.Stderr, "Error: invalid camera config:", errs)
		os.Exit(1)
	}

	svc := openvr.NewSimCamera(uint32(*width), uint32(*height), float64(camCfg.PollRate))
	grabber := camera.NewGrabber(svc, camCfg)
	if err := grabber.Open(); err != nil {
		log.Error("failed to open camera", "error", err)
		os.Exit(1)
	}
	defer grabber.Close()

	var frameMu sync.RWMutex
	var latestJPEG []byte

	server := web.NewServer(cfg.Name+"-camera", strconv.Itoa(cfg.Web.Port), sink.NewLatest())
	server.OnCaptureFrame = func() ([]byte, error) {
		frameMu.RLock()
		defer frameMu.RUnlock()
		if latestJPEG == nil {
			return nil, errors.New("no frame captured yet")
		}
		frame := make([]byte, len(latestJPEG))
		copy(frame, latestJPEG)
		return frame, nil
	}
	server.StartAsync()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second / time.Duration(camCfg.PollRate))
	defer ticker.Stop()

	log.Info("camera loop started", "poll_rate", camCfg.PollRate)
	for {
		select {
		case <-sigChan:
			log.Info("shutting down")
			if err := server.Shutdown(); err != nil {
				log.Warn("web server shutdown failed", "error", err)
			}
			return

		case <-ticker.C:
			img, err := grabber.GetImage()
			if err != nil {
				if errors.Is(err, camera.ErrNoNewFrame) {
					continue
				}
				log.Warn("frame pull failed", "error", err)
				continue
			}

			jpegData, err := camera.EncodeJPEG(img, camCfg.Quality)
			if err != nil {
				log.Warn("frame encode failed", "error", err)
				continue
			}

			frameMu.Lock()
			latestJPEG = jpegData
			frameMu.Unlock()

			server.SendCameraFrame(jpegData, grabber.Width(), grabber.Height(), grabber.LastSequence())
		}
	}
}
