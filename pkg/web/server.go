// Package web provides the bridge's HTTP and websocket surface: status
// and transform queries, the seated-origin reset endpoint, and live
// transform/camera streams.
package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/vrkit/go-vrbridge/internal/log"
	"github.com/vrkit/go-vrbridge/pkg/hub"
	"github.com/vrkit/go-vrbridge/pkg/protocol"
	"github.com/vrkit/go-vrbridge/pkg/sink"
)

// Server is the bridge's web server.
type Server struct {
	app  *fiber.App
	port string

	// Latest published transforms, served by the query API.
	latest *sink.Latest

	// Hubs for websocket broadcast
	transformHub *hub.Hub
	cameraHub    *hub.Hub

	// Status returns the current bridge status snapshot.
	Status func() protocol.StatusData

	// OnResetSeated re-zeros the seated origin. Nil disables the
	// endpoint.
	OnResetSeated func() error

	// OnCaptureFrame returns the latest camera frame as JPEG. Nil
	// disables the camera endpoints.
	OnCaptureFrame func() ([]byte, error)
}

// NewServer creates the web server. The latest cache may be shared
// with the broadcaster's sink chain.
func NewServer(name, port string, latest *sink.Latest) *Server {
	s := &Server{
		port:         port,
		latest:       latest,
		transformHub: hub.New("transforms"),
		cameraHub:    hub.New("camera"),
	}

	app := fiber.New(fiber.Config{
		AppName:               name,
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/devices", s.handleDevices)
	api.Get("/transforms", s.handleTransforms)
	api.Get("/camera/frame", s.handleCameraFrame)
	api.Post("/reset-seated", s.handleResetSeated)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/transforms", websocket.New(s.handleTransformsWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	s.app = app
	return s
}

// Start runs the hubs and serves until the listener fails.
func (s *Server) Start() error {
	log.Info("web server listening", "port", s.port)

	go s.transformHub.Run()
	go s.cameraHub.Run()

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("web server failed", "error", err)
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// TransformHub returns the hub carrying the live transform stream;
// wire it into the broadcaster's sink chain via sink.NewHubSink.
func (s *Server) TransformHub() *hub.Hub {
	return s.transformHub
}

// SendCameraFrame broadcasts a JPEG camera frame to all stream
// clients: a JSON metadata message first, then the binary payload.
func (s *Server) SendCameraFrame(jpegData []byte, width, height int, sequence uint32) {
	msg, err := protocol.NewFrameMessage(width, height, sequence)
	if err != nil {
		log.Error("failed to build frame message", "error", err)
	} else if data, err := msg.Bytes(); err != nil {
		log.Error("failed to encode frame message", "error", err)
	} else {
		s.cameraHub.Broadcast(hub.NewJSONMessage(data))
	}
	s.cameraHub.BroadcastBinary(jpegData)
}
