package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/vrkit/go-vrbridge/internal/log"
	"github.com/vrkit/go-vrbridge/pkg/hub"
	"github.com/vrkit/go-vrbridge/pkg/protocol"
)

// handleStatus returns the current bridge status
func (s *Server) handleStatus(c *fiber.Ctx) error {
	if s.Status == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "status not available",
		})
	}
	return c.JSON(s.Status())
}

// handleDevices returns the managed device serial numbers
func (s *Server) handleDevices(c *fiber.Ctx) error {
	if s.Status == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "status not available",
		})
	}
	return c.JSON(fiber.Map{"devices": s.Status().Devices})
}

// handleTransforms returns the last published transform per child
// frame, optionally filtered with ?child=<frame>.
func (s *Server) handleTransforms(c *fiber.Ctx) error {
	if child := c.Query("child"); child != "" {
		record, ok := s.latest.Get(child)
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "no transform published for " + child,
			})
		}
		return c.JSON(record)
	}
	return c.JSON(s.latest.Snapshot())
}

// handleResetSeated re-zeros the seated origin
func (s *Server) handleResetSeated(c *fiber.Ctx) error {
	if s.OnResetSeated == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(protocol.ResetSeatedResult{
			OK:    false,
			Error: "seated reset not configured",
		})
	}
	if err := s.OnResetSeated(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(protocol.ResetSeatedResult{
			OK:    false,
			Error: err.Error(),
		})
	}
	return c.JSON(protocol.ResetSeatedResult{OK: true})
}

// handleCameraFrame returns the latest camera frame as a JPEG image
func (s *Server) handleCameraFrame(c *fiber.Ctx) error {
	if s.OnCaptureFrame == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "camera not configured",
		})
	}
	frame, err := s.OnCaptureFrame()
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(frame)
}

// handleTransformsWS streams published transforms to a websocket
// client. Inbound messages carry the small command surface: ping,
// status query, seated reset.
func (s *Server) handleTransformsWS(c *websocket.Conn) {
	client := hub.NewClient(s.transformHub, c)
	client.OnMessage = func(data []byte) {
		s.dispatchCommand(data, func(msg hub.Message) {
			if !client.Send(msg) {
				log.Warn("dropped command reply, client buffer full", "id", client.ID())
			}
		})
	}
	client.Run()
}

// dispatchCommand handles one inbound websocket message and sends any
// reply through the given function. Unparseable or unknown messages
// are ignored.
func (s *Server) dispatchCommand(data []byte, reply func(hub.Message)) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		log.Debug("ignoring malformed client message", "error", err)
		return
	}

	switch msg.Type {
	case protocol.TypePing:
		pong, err := protocol.NewPongMessage()
		s.replyWith(reply, pong, err)

	case protocol.TypeStatus:
		if s.Status == nil {
			return
		}
		status, err := protocol.NewStatusMessage(s.Status())
		s.replyWith(reply, status, err)

	case protocol.TypeResetSeated:
		result := protocol.ResetSeatedResult{OK: true}
		if s.OnResetSeated == nil {
			result = protocol.ResetSeatedResult{OK: false, Error: "seated reset not configured"}
		} else if err := s.OnResetSeated(); err != nil {
			result = protocol.ResetSeatedResult{OK: false, Error: err.Error()}
		}
		outcome, err := protocol.NewMessage(protocol.TypeResetSeated, result)
		s.replyWith(reply, outcome, err)
	}
}

func (s *Server) replyWith(reply func(hub.Message), msg *protocol.Message, err error) {
	if err != nil {
		log.Error("failed to build command reply", "error", err)
		return
	}
	data, err := msg.Bytes()
	if err != nil {
		log.Error("failed to encode command reply", "error", err)
		return
	}
	reply(hub.NewJSONMessage(data))
}

// handleCameraWS streams JPEG camera frames to a websocket client
func (s *Server) handleCameraWS(c *websocket.Conn) {
	hub.NewClient(s.cameraHub, c).Run()
}
