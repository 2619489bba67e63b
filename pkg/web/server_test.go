package web

import (
	"errors"
	"testing"

	"github.com/vrkit/go-vrbridge/pkg/hub"
	"github.com/vrkit/go-vrbridge/pkg/protocol"
	"github.com/vrkit/go-vrbridge/pkg/sink"
)

func newTestServer() *Server {
	return NewServer("test", "0", sink.NewLatest())
}

// dispatch runs one command through the server and returns the decoded
// replies.
func dispatch(t *testing.T, s *Server, raw []byte) []*protocol.Message {
	t.Helper()
	var replies []*protocol.Message
	s.dispatchCommand(raw, func(m hub.Message) {
		msg, err := protocol.ParseMessage(m.Data)
		if err != nil {
			t.Fatalf("reply is not a valid message: %v", err)
		}
		replies = append(replies, msg)
	})
	return replies
}

func command(t *testing.T, msgType protocol.MessageType) []byte {
	t.Helper()
	msg, err := protocol.NewMessage(msgType, nil)
	if err != nil {
		t.Fatalf("NewMessage() error = %v", err)
	}
	data, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	return data
}

func TestDispatchCommand_Ping(t *testing.T) {
	s := newTestServer()

	replies := dispatch(t, s, command(t, protocol.TypePing))
	if len(replies) != 1 {
		t.Fatalf("replies = %d, want 1", len(replies))
	}
	if replies[0].Type != protocol.TypePong {
		t.Errorf("reply type = %q, want %q", replies[0].Type, protocol.TypePong)
	}
}

func TestDispatchCommand_Status(t *testing.T) {
	s := newTestServer()
	s.Status = func() protocol.StatusData {
		return protocol.StatusData{
			Initialized: true,
			BaseFrame:   "openVR_origin",
			Devices:     []string{"LHR-HMD"},
		}
	}

	replies := dispatch(t, s, command(t, protocol.TypeStatus))
	if len(replies) != 1 {
		t.Fatalf("replies = %d, want 1", len(replies))
	}
	if replies[0].Type != protocol.TypeStatus {
		t.Fatalf("reply type = %q, want %q", replies[0].Type, protocol.TypeStatus)
	}

	var status protocol.StatusData
	if err := replies[0].ParseData(&status); err != nil {
		t.Fatalf("ParseData() error = %v", err)
	}
	if !status.Initialized || status.BaseFrame != "openVR_origin" {
		t.Errorf("status = %+v", status)
	}
}

func TestDispatchCommand_ResetSeated(t *testing.T) {
	s := newTestServer()

	resets := 0
	s.OnResetSeated = func() error {
		resets++
		return nil
	}

	replies := dispatch(t, s, command(t, protocol.TypeResetSeated))
	if resets != 1 {
		t.Errorf("reset calls = %d, want 1", resets)
	}
	if len(replies) != 1 {
		t.Fatalf("replies = %d, want 1", len(replies))
	}

	var result protocol.ResetSeatedResult
	if err := replies[0].ParseData(&result); err != nil {
		t.Fatalf("ParseData() error = %v", err)
	}
	if !result.OK {
		t.Errorf("result = %+v, want ok", result)
	}
}

func TestDispatchCommand_ResetSeatedFailure(t *testing.T) {
	s := newTestServer()
	s.OnResetSeated = func() error {
		return errors.New("chaperone unavailable")
	}

	replies := dispatch(t, s, command(t, protocol.TypeResetSeated))
	if len(replies) != 1 {
		t.Fatalf("replies = %d, want 1", len(replies))
	}

	var result protocol.ResetSeatedResult
	if err := replies[0].ParseData(&result); err != nil {
		t.Fatalf("ParseData() error = %v", err)
	}
	if result.OK || result.Error != "chaperone unavailable" {
		t.Errorf("result = %+v, want failure with the runtime error", result)
	}
}

func TestDispatchCommand_Ignored(t *testing.T) {
	s := newTestServer()

	if got := dispatch(t, s, []byte("not json")); len(got) != 0 {
		t.Errorf("malformed message produced %d replies, want 0", len(got))
	}
	if got := dispatch(t, s, command(t, protocol.TypeTransform)); len(got) != 0 {
		t.Errorf("unknown command produced %d replies, want 0", len(got))
	}
	// Status not configured: no reply rather than a partial one
	if got := dispatch(t, s, command(t, protocol.TypeStatus)); len(got) != 0 {
		t.Errorf("unconfigured status produced %d replies, want 0", len(got))
	}
}
