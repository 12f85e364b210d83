package e2e

import (
	"encoding/json"
	"fmt"
	"time"

	"group-chat/auth"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

// BaseWsSuite connects to a running server over its websocket endpoint.
// The target is addressed by SERVER_ADDR; the suite is skipped when it is
// not set, so the package stays inert under a plain "go test ./...".
type BaseWsSuite struct {
	suite.Suite
	Config Config
	// LastUserID is the server-assigned id from the most recent Connect.
	LastUserID float64
}

func (s *BaseWsSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.ServerAddr == "" {
		s.T().Skip("SERVER_ADDR not set, skipping end to end suite")
	}
}

// Connect opens an authenticated session for the username and consumes the
// connected event. The seeded users of cmd/tools/gen_test_data share the
// signing secret with the server, so a fresh token is minted locally.
func (s *BaseWsSuite) Connect(name, username string) *websocket.Conn {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	token, err := auth.GenerateToken(username, s.Config.TokenDuration)
	s.Require().NoError(err)

	url := fmt.Sprintf("ws://%s/ws/chat?token=%s", s.Config.ServerAddr, token)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err, "Failed to connect to websocket server at "+s.Config.ServerAddr)
	s.T().Cleanup(func() { _ = conn.Close() })

	connected := s.ReadEvent(conn)
	s.Require().Equal("connected", connected["event"])
	s.LastUserID = connected["user_id"].(float64)
	return conn
}

// Send writes one action frame.
func (s *BaseWsSuite) Send(conn *websocket.Conn, payload map[string]any) {
	data, err := json.Marshal(payload)
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, data))
}

// ReadEvent reads the next event with a bounded wait and logs it.
func (s *BaseWsSuite) ReadEvent(conn *websocket.Conn) map[string]any {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))

	var payload map[string]any
	s.Require().NoError(conn.ReadJSON(&payload))

	line := fmt.Sprintf("EVENT %v", payload["event"])
	if s.Config.Colours {
		line = color.New(color.FgCyan).Render(line)
	}
	s.T().Log(line, payload)
	return payload
}
