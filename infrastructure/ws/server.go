package ws

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"group-chat/auth"
	"group-chat/contract"
	"group-chat/domain"
	"group-chat/domain/event"
	"group-chat/errors"
	"group-chat/services"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

// Server owns the /ws/chat endpoint. Each accepted connection gets its own
// goroutine running the receive loop; connections only meet each other
// through the registry.
type Server struct {
	log             *slog.Logger
	verifier        *auth.Verifier
	chat            services.IChatService
	registry        contract.IRegistry
	bufferSize      int
	deliveryTimeout time.Duration
	upgrader        websocket.Upgrader
	validate        *validator.Validate
}

func NewServer(log *slog.Logger, verifier *auth.Verifier, chat services.IChatService,
	registry contract.IRegistry, bufferSize int, deliveryTimeout time.Duration) *Server {
	return &Server{
		log:             log,
		verifier:        verifier,
		chat:            chat,
		registry:        registry,
		bufferSize:      bufferSize,
		deliveryTimeout: deliveryTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		validate: validator.New(),
	}
}

// ServeHTTP performs the handshake. The credential is taken from the HTTP
// request before the upgrade; on failure the connection is accepted just
// long enough to emit one error event, then closed with a policy-violation
// code, and it is never registered.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, tokenErr := auth.ExtractToken(r)

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("upgrade failed", "error", err)
		return
	}

	if tokenErr != nil {
		s.reject(ws, tokenErr)
		return
	}

	user, err := s.verifier.Verify(token)
	if err != nil {
		s.reject(ws, err)
		return
	}

	conn := newConn(s.log, ws, s.bufferSize, s.deliveryTimeout)
	go conn.writePump()

	s.registry.Register(user.ID, conn)
	defer func() {
		s.registry.Unregister(user.ID, conn)
		_ = conn.Close()
	}()

	if err := conn.Send(event.NewConnected(user)); err != nil {
		return
	}

	s.log.Debug("session started", "user_id", user.ID, "conn_id", conn.id)
	s.readLoop(user, conn, ws)
	s.log.Debug("session ended", "user_id", user.ID, "conn_id", conn.id)
}

// reject emits a single handshake error and closes with 1008.
func (s *Server) reject(ws *websocket.Conn, cause error) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteJSON(event.NewError("", cause.Error()))
	_ = ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, cause.Error()))
	_ = ws.Close()
}

// readLoop processes actions strictly in arrival order: the next inbound
// frame is not read before the current action's replies and broadcasts have
// been issued. A transport-level disconnect is the expected terminal
// transition, not an error.
func (s *Server) readLoop(user domain.User, conn *Conn, ws *websocket.Conn) {
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Debug("read failed", "user_id", user.ID, "error", err)
			}
			return
		}
		s.dispatch(user, conn, data)
	}
}

func (s *Server) dispatch(user domain.User, conn *Conn, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		_ = conn.Send(event.NewError("", "invalid payload"))
		return
	}

	switch env.Action {
	case actionCreateGroup:
		s.handleCreateGroup(user, conn, data)
	case actionListGroups:
		s.handleListGroups(user, conn)
	case actionRenameGroup:
		s.handleRenameGroup(user, conn, data)
	case actionAddMembers:
		s.handleAddMembers(user, conn, data)
	case actionSendMessage:
		s.handleSendMessage(user, conn, data)
	case actionFetchMessages:
		s.handleFetchMessages(user, conn, data)
	default:
		_ = conn.Send(event.NewUnknownAction(env.Action))
	}
}

func (s *Server) handleCreateGroup(user domain.User, conn *Conn, data []byte) {
	var p createGroupPayload
	if !s.decode(conn, actionCreateGroup, data, &p, errors.ErrNameRequired) {
		return
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		s.fail(conn, actionCreateGroup, errors.ErrNameRequired)
		return
	}

	group, err := s.chat.CreateGroup(user, domain.CreateGroupCommand{Name: p.Name})
	if err != nil {
		s.fail(conn, actionCreateGroup, err)
		return
	}
	_ = conn.Send(event.NewGroupCreated(group))
}

func (s *Server) handleListGroups(user domain.User, conn *Conn) {
	groups, err := s.chat.ListGroups(user)
	if err != nil {
		s.fail(conn, actionListGroups, err)
		return
	}
	_ = conn.Send(event.NewGroups(groups))
}

func (s *Server) handleRenameGroup(user domain.User, conn *Conn, data []byte) {
	var p renameGroupPayload
	if !s.decode(conn, actionRenameGroup, data, &p, errors.ErrRenameFields) {
		return
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		s.fail(conn, actionRenameGroup, errors.ErrRenameFields)
		return
	}

	group, recipients, err := s.chat.RenameGroup(user, domain.RenameGroupCommand{
		GroupID: domain.GroupID(p.GroupID),
		Name:    p.Name,
	})
	if err != nil {
		s.fail(conn, actionRenameGroup, err)
		return
	}
	s.registry.Broadcast(recipients, event.NewGroupRenamed(group))
}

func (s *Server) handleAddMembers(user domain.User, conn *Conn, data []byte) {
	var p addMembersPayload
	if !s.decode(conn, actionAddMembers, data, &p, errors.ErrAddMembersFields) {
		return
	}

	added, recipients, err := s.chat.AddMembers(user, domain.AddMembersCommand{
		GroupID: domain.GroupID(p.GroupID),
		UserIDs: integerIDs(p.UserIDs),
	})
	if err != nil {
		s.fail(conn, actionAddMembers, err)
		return
	}
	s.registry.Broadcast(recipients, event.NewMembersAdded(domain.GroupID(p.GroupID), added))
}

func (s *Server) handleSendMessage(user domain.User, conn *Conn, data []byte) {
	var p sendMessagePayload
	if !s.decode(conn, actionSendMessage, data, &p, errors.ErrSendMessageFields) {
		return
	}
	p.Text = strings.TrimSpace(p.Text)
	if p.Text == "" {
		s.fail(conn, actionSendMessage, errors.ErrSendMessageFields)
		return
	}

	message, recipients, err := s.chat.SendMessage(user, domain.SendMessageCommand{
		GroupID: domain.GroupID(p.GroupID),
		Text:    p.Text,
	})
	if err != nil {
		s.fail(conn, actionSendMessage, err)
		return
	}
	s.registry.Broadcast(recipients, event.NewMessagePosted(message))
}

func (s *Server) handleFetchMessages(user domain.User, conn *Conn, data []byte) {
	var p fetchMessagesPayload
	if !s.decode(conn, actionFetchMessages, data, &p, errors.ErrGroupIDRequired) {
		return
	}

	messages, err := s.chat.FetchMessages(user, domain.FetchMessagesCommand{
		GroupID:  domain.GroupID(p.GroupID),
		Limit:    p.Limit,
		BeforeID: p.BeforeID,
	})
	if err != nil {
		s.fail(conn, actionFetchMessages, err)
		return
	}
	_ = conn.Send(event.NewMessages(domain.GroupID(p.GroupID), messages))
}

// decode unmarshals and validates an action payload; a malformed or
// incomplete payload is answered with the action's required-fields error.
func (s *Server) decode(conn *Conn, action string, data []byte, payload any, missing error) bool {
	if err := json.Unmarshal(data, payload); err != nil {
		s.fail(conn, action, missing)
		return false
	}
	if err := s.validate.Struct(payload); err != nil {
		s.fail(conn, action, missing)
		return false
	}
	return true
}

// fail reports an action-scoped error on the acting connection. Anything
// outside the client-facing taxonomy is an internal fault: it is logged and
// masked, and the session keeps running either way.
func (s *Server) fail(conn *Conn, action string, err error) {
	if !isClientError(err) {
		s.log.Error("action failed", "action", action, "error", err)
		_ = conn.Send(event.NewError(action, "internal error"))
		return
	}
	_ = conn.Send(event.NewError(action, err.Error()))
}

func isClientError(err error) bool {
	switch err {
	case errors.ErrNameRequired, errors.ErrRenameFields, errors.ErrAddMembersFields,
		errors.ErrSendMessageFields, errors.ErrGroupIDRequired, errors.ErrGroupNotFound,
		errors.ErrOnlyOwnerRename, errors.ErrOnlyOwnerAdd, errors.ErrNotMember:
		return true
	}
	return false
}

// integerIDs keeps the entries that are JSON integers; everything else in
// the user_ids list is silently dropped.
func integerIDs(values []any) []int64 {
	return lo.FilterMap(values, func(v any, _ int) (int64, bool) {
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	})
}
