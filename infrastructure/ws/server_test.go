package ws

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"group-chat/auth"
	"group-chat/domain"
	"group-chat/repositories"
	"group-chat/runtime"
	"group-chat/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	server *httptest.Server
	users  *repositories.UserRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	req := require.New(t)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.Default()
	users, err := repositories.NewUserRepository(db)
	req.NoError(err)
	groups, err := repositories.NewGroupRepository(db)
	req.NoError(err)
	messages, err := repositories.NewMessageRepository(db, log)
	req.NoError(err)
	t.Cleanup(func() {
		_ = users.Close()
		_ = groups.Close()
		_ = messages.Close()
	})

	registry := runtime.NewRegistry()
	chat := services.NewChatService(log, users, groups, messages)
	sessionServer := NewServer(log, auth.NewVerifier(users), chat, registry, 16, time.Second)

	mux := http.NewServeMux()
	mux.Handle("/ws/chat", sessionServer)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return &fixture{server: ts, users: users}
}

func (f *fixture) register(t *testing.T, username string) domain.User {
	t.Helper()
	user, err := f.users.CreateUser(username, username+"@example.com", "hash", domain.StatusSimple)
	require.NoError(t, err)
	return user
}

func (f *fixture) wsURL(query string) string {
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/chat"
	if query != "" {
		url += "?" + query
	}
	return url
}

// connect dials with a fresh token for the username and consumes the
// connected event.
func (f *fixture) connect(t *testing.T, username string) *websocket.Conn {
	t.Helper()
	req := require.New(t)

	token, err := auth.GenerateToken(username, time.Hour)
	req.NoError(err)

	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL("token="+token), nil)
	req.NoError(err)
	t.Cleanup(func() { _ = conn.Close() })

	connected := readEvent(t, conn)
	req.Equal("connected", connected["event"])
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var payload map[string]any
	require.NoError(t, conn.ReadJSON(&payload))
	return payload
}

func send(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))
}

func TestServer_Handshake_Success(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	user := f.register(t, "alice")

	token, err := auth.GenerateToken("alice", time.Hour)
	req.NoError(err)

	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL("token="+token), nil)
	req.NoError(err)
	defer conn.Close()

	connected := readEvent(t, conn)
	req.Equal("connected", connected["event"])
	req.Equal(float64(user.ID), connected["user_id"])
	req.Equal("alice", connected["username"])
}

func TestServer_Handshake_Bearer_Header(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "alice")

	token, err := auth.GenerateToken("alice", time.Hour)
	req.NoError(err)

	header := http.Header{"Authorization": {"Bearer " + token}}
	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL(""), header)
	req.NoError(err)
	defer conn.Close()

	connected := readEvent(t, conn)
	req.Equal("connected", connected["event"])
}

func TestServer_Handshake_Missing_Token(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL(""), nil)
	req.NoError(err)
	defer conn.Close()

	// One error event, then a policy-violation close
	failure := readEvent(t, conn)
	req.Equal("error", failure["event"])
	req.Equal("Missing token", failure["detail"])

	_, _, err = conn.ReadMessage()
	req.True(websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}

func TestServer_Handshake_Invalid_Token(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL("token=not.a.token"), nil)
	req.NoError(err)
	defer conn.Close()

	failure := readEvent(t, conn)
	req.Equal("error", failure["event"])
	req.Equal("Invalid token", failure["detail"])

	_, _, err = conn.ReadMessage()
	req.True(websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}

func TestServer_Handshake_Unknown_Subject(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// Valid signature, but the subject never registered
	token, err := auth.GenerateToken("ghost", time.Hour)
	req.NoError(err)

	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL("token="+token), nil)
	req.NoError(err)
	defer conn.Close()

	failure := readEvent(t, conn)
	req.Equal("Invalid token", failure["detail"])
}

func TestServer_Unknown_Action(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "alice")
	conn := f.connect(t, "alice")

	send(t, conn, `{"action": "frobnicate"}`)

	failure := readEvent(t, conn)
	req.Equal("error", failure["event"])
	req.Equal("Unknown action: frobnicate", failure["detail"])

	// The session survives the unknown action
	send(t, conn, `{"action": "list_groups"}`)
	req.Equal("groups", readEvent(t, conn)["event"])
}

func TestServer_Malformed_Frame(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "alice")
	conn := f.connect(t, "alice")

	send(t, conn, `{not json`)

	failure := readEvent(t, conn)
	req.Equal("error", failure["event"])
	req.Equal("invalid payload", failure["detail"])
}

func TestServer_Create_Group(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	user := f.register(t, "alice")
	conn := f.connect(t, "alice")

	send(t, conn, `{"action": "create_group", "name": "general"}`)

	created := readEvent(t, conn)
	req.Equal("group_created", created["event"])
	group := created["group"].(map[string]any)
	req.Equal("general", group["name"])
	req.Equal(float64(user.ID), group["owner_id"])
}

func TestServer_Create_Group_Blank_Name(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "alice")
	conn := f.connect(t, "alice")

	for _, payload := range []string{
		`{"action": "create_group"}`,
		`{"action": "create_group", "name": "   "}`,
	} {
		send(t, conn, payload)
		failure := readEvent(t, conn)
		req.Equal("error", failure["event"])
		req.Equal("create_group", failure["action"])
		req.Equal("name is required", failure["detail"])
	}
}

func TestServer_List_Groups_Newest_First(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "alice")
	conn := f.connect(t, "alice")

	// Given no groups yet
	send(t, conn, `{"action": "list_groups"}`)
	listing := readEvent(t, conn)
	req.Equal("groups", listing["event"])
	req.Empty(listing["items"])

	// When two groups are created
	send(t, conn, `{"action": "create_group", "name": "first"}`)
	readEvent(t, conn)
	send(t, conn, `{"action": "create_group", "name": "second"}`)
	readEvent(t, conn)

	// Then the listing is newest first
	send(t, conn, `{"action": "list_groups"}`)
	listing = readEvent(t, conn)
	items := listing["items"].([]any)
	req.Len(items, 2)
	req.Equal("second", items[0].(map[string]any)["name"])
	req.Equal("first", items[1].(map[string]any)["name"])
}

func TestServer_Rename_Group_Broadcasts_To_Members(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "alice")
	bob := f.register(t, "bob")
	alice := f.connect(t, "alice")
	bobConn := f.connect(t, "bob")

	send(t, alice, `{"action": "create_group", "name": "general"}`)
	created := readEvent(t, alice)
	groupID := int64(created["group"].(map[string]any)["id"].(float64))

	send(t, alice, fmt.Sprintf(`{"action": "add_members", "group_id": %d, "user_ids": [%d]}`, groupID, bob.ID))
	readEvent(t, alice)
	readEvent(t, bobConn)

	// When the owner renames the group
	send(t, alice, fmt.Sprintf(`{"action": "rename_group", "group_id": %d, "name": "random"}`, groupID))

	// Then every member receives the rename, the owner included
	for _, conn := range []*websocket.Conn{alice, bobConn} {
		renamed := readEvent(t, conn)
		req.Equal("group_renamed", renamed["event"])
		req.Equal("random", renamed["group"].(map[string]any)["name"])
	}
}

func TestServer_Rename_Group_Refused_For_Non_Owner(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "alice")
	bob := f.register(t, "bob")
	alice := f.connect(t, "alice")
	bobConn := f.connect(t, "bob")

	send(t, alice, `{"action": "create_group", "name": "general"}`)
	created := readEvent(t, alice)
	groupID := int64(created["group"].(map[string]any)["id"].(float64))

	send(t, alice, fmt.Sprintf(`{"action": "add_members", "group_id": %d, "user_ids": [%d]}`, groupID, bob.ID))
	readEvent(t, alice)
	readEvent(t, bobConn)

	// When a plain member tries to rename
	send(t, bobConn, fmt.Sprintf(`{"action": "rename_group", "group_id": %d, "name": "mine now"}`, groupID))

	failure := readEvent(t, bobConn)
	req.Equal("error", failure["event"])
	req.Equal("only owner can rename", failure["detail"])
}

func TestServer_Add_Members_Skips_Unknown_And_Non_Integers(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "alice")
	bob := f.register(t, "bob")
	alice := f.connect(t, "alice")

	send(t, alice, `{"action": "create_group", "name": "general"}`)
	created := readEvent(t, alice)
	groupID := int64(created["group"].(map[string]any)["id"].(float64))

	// When the list mixes a real user, an unknown id and junk entries
	send(t, alice, fmt.Sprintf(
		`{"action": "add_members", "group_id": %d, "user_ids": [%d, 9999, "four", 1.5]}`, groupID, bob.ID))

	// Then only the real user was added
	addedEvent := readEvent(t, alice)
	req.Equal("members_added", addedEvent["event"])
	req.Equal([]any{float64(bob.ID)}, addedEvent["added_user_ids"])
}

func TestServer_Add_Members_Missing_Fields(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "alice")
	conn := f.connect(t, "alice")

	for _, payload := range []string{
		`{"action": "add_members"}`,
		`{"action": "add_members", "group_id": 1}`,
		`{"action": "add_members", "group_id": 1, "user_ids": []}`,
	} {
		send(t, conn, payload)
		failure := readEvent(t, conn)
		req.Equal("error", failure["event"])
		req.Equal("group_id and user_ids required", failure["detail"])
	}
}

func TestServer_Send_Message_Fans_Out_To_Members_Only(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "alice")
	bob := f.register(t, "bob")
	f.register(t, "charlie")
	alice := f.connect(t, "alice")
	bobConn := f.connect(t, "bob")
	charlie := f.connect(t, "charlie")

	send(t, alice, `{"action": "create_group", "name": "general"}`)
	created := readEvent(t, alice)
	groupID := int64(created["group"].(map[string]any)["id"].(float64))

	send(t, alice, fmt.Sprintf(`{"action": "add_members", "group_id": %d, "user_ids": [%d]}`, groupID, bob.ID))
	readEvent(t, alice)
	readEvent(t, bobConn)

	// When a member posts
	send(t, alice, fmt.Sprintf(`{"action": "send_message", "group_id": %d, "text": "hello"}`, groupID))

	// Then both members receive the message, charlie receives nothing
	for _, conn := range []*websocket.Conn{alice, bobConn} {
		posted := readEvent(t, conn)
		req.Equal("message", posted["event"])
		message := posted["message"].(map[string]any)
		req.Equal("hello", message["text"])
		req.Equal(float64(groupID), message["group_id"])
	}

	req.NoError(charlie.SetReadDeadline(time.Now().Add(200 * time.Millisecond)))
	var stray map[string]any
	req.Error(charlie.ReadJSON(&stray))
}

func TestServer_Send_Message_Refused_For_Non_Member(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "alice")
	f.register(t, "charlie")
	alice := f.connect(t, "alice")
	charlie := f.connect(t, "charlie")

	send(t, alice, `{"action": "create_group", "name": "general"}`)
	created := readEvent(t, alice)
	groupID := int64(created["group"].(map[string]any)["id"].(float64))

	send(t, charlie, fmt.Sprintf(`{"action": "send_message", "group_id": %d, "text": "let me in"}`, groupID))

	failure := readEvent(t, charlie)
	req.Equal("error", failure["event"])
	req.Equal("not a member", failure["detail"])
}

func TestServer_Fetch_Messages_Chronological(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "alice")
	alice := f.connect(t, "alice")

	send(t, alice, `{"action": "create_group", "name": "general"}`)
	created := readEvent(t, alice)
	groupID := int64(created["group"].(map[string]any)["id"].(float64))

	for _, text := range []string{"first", "second", "third"} {
		send(t, alice, fmt.Sprintf(`{"action": "send_message", "group_id": %d, "text": "%s"}`, groupID, text))
		readEvent(t, alice)
	}

	send(t, alice, fmt.Sprintf(`{"action": "fetch_messages", "group_id": %d}`, groupID))

	history := readEvent(t, alice)
	req.Equal("messages", history["event"])
	req.Equal(float64(groupID), history["group_id"])
	items := history["items"].([]any)
	req.Len(items, 3)
	req.Equal("first", items[0].(map[string]any)["text"])
	req.Equal("third", items[2].(map[string]any)["text"])
}

func TestServer_Fetch_Messages_Pagination(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "alice")
	alice := f.connect(t, "alice")

	send(t, alice, `{"action": "create_group", "name": "general"}`)
	created := readEvent(t, alice)
	groupID := int64(created["group"].(map[string]any)["id"].(float64))

	var messageIDs []int64
	for i := 1; i <= 4; i++ {
		send(t, alice, fmt.Sprintf(`{"action": "send_message", "group_id": %d, "text": "message %d"}`, groupID, i))
		posted := readEvent(t, alice)
		messageIDs = append(messageIDs, int64(posted["message"].(map[string]any)["id"].(float64)))
	}

	// When fetching the window before the third message, one at a time
	send(t, alice, fmt.Sprintf(
		`{"action": "fetch_messages", "group_id": %d, "limit": 1, "before_id": %d}`, groupID, messageIDs[2]))

	history := readEvent(t, alice)
	items := history["items"].([]any)
	req.Len(items, 1)
	req.Equal(float64(messageIDs[1]), items[0].(map[string]any)["id"])
}

func TestServer_Multi_Device_Delivery(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "alice")
	laptop := f.connect(t, "alice")
	phone := f.connect(t, "alice")

	send(t, laptop, `{"action": "create_group", "name": "general"}`)
	created := readEvent(t, laptop)
	groupID := int64(created["group"].(map[string]any)["id"].(float64))

	// When one device posts
	send(t, laptop, fmt.Sprintf(`{"action": "send_message", "group_id": %d, "text": "hello"}`, groupID))

	// Then both devices receive the message
	for _, conn := range []*websocket.Conn{laptop, phone} {
		posted := readEvent(t, conn)
		req.Equal("message", posted["event"])
	}
}
