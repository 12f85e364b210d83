package ws

// The seven known actions. The dispatch switch in server.go is closed over
// this set; anything else is answered with an unknown-action error.
const (
	actionCreateGroup   = "create_group"
	actionListGroups    = "list_groups"
	actionRenameGroup   = "rename_group"
	actionAddMembers    = "add_members"
	actionSendMessage   = "send_message"
	actionFetchMessages = "fetch_messages"
)

// envelope only resolves the discriminator; the action-specific fields are
// decoded by the matching payload struct. Unknown extra fields are ignored.
type envelope struct {
	Action string `json:"action"`
}

type createGroupPayload struct {
	Name string `json:"name" validate:"required"`
}

type renameGroupPayload struct {
	GroupID int64  `json:"group_id" validate:"required"`
	Name    string `json:"name" validate:"required"`
}

type addMembersPayload struct {
	GroupID int64 `json:"group_id" validate:"required"`
	// Kept loose on purpose: entries that are not integers are silently
	// skipped, they must not fail the decode of the whole action.
	UserIDs []any `json:"user_ids" validate:"required,min=1"`
}

type sendMessagePayload struct {
	GroupID int64  `json:"group_id" validate:"required"`
	Text    string `json:"text" validate:"required"`
}

type fetchMessagesPayload struct {
	GroupID  int64  `json:"group_id" validate:"required"`
	Limit    *int   `json:"limit"`
	BeforeID *int64 `json:"before_id"`
}
