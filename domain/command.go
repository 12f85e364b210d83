package domain

// Commands carried by the live session protocol. The acting user is resolved
// once at handshake and passed alongside, never inside, the command.

type CreateGroupCommand struct {
	Name string
}

type RenameGroupCommand struct {
	GroupID GroupID
	Name    string
}

type AddMembersCommand struct {
	GroupID GroupID
	UserIDs []int64
}

type SendMessageCommand struct {
	GroupID GroupID
	Text    string
}

type FetchMessagesCommand struct {
	GroupID  GroupID
	Limit    *int
	BeforeID *int64
}
