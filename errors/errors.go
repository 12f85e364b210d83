package errors

import "fmt"

// Handshake failures. Fatal to the connection: one error event, then a
// policy-violation close. The connection is never registered.
var (
	ErrMissingToken = fmt.Errorf("Missing token")
	ErrInvalidToken = fmt.Errorf("Invalid token")
)

// Action-scoped failures. Each one is reported as a single error event whose
// detail is the error string below; the session loop keeps running and other
// connections are never affected. The strings are part of the wire contract.
var (
	ErrNameRequired      = fmt.Errorf("name is required")
	ErrRenameFields      = fmt.Errorf("group_id and name required")
	ErrAddMembersFields  = fmt.Errorf("group_id and user_ids required")
	ErrSendMessageFields = fmt.Errorf("group_id and text required")
	ErrGroupIDRequired   = fmt.Errorf("group_id required")
	ErrGroupNotFound     = fmt.Errorf("group not found")
	ErrUserNotFound      = fmt.Errorf("user not found")
	ErrOnlyOwnerRename   = fmt.Errorf("only owner can rename")
	ErrOnlyOwnerAdd      = fmt.Errorf("only owner can add members")
	ErrNotMember         = fmt.Errorf("not a member")
	ErrUserAlreadyExists = fmt.Errorf("user already exists")
)
