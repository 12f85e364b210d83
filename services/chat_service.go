//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"fmt"
	"log/slog"

	"group-chat/domain"
	"group-chat/errors"
	"group-chat/repositories"
)

const (
	defaultFetchLimit = 50
	maxFetchLimit     = 200
)

// IChatService carries the semantics of every live-session action:
// authorize against the persisted state, mutate or read, and resolve the
// recipient set. Mutating calls resolve recipients after the commit, so the
// broadcast always reflects the membership the action produced. Delivery
// itself belongs to the caller.
type IChatService interface {
	CreateGroup(caller domain.User, cmd domain.CreateGroupCommand) (domain.Group, error)
	ListGroups(caller domain.User) ([]domain.Group, error)
	RenameGroup(caller domain.User, cmd domain.RenameGroupCommand) (domain.Group, []int64, error)
	AddMembers(caller domain.User, cmd domain.AddMembersCommand) (added []int64, recipients []int64, err error)
	SendMessage(caller domain.User, cmd domain.SendMessageCommand) (domain.Message, []int64, error)
	FetchMessages(caller domain.User, cmd domain.FetchMessagesCommand) ([]domain.Message, error)
}

type ChatService struct {
	users    repositories.IUserRepository
	groups   repositories.IGroupRepository
	messages repositories.IMessageRepository
	log      *slog.Logger
}

func NewChatService(log *slog.Logger, users repositories.IUserRepository,
	groups repositories.IGroupRepository, messages repositories.IMessageRepository) *ChatService {
	return &ChatService{users: users, groups: groups, messages: messages, log: log}
}

func (s *ChatService) CreateGroup(caller domain.User, cmd domain.CreateGroupCommand) (domain.Group, error) {
	group, err := s.groups.CreateGroup(caller.ID, cmd.Name)
	if err != nil {
		return domain.Group{}, fmt.Errorf("groups.CreateGroup: %w", err)
	}

	s.log.Debug("group created", "group_id", group.ID, "owner_id", caller.ID)
	return group, nil
}

func (s *ChatService) ListGroups(caller domain.User) ([]domain.Group, error) {
	groups, err := s.groups.GroupsForUser(caller.ID)
	if err != nil {
		return nil, fmt.Errorf("groups.GroupsForUser: %w", err)
	}
	return groups, nil
}

// RenameGroup renames iff the caller owns the group. Admin-status users are
// deliberately not granted this right on the live session layer.
func (s *ChatService) RenameGroup(caller domain.User, cmd domain.RenameGroupCommand) (domain.Group, []int64, error) {
	group, err := s.groups.GetGroup(cmd.GroupID)
	if err != nil {
		return domain.Group{}, nil, err
	}
	if group.OwnerID != caller.ID {
		return domain.Group{}, nil, errors.ErrOnlyOwnerRename
	}

	renamed, err := s.groups.RenameGroup(cmd.GroupID, cmd.Name)
	if err != nil {
		return domain.Group{}, nil, err
	}

	recipients, err := s.groups.MemberIDs(cmd.GroupID)
	if err != nil {
		return domain.Group{}, nil, fmt.Errorf("groups.MemberIDs: %w", err)
	}
	return renamed, recipients, nil
}

// AddMembers grants memberships for every id that resolves to an existing
// user and is not already a member; everything else is silently skipped.
// The returned added slice lists what was actually created, and recipients
// is the membership after the additions.
func (s *ChatService) AddMembers(caller domain.User, cmd domain.AddMembersCommand) ([]int64, []int64, error) {
	group, err := s.groups.GetGroup(cmd.GroupID)
	if err != nil {
		return nil, nil, err
	}
	if group.OwnerID != caller.ID {
		return nil, nil, errors.ErrOnlyOwnerAdd
	}

	added := []int64{}
	for _, userID := range cmd.UserIDs {
		if _, err := s.users.GetUserByID(userID); err != nil {
			if err == errors.ErrUserNotFound {
				continue
			}
			return nil, nil, fmt.Errorf("users.GetUserByID: %w", err)
		}

		ok, err := s.groups.AddMember(cmd.GroupID, userID)
		if err != nil {
			return nil, nil, fmt.Errorf("groups.AddMember: %w", err)
		}
		if ok {
			added = append(added, userID)
		}
	}

	recipients, err := s.groups.MemberIDs(cmd.GroupID)
	if err != nil {
		return nil, nil, fmt.Errorf("groups.MemberIDs: %w", err)
	}

	s.log.Debug("members added", "group_id", cmd.GroupID, "added", len(added))
	return added, recipients, nil
}

// SendMessage persists the message iff the caller holds a membership in the
// group. A group id that doesn't resolve behaves like any other group the
// caller is not a member of.
func (s *ChatService) SendMessage(caller domain.User, cmd domain.SendMessageCommand) (domain.Message, []int64, error) {
	member, err := s.groups.IsMember(cmd.GroupID, caller.ID)
	if err != nil {
		return domain.Message{}, nil, fmt.Errorf("groups.IsMember: %w", err)
	}
	if !member {
		return domain.Message{}, nil, errors.ErrNotMember
	}

	message, err := s.messages.StoreMessage(cmd.GroupID, caller.ID, cmd.Text)
	if err != nil {
		return domain.Message{}, nil, fmt.Errorf("messages.StoreMessage: %w", err)
	}

	recipients, err := s.groups.MemberIDs(cmd.GroupID)
	if err != nil {
		return domain.Message{}, nil, fmt.Errorf("groups.MemberIDs: %w", err)
	}
	return message, recipients, nil
}

func (s *ChatService) FetchMessages(caller domain.User, cmd domain.FetchMessagesCommand) ([]domain.Message, error) {
	member, err := s.groups.IsMember(cmd.GroupID, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("groups.IsMember: %w", err)
	}
	if !member {
		return nil, errors.ErrNotMember
	}

	limit := defaultFetchLimit
	if cmd.Limit != nil && *cmd.Limit > 0 {
		limit = *cmd.Limit
	}
	if limit > maxFetchLimit {
		limit = maxFetchLimit
	}

	messages, err := s.messages.GetMessages(cmd.GroupID, limit, cmd.BeforeID)
	if err != nil {
		return nil, fmt.Errorf("messages.GetMessages: %w", err)
	}
	return messages, nil
}
