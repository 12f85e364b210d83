package repositories

import (
	"fmt"

	"group-chat/domain"
)

// Key layout. Numeric ids are zero-padded to 19 digits so lexicographic
// order over keys equals numeric order over ids, letting prefix iterators
// serve both chronological reads and id-based pagination.
const (
	seqUserKey    = "seq:user"
	seqGroupKey   = "seq:group"
	seqMessageKey = "seq:message"

	// 19 nines: past any padded id, used as the reverse-seek upper bound.
	maxPaddedID = "9999999999999999999"
)

func userKey(id int64) []byte {
	return []byte(fmt.Sprintf("user:id:%019d", id))
}

func usernameKey(username string) []byte {
	return []byte("user:name:" + username)
}

func groupKey(id domain.GroupID) []byte {
	return []byte(fmt.Sprintf("group:%019d", id))
}

func memberKey(groupID domain.GroupID, userID int64) []byte {
	return []byte(fmt.Sprintf("member:%019d:%019d", groupID, userID))
}

func memberPrefix(groupID domain.GroupID) []byte {
	return []byte(fmt.Sprintf("member:%019d:", groupID))
}

func userGroupKey(userID int64, groupID domain.GroupID) []byte {
	return []byte(fmt.Sprintf("usergroup:%019d:%019d", userID, groupID))
}

func userGroupPrefix(userID int64) []byte {
	return []byte(fmt.Sprintf("usergroup:%019d:", userID))
}

func messageKey(groupID domain.GroupID, id int64) []byte {
	return []byte(fmt.Sprintf("msg:%019d:%019d", groupID, id))
}

func messagePrefix(groupID domain.GroupID) []byte {
	return []byte(fmt.Sprintf("msg:%019d:", groupID))
}
