package access

import "otchetnik/internal/config"

// Policy holds the optional allow-lists for chats and users. It is built
// once at startup and never mutated, so checks are pure functions of the
// explicit inputs.
type Policy struct {
	allowedChats map[int64]struct{}
	allowedUsers map[int64]struct{}
}

func NewPolicy(cfg config.AccessConfig) Policy {
	return Policy{
		allowedChats: toSet(cfg.AllowedChatIDs),
		allowedUsers: toSet(cfg.AllowedUserIDs),
	}
}

// AllowChat reports whether the chat may use restricted commands.
// An empty chat allow-list means every chat is permitted.
func (p Policy) AllowChat(chatID int64) bool {
	if len(p.allowedChats) == 0 {
		return true
	}
	_, ok := p.allowedChats[chatID]
	return ok
}

// AllowUser reports whether the user may use restricted commands.
// An empty user allow-list means every user is permitted; an unknown
// sender (userID 0) is rejected when the list is non-empty.
func (p Policy) AllowUser(userID int64) bool {
	if len(p.allowedUsers) == 0 {
		return true
	}
	if userID == 0 {
		return false
	}
	_, ok := p.allowedUsers[userID]
	return ok
}

// Allow combines both checks for commands gated on chat and user.
func (p Policy) Allow(chatID, userID int64) bool {
	return p.AllowChat(chatID) && p.AllowUser(userID)
}

func toSet(ids []int64) map[int64]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
