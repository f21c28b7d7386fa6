package domain

import (
	"strings"
	"time"
)

type CommandContext struct {
	Room        string
	RoomName    string
	Sender      string
	UserID      string
	IsGroupChat bool
	Message     string
	Timestamp   time.Time
}

func NewCommandContext(room, roomName, sender, userID, message string, isGroupChat bool) *CommandContext {
	return &CommandContext{
		Room:        room,
		RoomName:    roomName,
		Sender:      sender,
		UserID:      userID,
		IsGroupChat: isGroupChat,
		Message:     message,
		Timestamp:   time.Now(),
	}
}

// UserKey returns the stable user identifier, falling back to the sender name
// when the chat event carries no user id.
func (c *CommandContext) UserKey() string {
	if c == nil {
		return ""
	}
	if user := strings.TrimSpace(c.UserID); user != "" {
		return user
	}
	return strings.TrimSpace(c.Sender)
}
