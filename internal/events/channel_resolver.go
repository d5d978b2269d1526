package events

import (
	"strings"

	"github.com/google/uuid"
)

// ChannelResolver determines which pub/sub channels an envelope goes to
type ChannelResolver interface {
	ResolveChannels(recipients []uuid.UUID, env Envelope) []string
}

// UserChannelResolver routes every envelope to the personal channel of each
// recipient, so one connection registry keyed by user can deliver it.
type UserChannelResolver struct{}

func NewUserChannelResolver() *UserChannelResolver {
	return &UserChannelResolver{}
}

func (r *UserChannelResolver) ResolveChannels(recipients []uuid.UUID, _ Envelope) []string {
	seen := make(map[uuid.UUID]struct{}, len(recipients))
	channels := make([]string, 0, len(recipients))
	for _, id := range recipients {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		channels = append(channels, UserChannel(id.String()))
	}
	return channels
}

func UserChannel(userID string) string {
	return ChannelPrefixUser + userID
}

// UserIDFromChannel extracts the user id from a personal channel name.
func UserIDFromChannel(channel string) (string, bool) {
	id, ok := strings.CutPrefix(channel, ChannelPrefixUser)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
