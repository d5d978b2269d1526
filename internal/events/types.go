package events

// Event types follow the format domain.action.

// Message events
const (
	EventTypeMessageCreated = "message.created"
	EventTypeMessageUpdated = "message.updated"
	EventTypeMessageDeleted = "message.deleted"
)

// Conversation events
const (
	EventTypeConversationCreated = "conversation.created"
)

// Participant events
const (
	EventTypeParticipantAdded   = "participant.added"
	EventTypeParticipantRemoved = "participant.removed"
	EventTypeParticipantLeft    = "participant.left"
)

// Aggregate type constants
const (
	AggregateTypeMessage      = "message"
	AggregateTypeConversation = "conversation"
	AggregateTypeParticipant  = "participant"
)

// ChannelPrefixUser prefixes the personal pub/sub channel of each user.
const ChannelPrefixUser = "channel:user:"
