package domain

// Identity is always supplied out of band (a request header), never in the payload.

type RegisterCommand struct {
	Name string `validate:"required"`
}

type SendMessageCommand struct {
	From string
	To   string      `validate:"required"`
	Text string      `validate:"required"`
	Type MessageType `validate:"required,oneof=message private_message status"`
}

type EditMessageCommand struct {
	ID        MessageID
	Requester string
	To        string      `validate:"required"`
	Text      string      `validate:"required"`
	Type      MessageType `validate:"required,oneof=message private_message status"`
}

type ListMessagesCommand struct {
	Requester string
	// Limit keeps only the most recent visible messages when set.
	Limit *int `validate:"omitempty,gt=0"`
}

type DeleteMessageCommand struct {
	ID        MessageID
	Requester string
}
