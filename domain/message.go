// Package domain contains core concepts of the chat room.
// This file defines Message events and their visibility rules.
package domain

type MessageID string

type MessageType string

const (
	PublicMessage  MessageType = "message"
	PrivateMessage MessageType = "private_message"
	StatusMessage  MessageType = "status"
)

// Everyone is the broadcast target: a message sent to it is visible to all requesters.
const Everyone = "everyone"

// Status texts emitted on behalf of a participant.
const (
	StatusJoined = "joined"
	StatusLeft   = "left"
)

func (t MessageType) IsValid() bool {
	switch t {
	case PublicMessage, PrivateMessage, StatusMessage:
		return true
	}
	return false
}

// Message is a chat entry. Time is the wall clock of creation or last edit, formatted HH:MM:SS.
type Message struct {
	ID   MessageID
	From string
	To   string
	Text string
	Type MessageType
	Time string
}

// VisibleTo reports whether requester is allowed to read the message.
// Status notices and broadcasts are public, everything else only concerns both ends.
func (m Message) VisibleTo(requester string) bool {
	return m.Type == StatusMessage ||
		m.To == Everyone ||
		m.To == requester ||
		m.From == requester
}

func (m Message) IsStatus() bool {
	return m.Type == StatusMessage
}

// NewStatus builds the system notice announcing that participant joined or left.
func NewStatus(participant, text, at string) Message {
	return Message{
		From: participant,
		To:   Everyone,
		Text: text,
		Type: StatusMessage,
		Time: at,
	}
}
