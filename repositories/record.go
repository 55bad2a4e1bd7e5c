package repositories

import (
	"chat-room/domain"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Badger values are protobuf wire encoded.
//
//	message Participant { string name = 1; int64 last_seen = 2; }
//	message Message { string id = 1; string from = 2; string to = 3; string text = 4; string type = 5; string time = 6; }
const (
	participantName     protowire.Number = 1
	participantLastSeen protowire.Number = 2

	messageID   protowire.Number = 1
	messageFrom protowire.Number = 2
	messageTo   protowire.Number = 3
	messageText protowire.Number = 4
	messageType protowire.Number = 5
	messageTime protowire.Number = 6
)

func marshalParticipant(p domain.Participant) []byte {
	var b []byte
	b = appendString(b, participantName, p.Name)
	b = protowire.AppendTag(b, participantLastSeen, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.LastSeen.UnixNano()))
	return b
}

func unmarshalParticipant(b []byte) (domain.Participant, error) {
	var p domain.Participant
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, field []byte) int {
		switch {
		case num == participantName && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(field)
			p.Name = v
			return n
		case num == participantLastSeen && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(field)
			p.LastSeen = time.Unix(0, int64(v)).UTC()
			return n
		}
		return protowire.ConsumeFieldValue(num, typ, field)
	})
	return p, err
}

func marshalMessage(m domain.Message) []byte {
	var b []byte
	b = appendString(b, messageID, string(m.ID))
	b = appendString(b, messageFrom, m.From)
	b = appendString(b, messageTo, m.To)
	b = appendString(b, messageText, m.Text)
	b = appendString(b, messageType, string(m.Type))
	b = appendString(b, messageTime, m.Time)
	return b
}

func unmarshalMessage(b []byte) (domain.Message, error) {
	var m domain.Message
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, field []byte) int {
		if typ != protowire.BytesType {
			return protowire.ConsumeFieldValue(num, typ, field)
		}
		v, n := protowire.ConsumeString(field)
		switch num {
		case messageID:
			m.ID = domain.MessageID(v)
		case messageFrom:
			m.From = v
		case messageTo:
			m.To = v
		case messageText:
			m.Text = v
		case messageType:
			m.Type = domain.MessageType(v)
		case messageTime:
			m.Time = v
		}
		return n
	})
	return m, err
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// consumeFields walks every field of b, handing the bytes following each tag to fn.
// fn returns how many bytes it consumed, negative on malformed input.
func consumeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, field []byte) int) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("malformed record tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		m := fn(num, typ, b)
		if m < 0 {
			return fmt.Errorf("malformed record field %d: %w", num, protowire.ParseError(m))
		}
		b = b[m:]
	}
	return nil
}
