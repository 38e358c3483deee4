package messgen

import (
	"fmt"
)

// ProtocolID identifies a protocol. Ids must be unique across all protocols
// used in a particular system.
type ProtocolID int16

func (i ProtocolID) Int16() int16 {
	return int16(i)
}

// MessageID identifies a message within its protocol.
type MessageID int16

func (i MessageID) Int16() int16 {
	return int16(i)
}

// PayloadID addresses a message across protocols.
type PayloadID struct {
	Protocol ProtocolID
	Message  MessageID
}

func (id PayloadID) String() string {
	return fmt.Sprintf("%d:%d", id.Protocol, id.Message)
}
