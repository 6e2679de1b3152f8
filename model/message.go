package model

import (
	"encoding/json"
	"time"
)

// ProtocolVersion identifies the wire format understood by the gateway.
const ProtocolVersion = 1

// Message is a batch of points sent to the gateway in one request.
type Message struct {
	timestamp int64
	points    []Point
}

// NewMessage creates an empty message stamped with the current time.
func NewMessage() *Message {
	return &Message{
		timestamp: time.Now().Unix(),
		points:    make([]Point, 0),
	}
}

// Timestamp returns the Unix time (seconds) the message was generated at.
func (m *Message) Timestamp() int64 {
	return m.timestamp
}

// SetTimestamp overrides the generation time, used when decoding received messages.
func (m *Message) SetTimestamp(ts int64) {
	m.timestamp = ts
}

// ProtocolVersion always returns the ProtocolVersion constant.
func (m *Message) ProtocolVersion() int {
	return ProtocolVersion
}

// DataPoints returns the points in insertion order.
func (m *Message) DataPoints() []Point {
	return m.points
}

// SetDataPoints replaces all points of the message.
func (m *Message) SetDataPoints(points []Point) {
	m.points = points
}

// AddDataPoint appends p, keeping insertion order.
func (m *Message) AddDataPoint(p Point) {
	m.points = append(m.points, p)
}

type messageJSON struct {
	Timestamp    int64   `json:"timestamp"`
	ProtoVersion int     `json:"proto_version"`
	Data         []Point `json:"data"`
}

// MarshalJSON encodes the message in the gateway wire format.
func (m *Message) MarshalJSON() ([]byte, error) {
	data := m.points
	if data == nil {
		data = []Point{}
	}
	return json.Marshal(messageJSON{
		Timestamp:    m.timestamp,
		ProtoVersion: ProtocolVersion,
		Data:         data,
	})
}
