package entity

type EventType string

const (
	EventSessionJoined EventType = "session:joined"
	EventStateChanged  EventType = "session:state"
	EventHintComputed  EventType = "session:hint"
	EventPlayerLeft    EventType = "player:left"
	EventQueued        EventType = "matchmaking:queued"
)

// Event is an outbound notification for the transport to deliver to Recipients.
type Event struct {
	Type       EventType `json:"type"`
	SessionID  string    `json:"session_id,omitempty"`
	PlayerID   string    `json:"player_id,omitempty"`
	Recipients []string  `json:"-"`
	Game       *Game     `json:"game,omitempty"`
	Hint       *Move     `json:"hint,omitempty"`
}
