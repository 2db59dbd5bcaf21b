package ws

import "encoding/json"

// InboundEnvelope is the generic envelope for all client-to-server messages.
// The Type field is used for routing; Raw holds the full JSON payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture the raw payload.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// --- Client-to-Server message payloads ---

// AuthMsg is sent by the client as the first message with a bearer JWT.
type AuthMsg struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// SetNameMsg is sent by the client to declare a display name.
type SetNameMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// JoinMsg is sent by the client to attach to a named board session,
// creating it with the configured default dimensions if it does not
// already exist.
type JoinMsg struct {
	Type    string `json:"type"`
	Session string `json:"session"`
}

// LookMsg requests a fresh rendering of the joined board without
// flipping anything.
type LookMsg struct {
	Type string `json:"type"`
}

// FlipMsg is sent by the client to flip the card at (Row, Col).
type FlipMsg struct {
	Type string `json:"type"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

// --- Server-to-Client messages ---

// ErrorMsg is sent when a client action is invalid or fails.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// StateMsg carries a textual board rendering, in the same format
// render.Render produces, after a join, look, or flip.
type StateMsg struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// JoinedMsg confirms a session was joined and reports its dimensions.
type JoinedMsg struct {
	Type    string `json:"type"`
	Session string `json:"session"`
	Rows    int    `json:"rows"`
	Cols    int    `json:"cols"`
}
