package websocket

import "github.com/smsi-platform/smsi-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventReady    Event = "ready"
	EventActivity Event = "activity"
	EventPong     Event = "pong"
)

// ReadyResponse is sent once the activity subscription is live.
type ReadyResponse struct {
	Event   Event  `json:"event"`
	Channel string `json:"channel"`
}

// ActivityResponse carries one audit event to an admin dashboard.
type ActivityResponse struct {
	Event Event            `json:"event"`
	Entry model.AuditEntry `json:"entry"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
