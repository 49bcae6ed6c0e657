// Package mqtt publishes notification and lifecycle events and carries
// commands from the broker into the command router.
package mqtt

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sweeney/desk-alarm/internal/notify"
)

// DefaultPrefix is the topic prefix used when none is configured.
const DefaultPrefix = "desk/alarm"

// Topics are the MQTT topics used by the daemon.
type Topics struct {
	Events   string // notification transitions
	System   string // STARTUP, SHUTDOWN, HEARTBEAT, RECONNECTED and the OFFLINE will
	Command  string // inbound commands, same syntax as the TCP request line
	Response string // router replies to inbound commands
}

// TopicsFor derives the topic set from prefix.
func TopicsFor(prefix string) Topics {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Topics{
		Events:   prefix + "/events",
		System:   prefix + "/system",
		Command:  prefix + "/command",
		Response: prefix + "/response",
	}
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a notification transition to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(tr notify.Transition) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// CommandHandler turns a request line into a response body.
// *api.Router satisfies it.
type CommandHandler interface {
	Body(raw string) string
}

// HandleCommand runs an inbound MQTT command through h. A bare path such
// as "/api/alarm?pos=3&mel=D" is accepted as well as a full request line.
func HandleCommand(h CommandHandler, payload []byte) string {
	req := strings.TrimSpace(string(payload))
	if strings.HasPrefix(req, "/") {
		req = "GET " + req
	}
	return h.Body(req)
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Notification NotificationPayload `json:"notification"`
}

// NotificationPayload contains the transition details.
type NotificationPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	State     string `json:"state"`
	Reason    string `json:"reason"`
	Position  int    `json:"position,omitempty"`
	Melody    string `json:"melody,omitempty"`
	Username  string `json:"username,omitempty"`
}

// EventName names a transition: "<STATE>_ON" when a notification is
// shown and "<STATE>_OFF" when it is dismissed.
func EventName(tr notify.Transition) string {
	if tr.To == notify.Idle {
		return strings.ToUpper(tr.From.String()) + "_OFF"
	}
	return strings.ToUpper(tr.To.String()) + "_ON"
}

// FormatPayload creates the JSON payload for a transition.
func FormatPayload(tr notify.Transition) ([]byte, error) {
	p := NotificationPayload{
		Timestamp: tr.At.UTC().Format(time.RFC3339),
		Event:     EventName(tr),
		State:     tr.To.String(),
		Reason:    string(tr.Reason),
		Melody:    tr.MelodyTitle,
	}
	if tr.To == notify.Alarm {
		p.Position = tr.Command.Position
	}
	if tr.To == notify.Login {
		p.Username = tr.Command.Username
	}
	return json.Marshal(Payload{Notification: p})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
