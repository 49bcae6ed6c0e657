package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/desk-alarm/internal/command"
	"github.com/sweeney/desk-alarm/internal/notify"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string         `json:"event,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	State         string         `json:"state"`
	Since         string         `json:"since"`
	Notification  *CommandJSON   `json:"notification,omitempty"`
	LED           string         `json:"led"`
	ButtonPresses uint64         `json:"button_presses"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     string         `json:"start_time"`
	Timestamp     string         `json:"timestamp"`
	MQTT          MQTTStatus     `json:"mqtt"`
	Shown         map[string]int `json:"shown_counts"`
	Dismissed     map[string]int `json:"dismissed_counts"`
	Network       *NetworkJSON   `json:"network,omitempty"`
	Config        ConfigJSON     `json:"config"`
}

// CommandJSON describes the command behind the current notification.
type CommandJSON struct {
	Kind     string `json:"kind"`
	Position int    `json:"position,omitempty"`
	Melody   string `json:"melody,omitempty"`
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	TimeoutMs   int64  `json:"timeout_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	TopicPrefix string `json:"topic_prefix"`
	Listen      string `json:"listen"`
	HTTPAddr    string `json:"http_addr"`
	Demo        bool   `json:"demo,omitempty"`
}

// FormatCommand returns the JSON form of cmd, or nil for an empty command.
func FormatCommand(cmd command.Command, title string) *CommandJSON {
	if cmd.Kind == command.None {
		return nil
	}
	c := &CommandJSON{Kind: cmd.Kind.String()}
	switch cmd.Kind {
	case command.Alarm:
		c.Position = cmd.Position
		c.Melody = string(cmd.Melody)
		c.Title = title
	case command.Login:
		c.Username = cmd.Username
	}
	return c
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		State:         snap.State.String(),
		Since:         snap.Since.UTC().Format(time.RFC3339),
		Notification:  FormatCommand(snap.Command, snap.MelodyTitle),
		LED:           snap.LED,
		ButtonPresses: snap.Presses,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Shown:         map[string]int{},
		Dismissed:     map[string]int{},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			DebounceMs:  snap.Config.DebounceMs,
			TimeoutMs:   snap.Config.TimeoutMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			TopicPrefix: snap.Config.TopicPrefix,
			Listen:      snap.Config.Listen,
			HTTPAddr:    snap.Config.HTTPAddr,
			Demo:        snap.Config.Demo,
		},
	}
	for _, s := range []notify.State{notify.DeskError, notify.PreAlarm, notify.Alarm, notify.Login, notify.Logout} {
		inner.Shown[s.String()] = snap.Counts.Shown[s]
	}
	for _, r := range []notify.Reason{notify.ReasonButton, notify.ReasonTimeout, notify.ReasonMelodyDone, notify.ReasonCleared} {
		inner.Dismissed[string(r)] = snap.Counts.Dismissed[r]
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
