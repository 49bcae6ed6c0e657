// Package status provides a thread-safe status tracker for the desk-alarm
// daemon. It is read by the HTTP status server and the MQTT lifecycle
// events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/desk-alarm/internal/command"
	"github.com/sweeney/desk-alarm/internal/notify"
)

// NetworkInfo contains network state as reported by the host helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	DebounceMs  int64
	TimeoutMs   int64
	HeartbeatMs int64
	Broker      string
	TopicPrefix string
	Listen      string
	HTTPAddr    string
	Demo        bool
}

// Counts tallies notifications shown per state and dismissals per reason.
type Counts struct {
	Shown     map[notify.State]int
	Dismissed map[notify.Reason]int
}

func (c Counts) clone() Counts {
	out := Counts{
		Shown:     make(map[notify.State]int, len(c.Shown)),
		Dismissed: make(map[notify.Reason]int, len(c.Dismissed)),
	}
	for k, v := range c.Shown {
		out.Shown[k] = v
	}
	for k, v := range c.Dismissed {
		out.Dismissed[k] = v
	}
	return out
}

// Snapshot is a point-in-time view of daemon state. It is a value type
// and safe to use after the lock is released.
type Snapshot struct {
	State         notify.State
	Command       command.Command
	MelodyTitle   string
	Since         time.Time
	LED           string
	Presses       uint64
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Since:     startTime,
			StartTime: startTime,
			LED:       "#000000",
			Config:    cfg,
			Counts: Counts{
				Shown:     map[notify.State]int{},
				Dismissed: map[notify.Reason]int{},
			},
		},
	}
}

// Observe records a state machine transition. It is used as the
// machine's observer.
func (t *Tracker) Observe(tr notify.Transition) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.State = tr.To
	t.snap.Since = tr.At
	if tr.To == notify.Idle {
		t.snap.Command = command.Command{}
		t.snap.MelodyTitle = ""
		t.snap.Counts.Dismissed[tr.Reason]++
		return
	}
	t.snap.Command = tr.Command
	t.snap.MelodyTitle = tr.MelodyTitle
	t.snap.Counts.Shown[tr.To]++
}

// SetLED records the colour last shown on the status light.
func (t *Tracker) SetLED(hex string) {
	t.mu.Lock()
	t.snap.LED = hex
	t.mu.Unlock()
}

// SetPresses records the lifetime debounced press count.
func (t *Tracker) SetPresses(n uint64) {
	t.mu.Lock()
	t.snap.Presses = n
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Counts = t.snap.Counts.clone()
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
