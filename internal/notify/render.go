package notify

import (
	"time"

	"github.com/sweeney/desk-alarm/internal/display"
	"github.com/sweeney/desk-alarm/internal/led"
)

const (
	footerX = 46
	footerY = 56
)

func (m *Machine) render(now time.Time) {
	if m.state == Idle {
		m.renderIdle(now)
		return
	}
	m.renderActive()
}

// renderActive redraws the current notification. It runs every cycle so
// the panel recovers from any external clear.
func (m *Machine) renderActive() {
	d := m.deps.Display
	d.Clear()

	switch m.state {
	case DeskError:
		d.DrawText(display.Large, "Desk Error", 0, 0)
		d.DrawText(display.Small, "Desk returning error code", 0, 18)
		d.DrawText(display.Small, "Resolve error to proceed", 0, 38)
	case PreAlarm:
		d.DrawText(display.Large, "Warning", 16, 0)
		d.DrawText(display.Small, "Desk alarm will play soon", 0, 18)
		d.DrawText(display.Small, "Press button to dismiss", 0, 38)
	case Alarm:
		d.DrawText(display.Large, "Desk Alarm", 3, 0)
		d.DrawText(display.Small, "Changing position to", 0, 18)
		d.DrawText(display.Small, positionText(m.cmd.Position), 105, 18)
		d.DrawText(display.Small, "Playing:", 0, 28)
		d.DrawText(display.Small, m.title, 45, 28)
		d.DrawText(display.Small, "Press btn to stop sound", 0, 38)
	case Login:
		d.DrawText(display.Large, "Welcome", 16, 0)
		d.DrawText(display.Small, "Logged in as", 0, 18)
		d.DrawText(display.Small, m.cmd.Username, 65, 18)
		d.DrawText(display.Small, "Press button to dismiss", 0, 38)
	case Logout:
		d.DrawText(display.Large, "Logging out", 0, 0)
		d.DrawText(display.Small, "Have a nice day!", 16, 18)
		d.DrawText(display.Small, "Press button to dismiss", 0, 38)
	}

	d.DrawText(display.Small, m.cfg.Footer, footerX, footerY)
	m.send()
}

// renderIdle shows the clock, redrawn once per second, or the connection
// error view with a pulsing blue LED while the uplink is down.
func (m *Machine) renderIdle(now time.Time) {
	if m.deps.Conn != nil && !m.deps.Conn.IsConnected() {
		if !m.connDown {
			m.connDown = true
			m.connDownAt = now
			m.idleDrawn = false
			m.deps.Logger.Warnw("command uplink down")
		}
		if !m.idleDrawn {
			d := m.deps.Display
			d.Clear()
			d.DrawText(display.Large, "Conn.Error", 0, 0)
			d.DrawText(display.Small, "Cannot connect to app", 0, 18)
			d.DrawText(display.Small, "Resolve error to proceed", 0, 38)
			d.DrawText(display.Small, m.cfg.Footer, footerX, footerY)
			m.send()
			m.idleDrawn = true
		}
		m.setLED(led.Pulse(led.Blue, now.Sub(m.connDownAt)))
		return
	}

	if m.connDown {
		m.connDown = false
		m.idleDrawn = false
		m.setLED(led.Off)
		m.deps.Logger.Infow("command uplink restored")
	}

	local := now.In(m.cfg.Location)
	sec := local.Truncate(time.Second)
	if m.idleDrawn && sec.Equal(m.lastClock) {
		return
	}

	d := m.deps.Display
	d.Clear()
	d.DrawText(display.Large, local.Format("15:04:05"), 24, 10)
	d.DrawText(display.Small, local.Format("Mon 02 Jan 2006"), 26, 34)
	d.DrawText(display.Small, m.cfg.Footer, footerX, footerY)
	m.send()

	m.lastClock = sec
	m.idleDrawn = true
}
