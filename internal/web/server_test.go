package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/sweeney/desk-alarm/internal/command"
	"github.com/sweeney/desk-alarm/internal/display"
	"github.com/sweeney/desk-alarm/internal/notify"
	"github.com/sweeney/desk-alarm/internal/status"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, frames FrameSource) (*httptest.Server, *status.Tracker) {
	t.Helper()
	cfg := status.Config{
		PollMs:      10,
		DebounceMs:  50,
		TimeoutMs:   10000,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		TopicPrefix: "desk/alarm",
		Listen:      ":80",
		HTTPAddr:    ":8080",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr, frames, zaptest.NewLogger(t).Sugar())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func getJSON(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.Observe(notify.Transition{
		At: start.Add(time.Minute), To: notify.Login, Reason: notify.ReasonCommand,
		Command: command.Command{Kind: command.Login, Username: "Ronaldinho"},
	})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.State != "login" {
		t.Errorf("State: got %q, want login", sj.Status.State)
	}
	if sj.Status.Notification == nil || sj.Status.Notification.Username != "Ronaldinho" {
		t.Errorf("Notification: got %+v", sj.Status.Notification)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q, want tcp://192.168.1.200:1883", sj.Status.MQTT.Broker)
	}
	if sj.Status.Shown["login"] != 1 {
		t.Errorf("Shown[login]: got %d, want 1", sj.Status.Shown["login"])
	}
	if sj.Status.Config.PollMs != 10 {
		t.Errorf("Config.PollMs: got %d, want 10", sj.Status.Config.PollMs)
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.SetNetwork(&status.NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected", SSID: "MyNet"})

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", sj.Status.Network.IP)
	}
}

func TestHTMLEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, brokenFrames{})
	tr.Observe(notify.Transition{
		To: notify.Alarm, Reason: notify.ReasonCommand,
		Command:     command.Command{Kind: command.Alarm, Position: 42, Melody: 'Z'},
		MelodyTitle: "Zelda",
	})
	tr.SetLED("#00ff00")

	for _, path := range []string{"/", "/index.html"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + path)
			if err != nil {
				t.Fatalf("GET %s: %v", path, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != 200 {
				t.Errorf("status: got %d, want 200", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type: got %q, want text/html", ct)
			}
			body, _ := io.ReadAll(resp.Body)
			for _, want := range []string{"alarm", "Zelda", "42", "#00ff00", "/display.png"} {
				if !bytes.Contains(body, []byte(want)) {
					t.Errorf("page missing %q", want)
				}
			}
		})
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestDisplayPNG(t *testing.T) {
	fb, err := display.NewFramebuffer()
	if err != nil {
		t.Fatalf("NewFramebuffer: %v", err)
	}
	fb.DrawText(display.Large, "Desk Alarm", 3, 0)
	fb.SendBuffer()

	ts, _ := newTestServer(t, fb)
	resp, err := http.Get(ts.URL + "/display.png")
	if err != nil {
		t.Fatalf("GET /display.png: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type: got %q, want image/png", ct)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != display.Width || b.Dy() != display.Height {
		t.Errorf("size: got %dx%d, want %dx%d", b.Dx(), b.Dy(), display.Width, display.Height)
	}
}

type brokenFrames struct{}

func (brokenFrames) PNG() ([]byte, error) { return nil, errors.New("no frame") }

func TestDisplayPNGError(t *testing.T) {
	ts, _ := newTestServer(t, brokenFrames{})
	resp, err := http.Get(ts.URL + "/display.png")
	if err != nil {
		t.Fatalf("GET /display.png: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", resp.StatusCode)
	}
}

func TestDisplayNotServedWithoutFrames(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/display.png")
	if err != nil {
		t.Fatalf("GET /display.png: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestCORSHeaders(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/index.json", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with Origin: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin: got %q, want *", got)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t, nil)

	sj1 := getJSON(t, ts.URL+"/index.json")
	if sj1.Status.State != "idle" {
		t.Errorf("State: got %q, want idle", sj1.Status.State)
	}

	tr.Observe(notify.Transition{To: notify.DeskError, Command: command.Command{Kind: command.DeskError}})
	tr.SetPresses(4)

	sj2 := getJSON(t, ts.URL+"/index.json")
	if sj2.Status.State != "desk_error" {
		t.Errorf("State: got %q, want desk_error", sj2.Status.State)
	}
	if sj2.Status.ButtonPresses != 4 {
		t.Errorf("ButtonPresses: got %d, want 4", sj2.Status.ButtonPresses)
	}
}
