// Command desk-alarm drives a desk notification unit: it shows desk
// errors, alarms and greetings sent by the office backend on a small
// display and RGB LED, plays alarm melodies on a buzzer and lets the user
// dismiss them with a push button.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-co-op/gocron/v2"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sweeney/desk-alarm/internal/api"
	"github.com/sweeney/desk-alarm/internal/button"
	"github.com/sweeney/desk-alarm/internal/command"
	"github.com/sweeney/desk-alarm/internal/demo"
	"github.com/sweeney/desk-alarm/internal/display"
	"github.com/sweeney/desk-alarm/internal/gpio"
	"github.com/sweeney/desk-alarm/internal/httpapi"
	"github.com/sweeney/desk-alarm/internal/led"
	"github.com/sweeney/desk-alarm/internal/mqtt"
	"github.com/sweeney/desk-alarm/internal/notify"
	"github.com/sweeney/desk-alarm/internal/status"
	"github.com/sweeney/desk-alarm/internal/timer"
	"github.com/sweeney/desk-alarm/internal/tone"
	"github.com/sweeney/desk-alarm/internal/web"
)

const (
	eventQueue      = 32
	shutdownTimeout = 5 * time.Second
)

func main() {
	if err := newApp(run).Run(os.Args); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func newApp(action func(Config) error) *cli.App {
	return &cli.App{
		Name:  "desk-alarm",
		Usage: "desk notification controller",
		Flags: flags(),
		Action: func(c *cli.Context) error {
			cfg, err := configFromContext(c)
			if err != nil {
				return err
			}
			return action(cfg)
		},
	}
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

func (c Config) statusConfig() status.Config {
	return status.Config{
		PollMs:      c.Poll.Milliseconds(),
		DebounceMs:  c.Debounce.Milliseconds(),
		TimeoutMs:   c.Timeout.Milliseconds(),
		HeartbeatMs: c.Heartbeat.Milliseconds(),
		Broker:      c.Broker,
		TopicPrefix: c.TopicPrefix,
		Listen:      c.Listen,
		HTTPAddr:    c.HTTPAddr,
		Demo:        c.Demo,
	}
}

func run(cfg Config) error {
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	// Hardware
	chip, err := gpio.NewRealChip(cfg.Chip)
	if err != nil {
		logger.Errorw("open gpio chip", "chip", cfg.Chip, "error", err)
		return fmt.Errorf("init gpio: %w", err)
	}
	defer chip.Close()

	sched := timer.NewClockScheduler(clock.New(), timer.DefaultPoolSize)

	buttons := button.NewRegistry(chip, sched, logger)
	defer buttons.Close()
	btn, err := buttons.Register(cfg.buttonConfig())
	if err != nil {
		return fmt.Errorf("init button: %w", err)
	}

	strip, err := led.NewGPIOStrip(chip, cfg.PinLED, cfg.LEDActiveLow)
	if err != nil {
		logger.Errorw("open rgb led", "pins", cfg.PinLED, "error", err)
		return fmt.Errorf("init led: %w", err)
	}
	defer strip.Close()

	var indicator notify.Indicator
	if cfg.PinIndicator >= 0 {
		ind, err := led.NewIndicator(chip, cfg.PinIndicator, sched, logger)
		if err != nil {
			return fmt.Errorf("init indicator: %w", err)
		}
		defer ind.Close()
		indicator = ind
	}

	buzzer, err := tone.NewPeriphOutput(cfg.PinBuzzer)
	if err != nil {
		logger.Errorw("open buzzer", "pin", cfg.PinBuzzer, "error", err)
		return fmt.Errorf("init buzzer: %w", err)
	}
	defer buzzer.Close()
	player := tone.NewSequencer(buzzer, sched, logger)

	fb, err := display.NewFramebuffer()
	if err != nil {
		return fmt.Errorf("init display: %w", err)
	}

	// Commands and status
	box := command.NewMailbox()
	router := api.NewRouter(box, logger)

	tracker := status.NewTracker(time.Now(), cfg.statusConfig())
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	var (
		publisher mqtt.Publisher
		conn      mqtt.ConnectionStatus
	)
	if cfg.Broker != "" {
		client, err := mqtt.NewRealClient(cfg.Broker, mqttClientID, mqtt.TopicsFor(cfg.TopicPrefix), router, logger)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer client.Close()
		publisher, conn = client, client
		tracker.SetMQTTConnected(client.IsConnected())

		snap := tracker.Snapshot()
		startup := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startup); err != nil {
			logger.Warnw("publish startup event", "error", err)
		}
	}

	// Periodic jobs
	jobs, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer jobs.Shutdown()
	if publisher != nil && cfg.Heartbeat > 0 {
		_, err := jobs.NewJob(
			gocron.DurationJob(cfg.Heartbeat),
			gocron.NewTask(heartbeat(publisher, tracker, conn, logger)),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithName("heartbeat"),
		)
		if err != nil {
			return fmt.Errorf("schedule heartbeat: %w", err)
		}
	}
	if cfg.Demo {
		if _, err := demo.New(box, nil, logger).Schedule(jobs, cfg.DemoPeriod); err != nil {
			return fmt.Errorf("schedule demo: %w", err)
		}
	}
	jobs.Start()

	// Servers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.Listen != "" {
		srv := httpapi.New(cfg.Listen, router, logger)
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil {
				return fmt.Errorf("command api: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return shutdown(srv.Shutdown)
		})
	}
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, fb, logger)
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("status server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return shutdown(srv.Shutdown)
		})
		logger.Infow("http status server listening", "addr", cfg.HTTPAddr)
	}

	events := make(chan notify.Transition, eventQueue)
	if publisher != nil {
		g.Go(func() error {
			pumpEvents(gctx, events, publisher, logger)
			return nil
		})
	}

	machine := notify.New(notify.Config{
		Timeout:  cfg.Timeout,
		Location: cfg.Location,
		Footer:   cfg.Footer,
		Tempo:    cfg.Tempo,
	}, notify.Deps{
		Display:   fb,
		LED:       &trackedStrip{Strip: strip, tracker: tracker},
		Player:    player,
		Presses:   btn,
		Source:    box,
		Conn:      conn,
		Indicator: indicator,
		Observer:  observer(tracker, events, publisher != nil, logger),
		Logger:    logger,
	})

	logger.Infow("started",
		"poll", cfg.Poll,
		"debounce", cfg.Debounce,
		"timeout", cfg.Timeout,
		"broker", cfg.Broker,
		"listen", cfg.Listen,
		"demo", cfg.Demo,
	)

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	loopErr := runLoop(loopDeps{
		machine:   machine,
		tracker:   tracker,
		presses:   btn,
		publisher: publisher,
		conn:      conn,
		logger:    logger,
	}, time.Now, ticker.C, sigCh, gctx.Done())

	player.StopMelody()
	blank(strip, fb, logger)

	cancel()
	if err := g.Wait(); err != nil {
		return err
	}
	return loopErr
}

func shutdown(fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return fn(ctx)
}

// blank turns the LED off and clears the display on the way out.
func blank(strip led.Strip, d display.Sink, logger *zap.SugaredLogger) {
	strip.SetColor(led.Off)
	if err := strip.Show(); err != nil {
		logger.Warnw("turn off led", "error", err)
	}
	d.Clear()
	if err := d.SendBuffer(); err != nil {
		logger.Warnw("clear display", "error", err)
	}
}

// trackedStrip mirrors every shown colour into the status tracker.
type trackedStrip struct {
	led.Strip
	tracker *status.Tracker
	color   led.Color
}

func (s *trackedStrip) SetColor(c led.Color) {
	s.color = c
	s.Strip.SetColor(c)
}

func (s *trackedStrip) Show() error {
	s.tracker.SetLED(s.color.Hex())
	return s.Strip.Show()
}

// observer records transitions and queues them for publishing without
// ever blocking the poll loop.
func observer(tracker *status.Tracker, events chan<- notify.Transition, publish bool, logger *zap.SugaredLogger) func(notify.Transition) {
	return func(tr notify.Transition) {
		tracker.Observe(tr)
		if !publish {
			return
		}
		select {
		case events <- tr:
		default:
			logger.Warnw("event queue full, dropping transition", "from", tr.From, "to", tr.To)
		}
	}
}

func pumpEvents(ctx context.Context, events <-chan notify.Transition, publisher mqtt.Publisher, logger *zap.SugaredLogger) {
	for {
		select {
		case tr := <-events:
			if err := publisher.Publish(tr); err != nil {
				logger.Warnw("publish transition", "to", tr.To, "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func heartbeat(publisher mqtt.Publisher, tracker *status.Tracker, conn mqtt.ConnectionStatus, logger *zap.SugaredLogger) func() {
	return func() {
		if conn != nil {
			tracker.SetMQTTConnected(conn.IsConnected())
		}
		if net := readNetworkInfo(); net != nil {
			tracker.SetNetwork(net)
		}
		snap := tracker.Snapshot()
		logger.Infow("heartbeat", "uptime", snap.Uptime().Truncate(time.Second), "state", snap.State, "presses", snap.Presses)

		event := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "HEARTBEAT",
			RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
		}
		if err := publisher.PublishSystem(event); err != nil {
			logger.Warnw("heartbeat publish", "error", err)
		}
	}
}

type pressCounter interface {
	PressedTotal() uint64
}

type loopDeps struct {
	machine   *notify.Machine
	tracker   *status.Tracker
	presses   pressCounter
	publisher mqtt.Publisher        // nil without a broker
	conn      mqtt.ConnectionStatus // nil without a broker
	logger    *zap.SugaredLogger
}

// runLoop steps the notification machine on every tick until a signal
// arrives or done is closed, then publishes SHUTDOWN.
func runLoop(d loopDeps, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal, done <-chan struct{}) error {
	for {
		select {
		case s := <-sig:
			d.logger.Infow("shutting down", "signal", s)
			d.publishShutdown(now(), signalName(s))
			return nil

		case <-done:
			d.logger.Warnw("service stopped, shutting down")
			d.publishShutdown(now(), "ERROR")
			return nil

		case <-tick:
			d.machine.Step(now())

			d.tracker.SetPresses(d.presses.PressedTotal())
			if d.conn != nil {
				d.tracker.SetMQTTConnected(d.conn.IsConnected())
			}
		}
	}
}

func (d loopDeps) publishShutdown(at time.Time, reason string) {
	if d.publisher == nil {
		return
	}
	if d.conn != nil {
		d.tracker.SetMQTTConnected(d.conn.IsConnected())
	}
	snap := d.tracker.Snapshot()
	event := mqtt.SystemEvent{
		Timestamp:  at,
		Event:      "SHUTDOWN",
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", reason),
	}
	if err := d.publisher.PublishSystem(event); err != nil {
		d.logger.Warnw("publish shutdown event", "error", err)
	} else {
		d.logger.Infow("published shutdown event")
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
