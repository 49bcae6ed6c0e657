package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sweeney/desk-alarm/internal/button"
	"github.com/sweeney/desk-alarm/internal/demo"
	"github.com/sweeney/desk-alarm/internal/gpio"
	"github.com/sweeney/desk-alarm/internal/mqtt"
	"github.com/sweeney/desk-alarm/internal/notify"
)

const envPrefix = "DESK_ALARM_"

const (
	flagChip         = "chip"
	flagPinButton    = "pin-button"
	flagButtonLow    = "button-active-low"
	flagPinBuzzer    = "pin-buzzer"
	flagPinLEDR      = "pin-led-r"
	flagPinLEDG      = "pin-led-g"
	flagPinLEDB      = "pin-led-b"
	flagLEDLow       = "led-active-low"
	flagPinIndicator = "pin-indicator"
	flagDebounce     = "debounce"
	flagPoll         = "poll"
	flagTimeout      = "timeout"
	flagTempo        = "tempo"
	flagListen       = "listen"
	flagHTTP         = "http"
	flagBroker       = "broker"
	flagTopicPrefix  = "topic-prefix"
	flagHeartbeat    = "heartbeat"
	flagTZ           = "tz"
	flagFooter       = "footer"
	flagDemo         = "demo"
	flagDemoPeriod   = "demo-period"
	flagDebug        = "debug"
)

const (
	defaultPoll       = 10 * time.Millisecond
	defaultHeartbeat  = 15 * time.Minute
	defaultPinBuzzer  = "GPIO18"
	defaultListenAddr = ":80"
	defaultStatusAddr = ":8080"
	defaultTimezone   = "Local"
	mqttClientID      = "desk-alarm"
)

// Config is the validated daemon configuration.
type Config struct {
	Chip            string
	PinButton       int
	ButtonActiveLow bool
	PinBuzzer       string
	PinLED          [3]int
	LEDActiveLow    bool
	PinIndicator    int

	Debounce  time.Duration
	Poll      time.Duration
	Timeout   time.Duration
	Heartbeat time.Duration
	Tempo     uint

	Listen      string
	HTTPAddr    string
	Broker      string
	TopicPrefix string

	Location *time.Location
	Footer   string

	Demo       bool
	DemoPeriod time.Duration
	Debug      bool
}

// env returns the environment variable bound to a flag.
func env(name string) []string {
	return []string{envPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: flagChip, Value: gpio.DefaultChip, Usage: "GPIO character device", EnvVars: env(flagChip)},
		&cli.IntFlag{Name: flagPinButton, Value: gpio.PinButton, Usage: "line offset of the push button", EnvVars: env(flagPinButton)},
		&cli.BoolFlag{Name: flagButtonLow, Usage: "button pulls the line low when pressed (enables pull-up)", EnvVars: env(flagButtonLow)},
		&cli.StringFlag{Name: flagPinBuzzer, Value: defaultPinBuzzer, Usage: "PWM-capable pin name for the buzzer", EnvVars: env(flagPinBuzzer)},
		&cli.IntFlag{Name: flagPinLEDR, Value: gpio.PinLEDRed, Usage: "line offset of the red LED channel", EnvVars: env(flagPinLEDR)},
		&cli.IntFlag{Name: flagPinLEDG, Value: gpio.PinLEDGreen, Usage: "line offset of the green LED channel", EnvVars: env(flagPinLEDG)},
		&cli.IntFlag{Name: flagPinLEDB, Value: gpio.PinLEDBlue, Usage: "line offset of the blue LED channel", EnvVars: env(flagPinLEDB)},
		&cli.BoolFlag{Name: flagLEDLow, Usage: "RGB LED is common-anode", EnvVars: env(flagLEDLow)},
		&cli.IntFlag{Name: flagPinIndicator, Value: gpio.PinIndicator, Usage: "line offset of the press indicator LED (-1 disables)", EnvVars: env(flagPinIndicator)},
		&cli.DurationFlag{Name: flagDebounce, Value: button.DefaultDebounce, Usage: "button debounce time", EnvVars: env(flagDebounce)},
		&cli.DurationFlag{Name: flagPoll, Value: defaultPoll, Usage: "notification loop period", EnvVars: env(flagPoll)},
		&cli.DurationFlag{Name: flagTimeout, Value: notify.DefaultTimeout, Usage: "auto-dismiss time for warnings and greetings", EnvVars: env(flagTimeout)},
		&cli.UintFlag{Name: flagTempo, Usage: "override melody tempo in BPM (0 keeps each melody's own)", EnvVars: env(flagTempo)},
		&cli.StringFlag{Name: flagListen, Value: defaultListenAddr, Usage: "command API address (empty disables)", EnvVars: env(flagListen)},
		&cli.StringFlag{Name: flagHTTP, Value: defaultStatusAddr, Usage: "HTTP status address (empty disables)", EnvVars: env(flagHTTP)},
		&cli.StringFlag{Name: flagBroker, Usage: "MQTT broker URL (empty disables)", EnvVars: env(flagBroker)},
		&cli.StringFlag{Name: flagTopicPrefix, Value: mqtt.DefaultPrefix, Usage: "MQTT topic prefix", EnvVars: env(flagTopicPrefix)},
		&cli.DurationFlag{Name: flagHeartbeat, Value: defaultHeartbeat, Usage: "heartbeat interval (0 disables)", EnvVars: env(flagHeartbeat)},
		&cli.StringFlag{Name: flagTZ, Value: defaultTimezone, Usage: "IANA time zone of the idle clock", EnvVars: env(flagTZ)},
		&cli.StringFlag{Name: flagFooter, Value: notify.DefaultFooter, Usage: "footer text on every screen", EnvVars: env(flagFooter)},
		&cli.BoolFlag{Name: flagDemo, Usage: "cycle through every notification locally", EnvVars: env(flagDemo)},
		&cli.DurationFlag{Name: flagDemoPeriod, Value: demo.DefaultPeriod, Usage: "time between demo notifications", EnvVars: env(flagDemoPeriod)},
		&cli.BoolFlag{Name: flagDebug, Usage: "enable debug logging", EnvVars: env(flagDebug)},
	}
}

func configFromContext(c *cli.Context) (Config, error) {
	loc, err := time.LoadLocation(c.String(flagTZ))
	if err != nil {
		return Config{}, fmt.Errorf("--%s: %w", flagTZ, err)
	}
	cfg := Config{
		Chip:            c.String(flagChip),
		PinButton:       c.Int(flagPinButton),
		ButtonActiveLow: c.Bool(flagButtonLow),
		PinBuzzer:       c.String(flagPinBuzzer),
		PinLED:          [3]int{c.Int(flagPinLEDR), c.Int(flagPinLEDG), c.Int(flagPinLEDB)},
		LEDActiveLow:    c.Bool(flagLEDLow),
		PinIndicator:    c.Int(flagPinIndicator),
		Debounce:        c.Duration(flagDebounce),
		Poll:            c.Duration(flagPoll),
		Timeout:         c.Duration(flagTimeout),
		Heartbeat:       c.Duration(flagHeartbeat),
		Tempo:           c.Uint(flagTempo),
		Listen:          c.String(flagListen),
		HTTPAddr:        c.String(flagHTTP),
		Broker:          c.String(flagBroker),
		TopicPrefix:     c.String(flagTopicPrefix),
		Location:        loc,
		Footer:          c.String(flagFooter),
		Demo:            c.Bool(flagDemo),
		DemoPeriod:      c.Duration(flagDemoPeriod),
		Debug:           c.Bool(flagDebug),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	for name, d := range map[string]time.Duration{
		flagDebounce:   c.Debounce,
		flagPoll:       c.Poll,
		flagTimeout:    c.Timeout,
		flagDemoPeriod: c.DemoPeriod,
	} {
		if d <= 0 {
			return fmt.Errorf("--%s must be positive, got %v", name, d)
		}
	}
	if c.Heartbeat < 0 {
		return fmt.Errorf("--%s must not be negative, got %v", flagHeartbeat, c.Heartbeat)
	}
	if c.PinBuzzer == "" {
		return fmt.Errorf("--%s is required", flagPinBuzzer)
	}

	pins := map[string]int{
		flagPinButton: c.PinButton,
		flagPinLEDR:   c.PinLED[0],
		flagPinLEDG:   c.PinLED[1],
		flagPinLEDB:   c.PinLED[2],
	}
	if c.PinIndicator >= 0 {
		pins[flagPinIndicator] = c.PinIndicator
	}
	seen := map[int]string{}
	for _, name := range []string{flagPinButton, flagPinLEDR, flagPinLEDG, flagPinLEDB, flagPinIndicator} {
		pin, ok := pins[name]
		if !ok {
			continue
		}
		if pin < 0 || pin > button.MaxPin {
			return fmt.Errorf("--%s: pin %d out of range 0..%d", name, pin, button.MaxPin)
		}
		if other, dup := seen[pin]; dup {
			return fmt.Errorf("--%s and --%s both use pin %d", other, name, pin)
		}
		seen[pin] = name
	}
	return nil
}

// buttonConfig maps the daemon config onto the debounced input.
func (c Config) buttonConfig() button.Config {
	bc := button.Config{
		Pin:      c.PinButton,
		Debounce: c.Debounce,
		Edge:     button.PressOnRise,
		Pull:     gpio.PullDown,
		Enabled:  true,
	}
	if c.ButtonActiveLow {
		bc.Edge = button.PressOnFall
		bc.Pull = gpio.PullUp
	}
	return bc
}
