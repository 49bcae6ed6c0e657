// Package demo is a local command source that cycles through every
// notification on a fixed period, for bring-up without a backend.
package demo

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/sweeney/desk-alarm/internal/command"
)

// DefaultPeriod is the time between demo commands.
const DefaultPeriod = 10 * time.Second

// DefaultSteps is the demo sequence.
var DefaultSteps = []command.Command{
	{Kind: command.DeskError},
	{Kind: command.Login, Username: "Ronaldinho"},
	{Kind: command.PreAlarm},
	{Kind: command.Alarm, Position: 9999, Melody: 'D'},
	{Kind: command.Logout},
	{Kind: command.DeskErrorEnd},
}

// Poster accepts commands.
type Poster interface {
	Post(cmd command.Command) uint64
}

// Source posts its steps in order, wrapping around.
type Source struct {
	box    Poster
	steps  []command.Command
	logger *zap.SugaredLogger

	mu   sync.Mutex
	next int
}

// New returns a Source over steps, or DefaultSteps when steps is empty.
func New(box Poster, steps []command.Command, logger *zap.SugaredLogger) *Source {
	if len(steps) == 0 {
		steps = DefaultSteps
	}
	return &Source{box: box, steps: steps, logger: logger}
}

// Next posts the next step and returns it.
func (s *Source) Next() command.Command {
	s.mu.Lock()
	cmd := s.steps[s.next]
	s.next = (s.next + 1) % len(s.steps)
	s.mu.Unlock()

	seq := s.box.Post(cmd)
	s.logger.Infow("demo command", "kind", cmd.Kind, "seq", seq)
	return cmd
}

// Schedule registers the cycle on sched, first step immediately.
func (s *Source) Schedule(sched gocron.Scheduler, period time.Duration) (gocron.Job, error) {
	if period <= 0 {
		period = DefaultPeriod
	}
	return sched.NewJob(
		gocron.DurationJob(period),
		gocron.NewTask(func() { s.Next() }),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("demo"),
	)
}
