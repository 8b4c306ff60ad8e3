package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Signalled is the cancellation cause recorded when a signal stops the
// process.
type Signalled struct {
	Signal os.Signal
}

func (s Signalled) Error() string { return "received " + s.Signal.String() }

// WithSignals returns a context cancelled on the first SIGINT or SIGTERM.
// context.Cause reports a Signalled when a signal did the cancelling.
func WithSignals(parent context.Context, log *logrus.Entry) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(ch)
		select {
		case <-ctx.Done():
		case sig := <-ch:
			log.WithField("signal", sig.String()).Info("shutdown requested")
			cancel(Signalled{Signal: sig})
		}
	}()

	return ctx, func() { cancel(context.Canceled) }
}

type step struct {
	name string
	fn   func(context.Context) error
}

// Sequence runs teardown steps in the order they were added, all sharing one
// deadline. A failing step is logged and the rest still run.
type Sequence struct {
	log   *logrus.Entry
	steps []step
}

func NewSequence(log *logrus.Entry) *Sequence {
	return &Sequence{log: log}
}

func (s *Sequence) Add(name string, fn func(context.Context) error) {
	s.steps = append(s.steps, step{name: name, fn: fn})
}

// Run executes every step within timeout and returns the first failure.
func (s *Sequence) Run(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var first error
	for _, st := range s.steps {
		start := time.Now()
		err := st.fn(ctx)
		log := s.log.WithFields(logrus.Fields{"step": st.name, "took": time.Since(start).String()})
		if err != nil {
			log.WithError(err).Error("shutdown step failed")
			if first == nil {
				first = errors.Wrap(err, st.name)
			}
			continue
		}
		log.Debug("shutdown step done")
	}
	return first
}
