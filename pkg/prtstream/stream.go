// Package prtstream delivers repeater log lines to the monitor, either from a
// remote log server over Server-Sent Events or by following a local file.
package prtstream

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/txn2/parrot/pkg/prtcall"
	"github.com/txn2/parrot/pkg/prttui/events"
	"github.com/txn2/parrot/pkg/prttui/state"
)

const (
	// Reconnect backoff settings
	initialReconnectBackoff = 1 * time.Second
	maxReconnectBackoff     = 1 * time.Minute
)

// LineHandler receives complete lines without the trailing newline
type LineHandler func(line string)

// Source produces lines for one connection attempt. Stream calls onConnect
// once the upstream is reachable, then blocks until the connection ends or
// ctx is cancelled. A nil error with a live ctx means the upstream closed
// cleanly and the caller may reconnect.
type Source interface {
	Target() string
	Stream(ctx context.Context, onConnect func(), handle LineHandler) error
}

// ErrStreamClosed is reported when a source ends without an error
var ErrStreamClosed = errors.New("stream closed by upstream")

// StatusSink is the subset of the state store used for stream status
type StatusSink interface {
	SetStreamStatus(name, target string, status state.StreamStatus, errMsg string)
}

// Runner keeps one stream connected, reconnecting with exponential backoff
type Runner struct {
	Stream  prtcall.Stream
	Source  Source
	Handler func(stream prtcall.Stream, line string) prtcall.Result
	Status  StatusSink
	Publish func(events.Event)

	// InitialBackoff and MaxBackoff override the reconnect delays
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	mu      sync.Mutex
	backoff time.Duration
}

// Run connects and reconnects until ctx is cancelled
func (r *Runner) Run(ctx context.Context) {
	name := r.Stream.String()
	target := r.Source.Target()

	for {
		r.setStatus(target, state.StatusConnecting, "")
		log.Infof("Connecting %s stream to %s", name, target)

		onConnect := func() {
			r.resetBackoff()
			r.setStatus(target, state.StatusConnected, "")
			r.publish(events.NewStreamEvent(events.StreamConnected, name, nil))
			log.Infof("Stream %s connected", name)
		}
		err := r.Source.Stream(ctx, onConnect, func(line string) {
			r.Handler(r.Stream, line)
		})

		if ctx.Err() != nil {
			r.setStatus(target, state.StatusStopped, "")
			r.publish(events.NewStreamEvent(events.StreamDisconnected, name, nil))
			return
		}

		if errors.Cause(err) == ErrRotated {
			log.Infof("Stream %s: %v", name, err)
			continue
		}
		if err == nil {
			err = ErrStreamClosed
		}
		log.Errorf("Stream %s (%s): %v", name, target, err)
		r.setStatus(target, state.StatusError, err.Error())
		r.publish(events.NewStreamEvent(events.StreamError, name, err))

		wait := r.nextBackoff()
		log.Infof("Reconnecting %s stream in %v", name, wait)

		select {
		case <-ctx.Done():
			r.setStatus(target, state.StatusStopped, "")
			return
		case <-time.After(wait):
		}
	}
}

func (r *Runner) nextBackoff() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	initial := r.InitialBackoff
	if initial <= 0 {
		initial = initialReconnectBackoff
	}
	maxWait := r.MaxBackoff
	if maxWait <= 0 {
		maxWait = maxReconnectBackoff
	}

	backoff := r.backoff
	if backoff == 0 {
		backoff = initial
	}
	r.backoff = backoff * 2
	if r.backoff > maxWait {
		r.backoff = maxWait
	}
	if backoff > maxWait {
		backoff = maxWait
	}
	return backoff
}

func (r *Runner) resetBackoff() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.backoff != 0 {
		log.Debugf("Resetting reconnect backoff for %s stream", r.Stream)
		r.backoff = 0
	}
}

func (r *Runner) setStatus(target string, status state.StreamStatus, errMsg string) {
	if r.Status != nil {
		r.Status.SetStreamStatus(r.Stream.String(), target, status, errMsg)
	}
}

func (r *Runner) publish(e events.Event) {
	if r.Publish != nil {
		r.Publish(e)
	}
}
