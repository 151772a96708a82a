// Package prtcall turns raw repeater log lines into structured call and link events.
package prtcall

import (
	"regexp"
	"strings"
	"time"
)

var (
	callsignRegex  = regexp.MustCompile(`\b[A-Z0-9]{1,2}[0-9][A-Z]{1,3}\b`)
	rfRegex        = regexp.MustCompile(`\bRF\b`)
	networkRegex   = regexp.MustCompile(`\bnetwork\b`)
	endOfTxRegex   = regexp.MustCompile(`\bend of transmission\b`)
	timestampRegex = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}\b`)
)

const (
	linkedMarker     = "Linked to "
	disconnectMarker = "Disconnect by remote command"
)

// Classifier converts log lines into events. The zero value is not usable;
// call NewClassifier.
type Classifier struct {
	now func() time.Time
}

// Option configures a Classifier
type Option func(*Classifier)

// WithClock overrides the fallback clock used for lines without a valid timestamp
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClassifier creates a classifier using the wall clock as timestamp fallback
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify inspects one line. Primary stream lines can only produce call
// events, secondary stream lines can only produce link events. Anything
// unrecognized yields an empty Result.
func (c *Classifier) Classify(stream Stream, line string) Result {
	switch stream {
	case StreamPrimary:
		if ev, ok := c.ClassifyCall(line); ok {
			return Result{Call: &ev}
		}
	case StreamSecondary:
		if ev, ok := ClassifyLink(line); ok {
			return Result{Link: &ev}
		}
	}
	return Result{}
}

// ClassifyCall extracts a call event from a line containing a callsign token
func (c *Classifier) ClassifyCall(line string) (CallEvent, bool) {
	callsign := callsignRegex.FindString(line)
	if callsign == "" {
		return CallEvent{}, false
	}

	return CallEvent{
		Timestamp:         c.timestamp(line),
		Source:            sourceOf(line),
		Callsign:          callsign,
		EndOfTransmission: endOfTxRegex.MatchString(line),
	}, true
}

// ClassifyLink extracts a reflector link change from a secondary log line
func ClassifyLink(line string) (LinkEvent, bool) {
	if idx := strings.Index(line, linkedMarker); idx >= 0 {
		return LinkEvent{
			Action: LinkLinked,
			Room:   strings.TrimSpace(line[idx+len(linkedMarker):]),
		}, true
	}
	if strings.Contains(line, disconnectMarker) {
		return LinkEvent{Action: LinkUnlinked}, true
	}
	return LinkEvent{}, false
}

// sourceOf applies RF > network > unknown precedence regardless of marker position
func sourceOf(line string) Source {
	switch {
	case rfRegex.MatchString(line):
		return SourceRF
	case networkRegex.MatchString(line):
		return SourceNetwork
	default:
		return SourceUnknown
	}
}

func (c *Classifier) timestamp(line string) time.Time {
	raw := timestampRegex.FindString(line)
	if raw != "" {
		if ts, err := time.ParseInLocation(TimestampLayout, raw, time.UTC); err == nil {
			return ts
		}
	}
	return c.now().UTC()
}
