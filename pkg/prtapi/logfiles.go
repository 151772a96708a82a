package prtapi

import (
	"regexp"
	"time"

	"github.com/pkg/errors"

	"github.com/txn2/parrot/pkg/prtapi/types"
	"github.com/txn2/parrot/pkg/prtstream"
)

var overrideRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// LogFiles locates repeater logs on disk. File, when set, is the default
// log; otherwise the newest Prefix file in Dir is used. Overrides always
// resolve to the newest "<override>-*.log" in Dir.
type LogFiles struct {
	Dir          string
	File         string
	Prefix       string
	PollInterval time.Duration
}

// Path resolves the log file for override
func (l *LogFiles) Path(override string) (string, error) {
	if override != "" {
		if !overrideRegex.MatchString(override) {
			return "", errors.Wrapf(types.ErrInvalidOverride, "%q", override)
		}
		return prtstream.ResolveLogFile(l.Dir, override)
	}
	if l.File != "" {
		return l.File, nil
	}
	return prtstream.ResolveLogFile(l.Dir, l.Prefix)
}

// Tail returns the last lines of the resolved log, filtered after the tail is taken
func (l *LogFiles) Tail(lines int, filter, override string) ([]string, error) {
	path, err := l.Path(override)
	if err != nil {
		return nil, err
	}
	return prtstream.TailLines(path, lines, filter)
}

// Follow returns a source positioned at the end of the resolved log.
// Prefix based logs follow daily rotation.
func (l *LogFiles) Follow(override string) (prtstream.Source, error) {
	// resolve once so a missing log is reported before streaming starts
	if _, err := l.Path(override); err != nil {
		return nil, err
	}

	src := &prtstream.FileSource{
		Dir:          l.Dir,
		Prefix:       override,
		PollInterval: l.PollInterval,
	}
	if override == "" {
		if l.File != "" {
			src.Path = l.File
		} else {
			src.Prefix = l.Prefix
		}
	}
	return src, nil
}

var _ types.LogReader = (*LogFiles)(nil)
