package prtstream

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nxadm/tail"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultPollInterval is how often the log directory is checked for a newer
// daily file
const DefaultPollInterval = time.Second

// ResolveLogFile returns the newest "<prefix>-*.log" file in dir, matching
// the daily log naming of MMDVMHost and YSFGateway.
func ResolveLogFile(dir, prefix string) (string, error) {
	if prefix == "" {
		return "", errors.New("log prefix is empty")
	}
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"-*.log"))
	if err != nil {
		return "", errors.Wrap(err, "matching log files")
	}
	if len(matches) == 0 {
		return "", errors.Errorf("no %s-*.log files in %s", prefix, dir)
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	candidates := make([]candidate, 0, len(matches))
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil || fi.IsDir() {
			continue
		}
		candidates = append(candidates, candidate{path: m, mod: fi.ModTime()})
	}
	if len(candidates) == 0 {
		return "", errors.Errorf("no readable %s-*.log files in %s", prefix, dir)
	}

	// Newest first; date-stamped names break ties
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].mod.Equal(candidates[j].mod) {
			return candidates[i].mod.After(candidates[j].mod)
		}
		return candidates[i].path > candidates[j].path
	})
	return candidates[0].path, nil
}

// TailLines returns the last n lines of path, keeping only those that
// contain filter when it is set. Filtering happens after the tail is taken.
func TailLines(path string, n int, filter string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer func() { _ = f.Close() }()

	if n <= 0 {
		return []string{}, nil
	}

	ring := make([]string, 0, min(n, 1024))
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSpace(line)
			if len(ring) == n {
				ring = append(ring[1:], line)
			} else {
				ring = append(ring, line)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", path)
		}
	}

	if filter == "" {
		return ring, nil
	}
	result := make([]string, 0, len(ring))
	for _, line := range ring {
		if strings.Contains(line, filter) {
			result = append(result, line)
		}
	}
	return result, nil
}

// ErrRotated is returned when a newer daily log file supersedes the followed one
var ErrRotated = errors.New("log file rotated")

// FileSource follows a log file. With Dir and Prefix set, the newest
// matching file is followed and a newer file (daily rotation) causes a
// reconnect. Otherwise Path is followed as is. Truncation and replacement
// of the followed file are handled by reopening it.
//
// A FileSource remembers where its last connection stopped, so a reconnect
// to the same file resumes there instead of skipping to the end.
type FileSource struct {
	Path   string
	Dir    string
	Prefix string

	// FromStart replays existing content instead of starting at the end
	FromStart bool
	// PollInterval is how often Dir is checked for a newer file
	PollInterval time.Duration

	// a file first seen after a failed or rotated attempt is read from 0
	readFromStart bool
	lastPath      string
	lastOffset    int64
}

// Target describes the followed file
func (s *FileSource) Target() string {
	if s.Path != "" {
		return s.Path
	}
	return filepath.Join(s.Dir, s.Prefix+"-*.log")
}

func (s *FileSource) resolve() (string, error) {
	if s.Path != "" {
		return s.Path, nil
	}
	return ResolveLogFile(s.Dir, s.Prefix)
}

// startOffset returns the absolute offset the next connection reads from
func (s *FileSource) startOffset(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, errors.Wrapf(err, "stat %s", path)
	}

	switch {
	case path == s.lastPath:
		if fi.Size() < s.lastOffset {
			log.Infof("%s truncated while disconnected, restarting from beginning", path)
			return 0, nil
		}
		return s.lastOffset, nil
	case s.FromStart || s.readFromStart:
		return 0, nil
	default:
		return fi.Size(), nil
	}
}

// Stream follows the file until ctx is cancelled or a newer log file appears
func (s *FileSource) Stream(ctx context.Context, onConnect func(), handle LineHandler) error {
	path, err := s.resolve()
	if err != nil {
		s.readFromStart = true
		return err
	}

	offset, err := s.startOffset(path)
	if err != nil {
		s.readFromStart = true
		return err
	}

	t, err := tail.TailFile(path, tail.Config{
		Location:  &tail.SeekInfo{Offset: offset, Whence: io.SeekStart},
		ReOpen:    true,
		MustExist: true,
		Poll:      true,
		Follow:    true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		s.readFromStart = true
		return errors.Wrapf(err, "following %s", path)
	}
	defer t.Cleanup()

	s.lastPath = path
	s.lastOffset = offset
	s.readFromStart = false

	if onConnect != nil {
		onConnect()
	}
	log.Debugf("Following %s from offset %d", path, offset)

	// Only a directory source can rotate
	var rotation <-chan time.Time
	if s.Path == "" {
		poll := s.PollInterval
		if poll <= 0 {
			poll = DefaultPollInterval
		}
		ticker := time.NewTicker(poll)
		defer ticker.Stop()
		rotation = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			_ = t.Stop()
			return nil

		case line, ok := <-t.Lines:
			if !ok {
				return errors.Wrapf(t.Stop(), "following %s", path)
			}
			if line.Err != nil {
				_ = t.Stop()
				return errors.Wrapf(line.Err, "reading %s", path)
			}
			s.lastOffset = line.SeekInfo.Offset
			handle(strings.TrimRight(line.Text, "\r"))

		case <-rotation:
			newest, err := ResolveLogFile(s.Dir, s.Prefix)
			if err != nil || newest == path {
				continue
			}
			_ = t.Stop()
			s.readFromStart = true
			return errors.Wrapf(ErrRotated, "newer log file %s", newest)
		}
	}
}
