package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/txn2/parrot/pkg/prtapi/types"
	"github.com/txn2/parrot/pkg/prtstream"
)

const (
	defaultReadLines = 100
	maxReadLines     = 10000
)

// LogFileHandler serves raw repeater log files for remote monitors
type LogFileHandler struct {
	reader types.LogReader
}

// NewLogFileHandler creates a new log file handler
func NewLogFileHandler(reader types.LogReader) *LogFileHandler {
	return &LogFileHandler{reader: reader}
}

// ReadLog returns the last lines of the log as a JSON array of strings.
// Filtering is applied to the tail, so fewer than lines may be returned.
// GET /read_log?lines=50&filter=YSF&log_override=YSFGateway
func (h *LogFileHandler) ReadLog(c *gin.Context) {
	if h.reader == nil {
		notReady(c, "Log reader")
		return
	}

	lines := queryCount(c, "lines", defaultReadLines, maxReadLines)
	result, err := h.reader.Tail(lines, c.Query("filter"), c.Query("log_override"))
	if err != nil {
		logFileError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// WatchLog streams lines appended to the log as Server-Sent Events, one
// "data:" field per line. Rotation to a newer daily file is followed.
// GET /watch_log?log_override=YSFGateway
func (h *LogFileHandler) WatchLog(c *gin.Context) {
	if h.reader == nil {
		notReady(c, "Log reader")
		return
	}

	source, err := h.reader.Follow(c.Query("log_override"))
	if err != nil {
		logFileError(c, err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	lines := make(chan string, 256)
	done := make(chan error, 1)
	go func() {
		done <- follow(ctx, source, lines)
	}()

	writeSSEHeaders(c)
	log.Debugf("Watching %s for %s", source.Target(), c.ClientIP())

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case line := <-lines:
			_, _ = fmt.Fprintf(w, "data: %s\n\n", line)
			return true

		case err := <-done:
			if err != nil {
				log.Warnf("Log watch on %s ended: %v", source.Target(), err)
				_, _ = fmt.Fprintf(w, "event: error\ndata: %s\n\n", err.Error())
			}
			return false

		case <-keepalive.C:
			_, _ = fmt.Fprintf(w, ": keepalive\n\n")
			return true

		case <-ctx.Done():
			return false
		}
	})
}

// follow runs source until ctx ends, restarting it after rotation
func follow(ctx context.Context, source prtstream.Source, lines chan<- string) error {
	handle := func(line string) {
		select {
		case lines <- line:
		case <-ctx.Done():
		}
	}

	for {
		err := source.Stream(ctx, nil, handle)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Cause(err) == prtstream.ErrRotated {
			log.Debugf("Log watch: %v", err)
			continue
		}
		if err == nil {
			err = prtstream.ErrStreamClosed
		}
		return err
	}
}

func logFileError(c *gin.Context, err error) {
	switch {
	case errors.Cause(err) == types.ErrInvalidOverride:
		errorResponse(c, http.StatusBadRequest, "INVALID_OVERRIDE", err.Error())
	default:
		errorResponse(c, http.StatusNotFound, "LOG_NOT_FOUND", err.Error())
	}
}
