package prtmonitor

import (
	log "github.com/sirupsen/logrus"

	"github.com/txn2/parrot/pkg/prttui/events"
)

// logHook publishes log entries as LogMessage events for the TUI logs pane
type logHook struct {
	publish func(events.Event)
	levels  []log.Level
}

// LogHook returns a logrus hook feeding this monitor's bus.
// With no levels, info and above are published.
func (m *Monitor) LogHook(levels ...log.Level) log.Hook {
	if len(levels) == 0 {
		levels = []log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel, log.WarnLevel, log.InfoLevel}
	}
	return &logHook{publish: m.bus.Publish, levels: levels}
}

func (h *logHook) Levels() []log.Level {
	return h.levels
}

func (h *logHook) Fire(entry *log.Entry) error {
	var fields map[string]interface{}
	if len(entry.Data) > 0 {
		fields = make(map[string]interface{}, len(entry.Data))
		for k, v := range entry.Data {
			fields[k] = v
		}
	}
	h.publish(events.NewLogEvent(entry.Level, entry.Message, fields))
	return nil
}
