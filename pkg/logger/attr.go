package logger

import (
	"log/slog"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Entity records the reindexed entity name under the key "entity".
func Entity(name string) slog.Attr {
	return slog.String("entity", name)
}

// Index records a physical index name under the key "index".
// If name is empty, it returns an empty Attr.
func Index(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("index", name)
}

// Alias records the logical alias under the key "alias".
func Alias(name string) slog.Attr {
	return slog.String("alias", name)
}

// Phase records the pipeline phase under the key "phase".
func Phase(name string) slog.Attr {
	return slog.String("phase", name)
}

// State records the run state under the key "state".
func State(s any) slog.Attr {
	return slog.Any("state", s)
}

// RunID records the run identifier under the key "run_id".
// If id is nil, it returns an empty Attr.
func RunID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("run_id", id)
}

// Records records a record count under the key "records".
func Records(n int) slog.Attr {
	return slog.Int("records", n)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
