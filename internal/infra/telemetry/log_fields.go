package telemetry

import (
	"time"

	"go.uber.org/zap"
)

const (
	FieldEvent      = "event"
	FieldPrompt     = "prompt"
	FieldResource   = "resource"
	FieldSource     = "source"
	FieldDir        = "dir"
	FieldPath       = "path"
	FieldDurationMs = "duration_ms"
	FieldRequestID  = "request_id"
	FieldTraceID    = "trace_id"
	FieldSpanID     = "span_id"
)

const (
	EventPromptRegistered   = "prompt_registered"
	EventPromptUpdated      = "prompt_updated"
	EventResourceLoaded     = "resource_loaded"
	EventResourceExported   = "resource_exported"
	EventRegistrationFailed = "registration_failed"
	EventRemoteFetchFailed  = "remote_fetch_failed"
	EventReloadComplete     = "reload_complete"
)

func EventField(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

func PromptField(name string) zap.Field {
	return zap.String(FieldPrompt, name)
}

func ResourceField(name string) zap.Field {
	return zap.String(FieldResource, name)
}

func SourceField(label string) zap.Field {
	return zap.String(FieldSource, label)
}

func DirField(dir string) zap.Field {
	return zap.String(FieldDir, dir)
}

func PathField(path string) zap.Field {
	return zap.String(FieldPath, path)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}

func RequestIDField(value string) zap.Field {
	return zap.String(FieldRequestID, value)
}

func TraceIDField(value string) zap.Field {
	return zap.String(FieldTraceID, value)
}

func SpanIDField(value string) zap.Field {
	return zap.String(FieldSpanID, value)
}
