package logging

import "log/slog"

// Common field names for consistent logging across the service.
const (
	FieldService      = "service"
	FieldError        = "error"
	FieldMessageID    = "message_id"
	FieldResourceType = "resource_type"
	FieldMessageType  = "message_type"
	FieldProcessor    = "processor"
	FieldMetric       = "metric"
	FieldUniqueID     = "unique_id"
	FieldStatus       = "status"
	FieldPass         = "pass"
	FieldDuration     = "duration_ms"
	FieldStream       = "stream"
	FieldReason       = "reason"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// MessageID returns a slog attribute for the inbound notification id.
func MessageID(id string) slog.Attr {
	return slog.String(FieldMessageID, id)
}

// ResourceType returns a slog attribute for the notification resource type.
func ResourceType(t string) slog.Attr {
	return slog.String(FieldResourceType, t)
}

// MessageType returns a slog attribute for the notification message type.
func MessageType(t string) slog.Attr {
	return slog.String(FieldMessageType, t)
}

// Processor returns a slog attribute for a processor variant name.
func Processor(name string) slog.Attr {
	return slog.String(FieldProcessor, name)
}

// Metric returns a slog attribute for an outbound metric name.
func Metric(name string) slog.Attr {
	return slog.String(FieldMetric, name)
}

// UniqueID returns a slog attribute for an outbound idempotency id.
func UniqueID(id string) slog.Attr {
	return slog.String(FieldUniqueID, id)
}

// Status returns a slog attribute for a processing status.
func Status(s string) slog.Attr {
	return slog.String(FieldStatus, s)
}

// Pass returns a slog attribute naming the aggregation pass.
func Pass(p string) slog.Attr {
	return slog.String(FieldPass, p)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Stream returns a slog attribute for a messaging stream name.
func Stream(name string) slog.Attr {
	return slog.String(FieldStream, name)
}

// Reason returns a slog attribute for a dead-letter reason.
func Reason(r string) slog.Attr {
	return slog.String(FieldReason, r)
}
