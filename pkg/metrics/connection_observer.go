package metrics

import (
	"context"
	"encoding/hex"
	"time"
)

// ConnectionObserver provides observability hooks for one client handshake
// and the record-layer traffic that follows it. Attach one per Connection
// to automatically record metrics and traces.
type ConnectionObserver struct {
	collector *Collector
	tracer    Tracer
	logger    *Logger
	sessionID string
}

// ConnectionObserverConfig configures a connection observer.
type ConnectionObserverConfig struct {
	Collector *Collector
	Tracer    Tracer
	Logger    *Logger
	SessionID []byte
}

// NewConnectionObserver creates a new connection observer.
func NewConnectionObserver(cfg ConnectionObserverConfig) *ConnectionObserver {
	if cfg.Collector == nil {
		cfg.Collector = Global()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = GetTracer()
	}
	if cfg.Logger == nil {
		cfg.Logger = GetLogger()
	}

	sessionID := ""
	if len(cfg.SessionID) > 0 {
		sessionID = hex.EncodeToString(cfg.SessionID[:min(8, len(cfg.SessionID))])
	}

	return &ConnectionObserver{
		collector: cfg.Collector,
		tracer:    cfg.Tracer,
		logger: cfg.Logger.Named("handshake").With(Fields{
			"session_id": sessionID,
		}),
		sessionID: sessionID,
	}
}

// OnSessionStart should be called when a new connection attempt begins.
func (o *ConnectionObserver) OnSessionStart() {
	o.collector.SessionStarted()
	o.logger.Info("connection started")
}

// OnSessionEnd should be called when a connection is closed cleanly.
func (o *ConnectionObserver) OnSessionEnd() {
	o.collector.SessionEnded()
	o.logger.Info("connection ended")
}

// OnSessionFailed should be called when a handshake fails to establish.
func (o *ConnectionObserver) OnSessionFailed(err error) {
	o.collector.SessionFailed()
	o.logger.Error("handshake failed", Fields{"error": err.Error()})
}

// OnHandshakeStart returns a context and completion function for handshake tracing.
func (o *ConnectionObserver) OnHandshakeStart(ctx context.Context) (context.Context, func(error)) {
	start := time.Now()
	ctx, endSpan := o.tracer.StartSpan(ctx, SpanHandshakeClient, WithSpanKind(SpanKindClient))

	o.logger.Debug("handshake started")

	return ctx, func(err error) {
		duration := time.Since(start)
		o.collector.RecordHandshakeLatency(duration)

		if err != nil {
			o.logger.Error("handshake failed", Fields{
				"error":    err.Error(),
				"duration": duration.String(),
			})
		} else {
			o.logger.Info("handshake completed", Fields{
				"duration": duration.String(),
			})
		}

		endSpan(err)
	}
}

// OnEncrypt records record-layer encryption metrics.
func (o *ConnectionObserver) OnEncrypt(ctx context.Context, plaintextLen int) (context.Context, func(error)) {
	start := time.Now()
	ctx, endSpan := o.tracer.StartSpan(ctx, SpanEncrypt)

	return ctx, func(err error) {
		duration := time.Since(start)
		o.collector.RecordEncryptLatency(duration)

		if err != nil {
			o.collector.RecordEncryptError()
			o.logger.Debug("encrypt failed", Fields{"error": err.Error()})
		} else {
			o.collector.RecordBytesSent(uint64(plaintextLen))
			o.collector.RecordPacketSent()
		}

		endSpan(err)
	}
}

// OnDecrypt records record-layer decryption metrics.
func (o *ConnectionObserver) OnDecrypt(ctx context.Context, ciphertextLen int) (context.Context, func(error)) {
	start := time.Now()
	ctx, endSpan := o.tracer.StartSpan(ctx, SpanDecrypt)

	return ctx, func(err error) {
		duration := time.Since(start)
		o.collector.RecordDecryptLatency(duration)

		if err != nil {
			o.collector.RecordDecryptError()
			o.logger.Debug("decrypt failed", Fields{"error": err.Error()})
		} else {
			o.collector.RecordBytesReceived(uint64(ciphertextLen))
			o.collector.RecordPacketReceived()
		}

		endSpan(err)
	}
}

// OnAuthFailure records a CertificateVerify or Finished verification failure.
func (o *ConnectionObserver) OnAuthFailure() {
	o.collector.RecordAuthFailure()
	o.logger.Warn("authentication failed")
}

// OnProtocolError records a handshake protocol error (unexpected message,
// decode failure, version mismatch).
func (o *ConnectionObserver) OnProtocolError(err error) {
	o.collector.RecordProtocolError()
	o.logger.Error("protocol error", Fields{"error": err.Error()})
}

// Logger returns the observer's logger for custom logging.
func (o *ConnectionObserver) Logger() *Logger {
	return o.logger
}

// --- Instrumented Wrappers ---

// InstrumentedSession wraps record-layer metrics collection around
// encrypt/decrypt calls.
type InstrumentedSession struct {
	observer *ConnectionObserver
}

// NewInstrumentedSession creates a new instrumented session wrapper.
func NewInstrumentedSession(observer *ConnectionObserver) *InstrumentedSession {
	return &InstrumentedSession{observer: observer}
}

// WrapEncrypt wraps an encrypt operation with metrics.
func (s *InstrumentedSession) WrapEncrypt(ctx context.Context, plaintextLen int, fn func() error) error {
	_, done := s.observer.OnEncrypt(ctx, plaintextLen)
	err := fn()
	done(err)
	return err
}

// WrapDecrypt wraps a decrypt operation with metrics.
func (s *InstrumentedSession) WrapDecrypt(ctx context.Context, ciphertextLen int, fn func() error) error {
	_, done := s.observer.OnDecrypt(ctx, ciphertextLen)
	err := fn()
	done(err)
	return err
}

// --- Event Types ---

// EventType represents a type of connection lifecycle event for logging.
type EventType string

const (
	EventSessionStart   EventType = "session.start"
	EventSessionEnd     EventType = "session.end"
	EventSessionFailed  EventType = "session.failed"
	EventHandshakeStart EventType = "handshake.start"
	EventHandshakeEnd   EventType = "handshake.end"
	EventDataSent       EventType = "data.sent"
	EventDataReceived   EventType = "data.received"
	EventAuthFailed     EventType = "security.auth_failed"
	EventError          EventType = "error"
)

// Event represents a structured connection lifecycle event.
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	SessionID string                 `json:"session_id,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// min returns the smaller of two integers.
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
