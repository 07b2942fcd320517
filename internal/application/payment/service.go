package payment

import (
	"context"
	"strconv"
	"time"

	"github.com/Garwin4j/paypal-bridge/internal/config"
	"github.com/Garwin4j/paypal-bridge/internal/domain/event"
	dompay "github.com/Garwin4j/paypal-bridge/internal/domain/payment"
	"github.com/Garwin4j/paypal-bridge/internal/logging"
	"github.com/Garwin4j/paypal-bridge/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	serviceComponent = "payment_service"
	dispatchSpanName = "UC.DispatchPayment"
)

// Service binds the resolved configuration, the gateway, and the logger
// registry together. It is the factory for payment entities: payments created
// by NewPayment dispatch through this service and report exactly one terminal
// result back through the caller's callback.
//
// The configuration is fixed at construction; swapping it means constructing a
// new Service, so there is no shared mutable configuration to race on.
type Service struct {
	cfg      config.Resolved
	gateway  Gateway
	registry *logging.Registry
	bus      event.Publisher

	log    observability.Logger
	tracer observability.Tracer

	dispatches  observability.Counter
	results     observability.Counter
	dispatchDur observability.Histogram
	publishFail observability.Counter
	initFail    observability.Counter
}

// NewService wires a Service. The bus and tel may be nil; a nil registry gets
// replaced by an empty one so diagnostic broadcasting is always safe.
func NewService(cfg config.Resolved, gateway Gateway, registry *logging.Registry, bus event.Publisher, tel observability.Observability) *Service {
	if registry == nil {
		registry = logging.NewRegistry()
	}

	baseLog := observability.NopLogger()
	tracer := observability.NopTracer()
	metrics := observability.NopMetrics()
	if tel != nil {
		baseLog = tel.Logger()
		tracer = tel.Tracer()
		metrics = tel.Metrics()
	}

	return &Service{
		cfg:         cfg,
		gateway:     gateway,
		registry:    registry,
		bus:         bus,
		log:         baseLog.With(observability.F("component", serviceComponent)),
		tracer:      tracer,
		dispatches:  metrics.Counter(observability.MDispatchTotal),
		results:     metrics.Counter(observability.MResultTotal),
		dispatchDur: metrics.Histogram(observability.MDispatchDuration),
		publishFail: metrics.Counter(observability.MEventPublishFailed),
		initFail:    metrics.Counter(observability.MGatewayInitFailures),
	}
}

// Config returns the resolved configuration the service was constructed with.
func (s *Service) Config() config.Resolved { return s.cfg }

// AddLogger registers a diagnostic sink in the shared registry.
func (s *Service) AddLogger(sink logging.Sink) {
	s.registry.AddLogger(sink)
}

// Init performs the one-time gateway setup with the resolved configuration.
// Failures are broadcast through the registry in addition to being returned.
func (s *Service) Init(ctx context.Context) error {
	if err := s.gateway.Init(ctx, s.cfg); err != nil {
		s.initFail.Add(1, observability.L("environment", string(s.cfg.Environment)))
		s.registry.Logf("gateway init failed: %v", err)
		s.log.Error("gateway_init_failed",
			observability.F("environment", string(s.cfg.Environment)),
			observability.F("error", err.Error()),
		)
		return err
	}
	s.registry.Logf("gateway initialized for environment %s", s.cfg.Environment)
	s.log.Info("gateway_initialized",
		observability.F("environment", string(s.cfg.Environment)),
	)
	return nil
}

// NewPayment returns a fresh not-started payment bound to this service's
// gateway and configuration.
func (s *Service) NewPayment() *dompay.Payment {
	return dompay.New(s.dispatchAttempt)
}

func (s *Service) dispatchAttempt(ctx context.Context, snap dompay.Snapshot, onResult dompay.ResultCallback) error {
	logger := s.log.With(
		observability.F("attempt_id", snap.AttemptID),
		observability.F("amount", snap.Amount),
		observability.F("currency", snap.Currency),
	)

	ctx, span := s.tracer.Start(ctx, dispatchSpanName,
		attribute.String("payment.attempt_id", snap.AttemptID),
		attribute.Float64("payment.amount", snap.Amount),
		attribute.String("payment.currency", snap.Currency),
		attribute.String("payment.environment", string(s.cfg.Environment)),
	)
	defer span.End()

	start := time.Now()
	wrapped := func(r dompay.Result) {
		s.observeResult(snap, r)
		if onResult != nil {
			onResult(r)
		}
	}

	err := s.gateway.Dispatch(ctx, snap, wrapped)
	latency := time.Since(start).Seconds()

	outcome := "accepted"
	if err != nil {
		outcome = "rejected"
	}
	s.dispatches.Add(1, observability.L("outcome", outcome))
	s.dispatchDur.Observe(latency, observability.L("outcome", outcome))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DISPATCH_REJECTED")
		s.registry.Logf("payment %s dispatch rejected: %v", snap.AttemptID, err)
		logger.Warn("payment_dispatch_rejected",
			observability.F("error", err.Error()),
		)
		return err
	}

	span.SetStatus(codes.Ok, "DISPATCHED")
	s.registry.Logf("payment %s dispatched", snap.AttemptID)
	logger.Info("payment_dispatched")
	s.publish(ctx, dompay.NewPaymentStartedEvent(snap))
	return nil
}

// observeResult runs on the gateway's delivery path, before the caller's
// callback sees the result.
func (s *Service) observeResult(snap dompay.Snapshot, r dompay.Result) {
	s.results.Add(1, observability.L("code", strconv.Itoa(r.Code)))
	s.registry.Logf("payment %s resolved: code=%d message=%q", snap.AttemptID, r.Code, r.Message)
	s.log.Info("payment_resolved",
		observability.F("attempt_id", snap.AttemptID),
		observability.F("code", r.Code),
		observability.F("success", r.Success()),
	)

	// The dispatch context may be long gone by the time the result arrives.
	s.publish(context.Background(), dompay.NewPaymentResolvedEvent(snap.AttemptID, r))
}

func (s *Service) publish(ctx context.Context, e event.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, e); err != nil {
		s.publishFail.Add(1, observability.L("event", e.EventName()))
		s.log.Warn("event_publish_failed",
			observability.F("event", e.EventName()),
			observability.F("error", err.Error()),
		)
	}
}
