package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apppayment "github.com/Garwin4j/paypal-bridge/internal/application/payment"
	"github.com/Garwin4j/paypal-bridge/internal/config"
	dompay "github.com/Garwin4j/paypal-bridge/internal/domain/payment"
	"github.com/Garwin4j/paypal-bridge/internal/infrastructure/gateway/simulated"
	"github.com/Garwin4j/paypal-bridge/internal/infrastructure/memory"
	"github.com/Garwin4j/paypal-bridge/internal/infrastructure/outbox"
	"github.com/Garwin4j/paypal-bridge/internal/infrastructure/recorder"
	"github.com/Garwin4j/paypal-bridge/internal/logging"
	"github.com/Garwin4j/paypal-bridge/internal/observability"
	"github.com/Garwin4j/paypal-bridge/internal/observability/oteltrace"
	"github.com/Garwin4j/paypal-bridge/internal/observability/prometrics"
	"github.com/Garwin4j/paypal-bridge/internal/observability/telemetry"
	"github.com/Garwin4j/paypal-bridge/internal/observability/zaplogger"
	httppresentation "github.com/Garwin4j/paypal-bridge/internal/presentation/http"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	resolved := config.Resolve(config.FromEnv())

	baseLogger := logging.MustNewLogger("paypal-bridge", string(resolved.Environment))
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	// Without credentials the online environments cannot initialize; fall back
	// to the offline one so the demo always runs.
	if info, err := config.Info(resolved.Environment); err == nil && !info.Offline && resolved.ClientID == "" {
		baseLogger.Warn("no_client_id_falling_back_to_no_network")
		cfg := resolved.Config()
		cfg.Environment = config.EnvironmentNoNetwork
		resolved = config.Resolve(cfg)
	}

	registry := logging.NewRegistry()
	registry.AddLogger(logging.ZapSink(baseLogger))

	metrics := prometrics.New("paypal", "bridge")
	counters := map[observability.MetricKey]observability.Counter{
		observability.MDispatchTotal: metrics.Counter(
			string(observability.MDispatchTotal),
			"Total payment dispatch attempts handed to the gateway.",
			"outcome",
		),
		observability.MResultTotal: metrics.Counter(
			string(observability.MResultTotal),
			"Total terminal payment results by code.",
			"code",
		),
		observability.MEventPublishFailed: metrics.Counter(
			string(observability.MEventPublishFailed),
			"Count of payment event publish failures.",
			"event",
		),
		observability.MGatewayInitFailures: metrics.Counter(
			string(observability.MGatewayInitFailures),
			"Count of failed gateway initializations.",
			"environment",
		),
		observability.MHTTPRequests: metrics.Counter(
			string(observability.MHTTPRequests),
			"Total HTTP requests served.",
			"method", "path", "status",
		),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MDispatchDuration: metrics.Histogram(
			string(observability.MDispatchDuration),
			"Duration of the gateway hand-off in seconds.",
			prometheus.DefBuckets,
			"outcome",
		),
		observability.MHTTPRequestDuration: metrics.Histogram(
			string(observability.MHTTPRequestDuration),
			"Duration of HTTP requests in seconds.",
			prometheus.DefBuckets,
			"method", "path", "status",
		),
	}
	tel := telemetry.New(
		oteltrace.New("paypal-bridge"),
		zaplogger.New(baseLogger),
		counters,
		histograms,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := outbox.NewBus(tel.Logger())
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	attempts := memory.NewAttemptRepository()
	recorder.New(bus, attempts, tel.Logger()).Start()

	gateway := simulated.New(registry)
	service := apppayment.NewService(resolved, gateway, registry, bus, tel)
	if err := service.Init(ctx); err != nil {
		baseLogger.Fatal("gateway_init_failed", zap.Error(err))
	}

	runSamplePayment(ctx, service, baseLogger)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/attempts", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(attempts.List(r.Context()))
	})

	server := &http.Server{
		Addr:    ":8080",
		Handler: httppresentation.ObservabilityMiddleware(tel)(mux),
	}

	go func() {
		baseLogger.Info("http_server_start", zap.String("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Error("http_server_error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("http_server_shutdown_error", zap.Error(err))
	} else {
		baseLogger.Info("http_server_stopped")
	}
}

func runSamplePayment(ctx context.Context, service *apppayment.Service, logger *zap.Logger) {
	done := make(chan dompay.Result, 1)

	p := service.NewPayment().
		SetAmount(12.5).
		SetCurrency("USD").
		SetDescription("demo purchase").
		SetInvoiceNumber("demo-0001").
		SetDetails(2.5, 9, 1)

	err := p.Start(ctx, func(r dompay.Result) { done <- r })
	if err != nil {
		logger.Error("sample_payment_start_failed", zap.Error(err))
		return
	}

	select {
	case r := <-done:
		logger.Info("sample_payment_resolved",
			zap.Int("code", r.Code),
			zap.String("key", r.Key),
			zap.String("message", r.Message),
		)
	case <-time.After(5 * time.Second):
		logger.Warn("sample_payment_still_in_flight")
	case <-ctx.Done():
	}
}
