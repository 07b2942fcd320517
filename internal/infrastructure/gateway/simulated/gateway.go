package simulated

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/Garwin4j/paypal-bridge/internal/config"
	dompay "github.com/Garwin4j/paypal-bridge/internal/domain/payment"
	"github.com/Garwin4j/paypal-bridge/internal/logging"
	"github.com/google/uuid"
)

const (
	defaultSuccessRate = 0.7
	defaultCancelRate  = 0.15
	defaultLatency     = 50 * time.Millisecond
)

// Gateway simulates the native payment collaborator. Sandbox and production
// dispatches resolve asynchronously after a configurable latency according to
// the configured success and cancel rates; the no-network environment resolves
// deterministically with a mock confirmation key and no simulated failures,
// enabling fully offline test runs.
type Gateway struct {
	mu          sync.Mutex
	random      *rand.Rand
	successRate float64
	cancelRate  float64
	latency     time.Duration
	registry    *logging.Registry
	cfg         config.Resolved
	initialized bool
}

func New(registry *logging.Registry) *Gateway {
	if registry == nil {
		registry = logging.NewRegistry()
	}
	return &Gateway{
		random:      rand.New(rand.NewSource(time.Now().UnixNano())),
		successRate: defaultSuccessRate,
		cancelRate:  defaultCancelRate,
		latency:     defaultLatency,
		registry:    registry,
	}
}

// Init validates and stores the resolved configuration. Repeating it with a
// new configuration is allowed and replaces the previous one.
func (g *Gateway) Init(ctx context.Context, cfg config.Resolved) error {
	_ = ctx

	info, err := config.Info(cfg.Environment)
	if err != nil {
		return err
	}
	if !info.Offline && cfg.ClientID == "" {
		return fmt.Errorf("simulated gateway: client id is required for environment %s", cfg.Environment)
	}

	g.mu.Lock()
	g.cfg = cfg
	g.initialized = true
	g.mu.Unlock()

	if info.Offline {
		g.registry.Logf("simulated gateway ready (offline, no endpoint)")
	} else {
		g.registry.Logf("simulated gateway ready, endpoint %s", info.Endpoint)
	}
	return nil
}

// Dispatch accepts one snapshot and later delivers exactly one result. The
// returned error only reports whether the hand-off was accepted.
func (g *Gateway) Dispatch(ctx context.Context, snap dompay.Snapshot, onResult dompay.ResultCallback) error {
	if onResult == nil {
		onResult = func(dompay.Result) {}
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	g.mu.Lock()
	if !g.initialized {
		g.mu.Unlock()
		return fmt.Errorf("simulated gateway: not initialized")
	}
	cfg := g.cfg
	latency := g.latency
	g.mu.Unlock()

	info, err := config.Info(cfg.Environment)
	if err != nil {
		return err
	}

	g.registry.Logf("simulated gateway accepted attempt %s (%.2f %s)", snap.AttemptID, snap.Amount, snap.Currency)

	go func() {
		if latency > 0 {
			time.Sleep(latency)
		}
		onResult(g.outcome(info, snap))
	}()
	return nil
}

// SetSuccessRate adjusts the simulated success rate (primarily for tests).
func (g *Gateway) SetSuccessRate(rate float64) {
	g.mu.Lock()
	g.successRate = clampRate(rate)
	if g.successRate+g.cancelRate > 1 {
		g.cancelRate = 1 - g.successRate
	}
	g.mu.Unlock()
}

// SetCancelRate adjusts the share of non-successful outcomes reported as user
// cancellation rather than provider failure.
func (g *Gateway) SetCancelRate(rate float64) {
	g.mu.Lock()
	g.cancelRate = clampRate(rate)
	if g.successRate+g.cancelRate > 1 {
		g.successRate = 1 - g.cancelRate
	}
	g.mu.Unlock()
}

// SetLatency adjusts the simulated processing delay before result delivery.
func (g *Gateway) SetLatency(d time.Duration) {
	g.mu.Lock()
	if d < 0 {
		d = 0
	}
	g.latency = d
	g.mu.Unlock()
}

func (g *Gateway) outcome(info config.EnvironmentInfo, snap dompay.Snapshot) dompay.Result {
	if info.Offline {
		return dompay.SuccessResult(mockKey(snap.AttemptID))
	}

	g.mu.Lock()
	draw := g.random.Float64()
	successRate, cancelRate := g.successRate, g.cancelRate
	g.mu.Unlock()

	switch {
	case draw < successRate:
		return dompay.SuccessResult("PAY-" + strings.ToUpper(uuid.NewString()[:13]))
	case draw < successRate+cancelRate:
		return dompay.CanceledResult("user canceled the payment")
	default:
		return dompay.FailedResult("payment declined by provider")
	}
}

// mockKey derives a stable offline confirmation key from the attempt id.
func mockKey(attemptID string) string {
	id := strings.ReplaceAll(attemptID, "-", "")
	if len(id) > 12 {
		id = id[:12]
	}
	return "PAY-MOCK-" + strings.ToUpper(id)
}

func clampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}
