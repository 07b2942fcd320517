package simulated

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Garwin4j/paypal-bridge/internal/config"
	dompay "github.com/Garwin4j/paypal-bridge/internal/domain/payment"
	"github.com/Garwin4j/paypal-bridge/internal/logging"
)

func initGateway(t *testing.T, env config.Environment) *Gateway {
	t.Helper()
	g := New(logging.NewRegistry())
	g.SetLatency(0)
	cfg := config.Resolve(&config.Config{ClientID: "test-client", Environment: env})
	if err := g.Init(context.Background(), cfg); err != nil {
		t.Fatalf("init: %v", err)
	}
	return g
}

func awaitResult(t *testing.T, results <-chan dompay.Result) dompay.Result {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(time.Second):
		t.Fatalf("no result delivered")
		return dompay.Result{}
	}
}

func TestDispatchRequiresInit(t *testing.T) {
	g := New(nil)
	err := g.Dispatch(context.Background(), dompay.Snapshot{AttemptID: "a"}, nil)
	if err == nil {
		t.Fatalf("dispatch before init should be rejected")
	}
}

func TestInitValidatesEnvironment(t *testing.T) {
	g := New(nil)
	if err := g.Init(context.Background(), config.Resolved{Environment: config.Environment("qa")}); err == nil {
		t.Fatalf("unknown environment accepted")
	}

	// Online environments need a client id; no-network does not.
	if err := g.Init(context.Background(), config.Resolve(&config.Config{Environment: config.EnvironmentProduction})); err == nil {
		t.Fatalf("production without client id accepted")
	}
	if err := g.Init(context.Background(), config.Resolve(&config.Config{Environment: config.EnvironmentNoNetwork})); err != nil {
		t.Fatalf("no-network init: %v", err)
	}
}

func TestNoNetworkResolvesDeterministically(t *testing.T) {
	g := initGateway(t, config.EnvironmentNoNetwork)
	g.SetSuccessRate(0) // must be ignored offline

	results := make(chan dompay.Result, 1)
	snap := dompay.Snapshot{AttemptID: "0f8fad5b-d9cb-469f-a165-70867728950e", Amount: 3, Currency: "USD"}
	if err := g.Dispatch(context.Background(), snap, func(r dompay.Result) { results <- r }); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	r := awaitResult(t, results)
	if !r.Success() {
		t.Fatalf("offline result: %+v", r)
	}
	if !strings.HasPrefix(r.Key, "PAY-MOCK-") {
		t.Fatalf("offline key: %q", r.Key)
	}

	// Same attempt id yields the same mock key.
	if mockKey(snap.AttemptID) != r.Key {
		t.Fatalf("mock key not derived from attempt id: %q vs %q", mockKey(snap.AttemptID), r.Key)
	}
}

func TestSuccessRateOne(t *testing.T) {
	g := initGateway(t, config.EnvironmentSandbox)
	g.SetSuccessRate(1)

	results := make(chan dompay.Result, 1)
	if err := g.Dispatch(context.Background(), dompay.Snapshot{AttemptID: "a1"}, func(r dompay.Result) { results <- r }); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	r := awaitResult(t, results)
	if !r.Success() || r.Key == "" {
		t.Fatalf("result with success rate 1: %+v", r)
	}
}

func TestZeroSuccessRateNeverSucceeds(t *testing.T) {
	g := initGateway(t, config.EnvironmentSandbox)
	g.SetSuccessRate(0)
	g.SetCancelRate(1)

	results := make(chan dompay.Result, 1)
	if err := g.Dispatch(context.Background(), dompay.Snapshot{AttemptID: "a2"}, func(r dompay.Result) { results <- r }); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	r := awaitResult(t, results)
	if r.Code != dompay.CodeCanceled {
		t.Fatalf("result with cancel rate 1: %+v", r)
	}
	if r.Key != "" {
		t.Fatalf("failure carried a key: %+v", r)
	}
}

func TestExactlyOneDeliveryPerDispatch(t *testing.T) {
	g := initGateway(t, config.EnvironmentNoNetwork)

	results := make(chan dompay.Result, 4)
	if err := g.Dispatch(context.Background(), dompay.Snapshot{AttemptID: "a3"}, func(r dompay.Result) { results <- r }); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	awaitResult(t, results)
	select {
	case r := <-results:
		t.Fatalf("second delivery: %+v", r)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDispatchHonorsCanceledContext(t *testing.T) {
	g := initGateway(t, config.EnvironmentSandbox)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.Dispatch(ctx, dompay.Snapshot{AttemptID: "a4"}, nil); err == nil {
		t.Fatalf("dispatch with canceled context accepted")
	}
}
