package payment

import (
	"context"

	"github.com/Garwin4j/paypal-bridge/internal/config"
	dompay "github.com/Garwin4j/paypal-bridge/internal/domain/payment"
)

// Gateway is the outbound port toward the native payment collaborator. The
// collaborator performs the real authorization work (certificates, network,
// UI); this module only owns the hand-off contract.
//
// Init is one-time or idempotently repeatable setup with the resolved
// configuration. Dispatch begins the in-flight phase for one snapshot and
// invokes onResult exactly once on completion; a non-nil return means the
// attempt was not accepted and onResult will never be called.
type Gateway interface {
	Init(ctx context.Context, cfg config.Resolved) error
	Dispatch(ctx context.Context, snap dompay.Snapshot, onResult dompay.ResultCallback) error
}
