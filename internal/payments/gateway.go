package payments

import "context"

// Status is the gateway's view of a checkout attempt.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

type InitiateParams struct {
	TransactionID string
	Amount        float64
	Currency      string
	Description   string
	CustomerName  string
	CustomerEmail string
}

// Session is what the gateway hands back on initiation: where to send the
// customer and the provider-side id used for later verification.
type Session struct {
	ProviderSessionID string
	PaymentURL        string
}

// Gateway abstracts the remote payment provider. Implementations must treat
// Verify as safe to call repeatedly.
type Gateway interface {
	Initiate(ctx context.Context, p InitiateParams) (Session, error)
	Verify(ctx context.Context, providerSessionID string) (Status, error)
}
