package paystack

// EventChargeSuccess is the only webhook event this application acts on.
// Everything else is acknowledged and ignored.
const EventChargeSuccess = "charge.success"

// Metadata is the custom payload attached when a transaction is
// initialized and echoed back on verification and webhooks.
type Metadata struct {
	UserID string `json:"user_id"`
	Plan   string `json:"plan"`
}

// TransactionData is the provider's record of a charge. Amount is in
// minor units (kobo).
type TransactionData struct {
	Status    string   `json:"status"`
	Reference string   `json:"reference"`
	Amount    int64    `json:"amount"`
	Metadata  Metadata `json:"metadata"`
}

// Event is a webhook delivery.
type Event struct {
	Event string          `json:"event"`
	Data  TransactionData `json:"data"`
}
