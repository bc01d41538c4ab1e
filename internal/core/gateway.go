package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// QRArtifact is the gateway's response to a QR generation request.
// ConfirmationKey is an opaque handle (an md5 in the KHQR protocol) used to
// look the payment up later; it is never treated as proof of payment.
type QRArtifact struct {
	Payload         string `json:"qr_payload"`
	ConfirmationKey string `json:"confirmation_key"`
}

// ConfirmationStatus is the gateway's answer to a confirmation lookup.
type ConfirmationStatus struct {
	Acknowledged bool   `json:"acknowledged"`
	ExternalRef  string `json:"external_ref"`
}

// PaymentGateway is the outbound contract to the external push-payment
// provider. Both calls are bounded by the implementation's HTTP timeout;
// transport failures surface as ErrGatewayUnavailable.
type PaymentGateway interface {
	// GenerateQR requests a payment QR for the given amount, tagged with the
	// sale's invoice number as the billing reference.
	GenerateQR(ctx context.Context, amount decimal.Decimal, billNumber string) (*QRArtifact, error)

	// CheckConfirmation asks the gateway whether the payment behind the given
	// confirmation key has been acknowledged.
	CheckConfirmation(ctx context.Context, confirmationKey string) (*ConfirmationStatus, error)
}
