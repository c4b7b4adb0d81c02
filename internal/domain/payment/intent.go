package payment

import "github.com/avidcandu/ChatSnap/internal/pkg/errs"

var (
	ErrIntentNotFound = errs.New("payment intent not found")
	ErrGateway        = errs.New("payment gateway failure")
)

// Metadata keys written on every intent at creation time.
const (
	MetadataSessionID = "sessionId"
	MetadataTier      = "tier"
)

type IntentStatus string

const (
	StatusRequiresPaymentMethod IntentStatus = "requires_payment_method"
	StatusRequiresConfirmation  IntentStatus = "requires_confirmation"
	StatusRequiresAction        IntentStatus = "requires_action"
	StatusProcessing            IntentStatus = "processing"
	StatusRequiresCapture       IntentStatus = "requires_capture"
	StatusSucceeded             IntentStatus = "succeeded"
	StatusCanceled              IntentStatus = "canceled"
)

// InProgress reports whether the customer can still complete the intent.
// Any other status, including unknown ones, lets a new checkout replace it.
func (s IntentStatus) InProgress() bool {
	switch s {
	case StatusRequiresPaymentMethod, StatusRequiresConfirmation, StatusRequiresAction, StatusProcessing:
		return true
	default:
		return false
	}
}

func (s IntentStatus) Succeeded() bool {
	return s == StatusSucceeded
}

type CreateIntentRequest struct {
	AmountMinorUnits int64
	Currency         string
	Metadata         map[string]string
}

type CreatedIntent struct {
	ID           string
	ClientSecret string
}

// Intent mirrors the gateway-side state of a payment intent.
type Intent struct {
	ID               string
	Status           IntentStatus
	AmountMinorUnits int64
	Currency         string
	Metadata         map[string]string
}

func (i *Intent) SessionID() string {
	if i.Metadata == nil {
		return ""
	}
	return i.Metadata[MetadataSessionID]
}
