package request

type CreatePaymentIntentRequest struct {
	Tier string `json:"tier" binding:"required"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
}
