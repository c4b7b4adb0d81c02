package httperr

import (
	"github.com/gin-gonic/gin"
)

// Stable machine-readable error codes returned in the body.
const (
	CodeNotFound            = "not_found"
	CodeBadRequest          = "bad_request"
	CodeForbidden           = "forbidden"
	CodeQuotaExceeded       = "quota_exceeded"
	CodePaymentInProgress   = "payment_in_progress"
	CodeAmountMismatch      = "amount_mismatch"
	CodePaymentNotCompleted = "payment_not_completed"
	CodeInvalidTier         = "invalid_tier"
	CodeGatewayError        = "gateway_error"
	CodeInternalError       = "internal_error"
	CodeRateLimited         = "rate_limited"
)

type Response struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// AbortWithError writes the error body and keeps err on the gin context so the
// logging middleware can report the cause.
func AbortWithError(c *gin.Context, status int, err error, code, msg string) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status, Message: msg, Code: code}

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
