package api

import (
	"net/http"

	"github.com/avidcandu/ChatSnap/internal/handler/httperr"
	"github.com/avidcandu/ChatSnap/internal/pkg/errs"
	"github.com/avidcandu/ChatSnap/internal/usecase"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Checked in order; specific errors precede the classes they are marked with.
var useCaseErrors = []errorMapping{
	{usecase.ErrSessionNotFound, http.StatusNotFound, httperr.CodeNotFound, "Session not found"},
	{usecase.ErrIntentNotFound, http.StatusNotFound, httperr.CodeNotFound, "Payment intent not found"},
	{usecase.ErrMissingIntentID, http.StatusBadRequest, httperr.CodeBadRequest, "Payment intent ID required"},
	{usecase.ErrNoPendingTier, http.StatusBadRequest, httperr.CodeBadRequest, "No pending tier found"},
	{usecase.ErrBadRequest, http.StatusBadRequest, httperr.CodeBadRequest, "Bad request"},
	{usecase.ErrSessionMismatch, http.StatusForbidden, httperr.CodeForbidden, "Payment session mismatch"},
	{usecase.ErrForbidden, http.StatusForbidden, httperr.CodeForbidden, "Payment intent not associated with this session"},
	{usecase.ErrQuotaExceeded, http.StatusForbidden, httperr.CodeQuotaExceeded, "Screenshot limit reached"},
	{usecase.ErrPaymentInProgress, http.StatusBadRequest, httperr.CodePaymentInProgress, "A payment is already in progress"},
	{usecase.ErrAmountMismatch, http.StatusBadRequest, httperr.CodeAmountMismatch, "Payment amount does not match tier price"},
	{usecase.ErrPaymentNotCompleted, http.StatusBadRequest, httperr.CodePaymentNotCompleted, "Payment not completed"},
	{usecase.ErrInvalidTier, http.StatusBadRequest, httperr.CodeInvalidTier, "Invalid pricing tier"},
	{usecase.ErrGateway, http.StatusInternalServerError, httperr.CodeGatewayError, "Payment service unavailable, please try again"},
}

func abortWithUseCaseError(c *gin.Context, err error) {
	for _, m := range useCaseErrors {
		if errs.Is(err, m.target) {
			httperr.AbortWithError(c, m.status, err, m.code, m.message)
			return
		}
	}
	httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternalError, "Internal server error")
}
