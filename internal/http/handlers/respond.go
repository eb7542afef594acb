package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/parkinghub/internal/http/middlewares"
	"github.com/geocoder89/parkinghub/internal/service/account"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, APIError{
		Code:      code,
		Message:   message,
		RequestID: requestIDFrom(ctx),
		Details:   details,
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, "unauthorized", message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// RespondServiceError maps an account error onto the HTTP envelope. Internal
// causes are logged and never written to the client.
func RespondServiceError(ctx *gin.Context, err error) {
	var svcErr *account.Error

	if !errors.As(err, &svcErr) {
		slog.Default().ErrorContext(ctx.Request.Context(), "unhandled service error", "err", err)
		RespondInternal(ctx, "Internal server error")
		return
	}

	switch svcErr.Kind {
	case account.KindValidation:
		RespondBadRequest(ctx, svcErr.Message, nil)
	case account.KindConflict:
		RespondError(ctx, http.StatusBadRequest, "conflict", svcErr.Message, nil)
	case account.KindInvalidCredentials:
		RespondError(ctx, http.StatusBadRequest, "invalid_credentials", svcErr.Message, nil)
	case account.KindUnauthorized:
		RespondUnauthorized(ctx, svcErr.Message)
	case account.KindNotFound:
		RespondNotFound(ctx, svcErr.Message)
	default:
		slog.Default().ErrorContext(ctx.Request.Context(), "request failed",
			"route", ctx.FullPath(),
			"err", svcErr.Err,
		)
		RespondInternal(ctx, svcErr.Message)
	}
}
