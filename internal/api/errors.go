package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/david/studio-desk/internal/ingest"
	"github.com/david/studio-desk/internal/studio"
	"github.com/labstack/echo/v4"
)

// Conflict codes let clients tell 409 rejections apart without parsing text.
const (
	codeAlreadyExists     = "already_exists"
	codeIllegalTransition = "illegal_transition"
	codeLocked            = "locked"
	codeConflict          = "conflict"
	codeLockChecks        = "lock_checks"
)

type errorBody struct {
	Detail any `json:"detail"`
}

type conflictDetail struct {
	Message string   `json:"message"`
	Code    string   `json:"code"`
	Errors  []string `json:"errors,omitempty"`
}

// httpErrorHandler renders every handler error as {"detail": ...}.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, detail := classify(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", c.Request().Method, "path", c.Path(), "status", status, "err", err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, errorBody{Detail: detail})
	}
	if writeErr != nil {
		slog.Error("failed to write error response", "err", writeErr)
	}
}

func classify(err error) (int, any) {
	var (
		httpErr     *echo.HTTPError
		notFound    *studio.NotFoundError
		lockChecks  *studio.LockCheckError
		rule        *studio.RuleError
		input       *studio.InputError
		badRequest  *studio.BadRequestError
		validateErr *validationError
	)

	switch {
	case errors.As(err, &httpErr):
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = http.StatusText(httpErr.Code)
		}
		return httpErr.Code, msg
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Error()
	case errors.As(err, &lockChecks):
		return http.StatusConflict, conflictDetail{
			Message: lockChecks.Error(),
			Code:    codeLockChecks,
			Errors:  lockChecks.Problems,
		}
	case errors.As(err, &rule):
		return http.StatusConflict, conflictDetail{Message: rule.Message, Code: conflictCode(rule.Kind)}
	case errors.As(err, &validateErr):
		return http.StatusUnprocessableEntity, validateErr.Error()
	case errors.As(err, &input):
		return http.StatusUnprocessableEntity, input.Error()
	case errors.As(err, &badRequest):
		return http.StatusBadRequest, badRequest.Message
	case errors.Is(err, ingest.ErrEmptyInput), errors.Is(err, ingest.ErrUnsupportedDocument):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, ingest.ErrExtraction), errors.Is(err, ingest.ErrFetch), errors.Is(err, studio.ErrAIUnavailable):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

func conflictCode(kind error) string {
	switch {
	case errors.Is(kind, studio.ErrAlreadyExists):
		return codeAlreadyExists
	case errors.Is(kind, studio.ErrIllegalTransition):
		return codeIllegalTransition
	case errors.Is(kind, studio.ErrLocked):
		return codeLocked
	default:
		return codeConflict
	}
}
