package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DemisRincon/skill-up/internal/domain"
	"github.com/DemisRincon/skill-up/internal/pkg/logger"
)

type ErrorCode string

const (
	CodeValidation       ErrorCode = "VALIDATION"
	CodeNoRecipients     ErrorCode = "NO_RECIPIENTS"
	CodeProfileExists    ErrorCode = "PROFILE_EXISTS"
	CodeBadCredentials   ErrorCode = "BAD_CREDENTIALS"
	CodeNotAssigned      ErrorCode = "NOT_ASSIGNED"
	CodeAlreadyResponded ErrorCode = "ALREADY_RESPONDED"
	CodeNotFound         ErrorCode = "NOT_FOUND"
)

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func WriteError(w http.ResponseWriter, err error, logger *logger.Logger) {
	status, response := mapError(err)

	if isDomainError(err) {
		logger.Warn("domain error",
			"error", err.Error(),
			"code", response.Error.Code,
		)
	} else {
		logger.Error("unexpected error",
			"error", err.Error(),
		)
	}

	writeJSON(w, status, response)
}

func mapError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, errorResponse(CodeValidation, err.Error())

	case errors.Is(err, domain.ErrNoRecipients):
		return http.StatusBadRequest, errorResponse(CodeNoRecipients, err.Error())

	case errors.Is(err, domain.ErrProfileExists):
		return http.StatusBadRequest, errorResponse(CodeProfileExists, err.Error())

	case errors.Is(err, domain.ErrBadCredentials):
		return http.StatusUnauthorized, errorResponse(CodeBadCredentials, err.Error())

	case errors.Is(err, domain.ErrNotAssigned):
		return http.StatusForbidden, errorResponse(CodeNotAssigned, err.Error())

	case errors.Is(err, domain.ErrAlreadyResponded):
		return http.StatusConflict, errorResponse(CodeAlreadyResponded, err.Error())

	case errors.Is(err, domain.ErrSurveyNotFound),
		errors.Is(err, domain.ErrInviteNotFound),
		errors.Is(err, domain.ErrBatchNotFound),
		errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrRoleNotFound):
		return http.StatusNotFound, errorResponse(CodeNotFound, err.Error())

	default:
		return http.StatusInternalServerError, errorResponse("INTERNAL_ERROR", "internal server error")
	}
}

func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNoRecipients) ||
		errors.Is(err, domain.ErrProfileExists) ||
		errors.Is(err, domain.ErrProfileNotFound) ||
		errors.Is(err, domain.ErrRoleNotFound) ||
		errors.Is(err, domain.ErrBadCredentials) ||
		errors.Is(err, domain.ErrNotAssigned) ||
		errors.Is(err, domain.ErrAlreadyResponded) ||
		errors.Is(err, domain.ErrSurveyNotFound) ||
		errors.Is(err, domain.ErrInviteNotFound) ||
		errors.Is(err, domain.ErrBatchNotFound)
}

func errorResponse(code ErrorCode, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
