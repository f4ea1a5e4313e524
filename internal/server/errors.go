package server

import (
	"errors"
	"net/http"
	"strings"

	supplydomain "github.com/frotacloud/fuelstock/internal/supply/domain"
	tankdomain "github.com/frotacloud/fuelstock/internal/tank/domain"
	userdomain "github.com/frotacloud/fuelstock/internal/user/domain"
	vehicledomain "github.com/frotacloud/fuelstock/internal/vehicle/domain"
	"github.com/frotacloud/fuelstock/pkg/db"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isStockConflictError(err):
		// The message carries the live tank numbers for the operator.
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, userdomain.ErrEmailExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, db.ErrPersistence):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isTankValidationError(err),
		isSupplyValidationError(err),
		isUserValidationError(err),
		isVehicleValidationError(err):
		return true
	default:
		return false
	}
}

func isTankValidationError(err error) bool {
	switch {
	case errors.Is(err, tankdomain.ErrInvalidName),
		errors.Is(err, tankdomain.ErrInvalidCapacity),
		errors.Is(err, tankdomain.ErrInvalidQuantity),
		errors.Is(err, tankdomain.ErrNegativeLevel),
		errors.Is(err, tankdomain.ErrNonPositiveCapacity),
		errors.Is(err, tankdomain.ErrOverCapacity),
		errors.Is(err, tankdomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isSupplyValidationError(err error) bool {
	switch {
	case errors.Is(err, supplydomain.ErrInvalidTank),
		errors.Is(err, supplydomain.ErrInvalidVehicle),
		errors.Is(err, supplydomain.ErrInvalidActor),
		errors.Is(err, supplydomain.ErrInvalidDriver),
		errors.Is(err, supplydomain.ErrInvalidQuantity),
		errors.Is(err, supplydomain.ErrInvalidUnitPrice),
		errors.Is(err, supplydomain.ErrInvalidOdometer),
		errors.Is(err, supplydomain.ErrInvalidStatus),
		errors.Is(err, supplydomain.ErrInvalidReference),
		errors.Is(err, supplydomain.ErrInvalidTimeRange),
		errors.Is(err, supplydomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isUserValidationError(err error) bool {
	switch {
	case errors.Is(err, userdomain.ErrInvalidName),
		errors.Is(err, userdomain.ErrInvalidEmail),
		errors.Is(err, userdomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isVehicleValidationError(err error) bool {
	switch {
	case errors.Is(err, vehicledomain.ErrInvalidName),
		errors.Is(err, vehicledomain.ErrInvalidOdometerUnit),
		errors.Is(err, vehicledomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isStockConflictError(err error) bool {
	return errors.Is(err, tankdomain.ErrInsufficientStock) ||
		errors.Is(err, tankdomain.ErrCapacityExceeded)
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, tankdomain.ErrNotFound),
		errors.Is(err, supplydomain.ErrTankNotFound),
		errors.Is(err, supplydomain.ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, vehicledomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error", code
	case status >= http.StatusBadRequest:
		return "client_error", code
	default:
		return "", code
	}
}
