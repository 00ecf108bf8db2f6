package utils

import (
	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

// FieldError is one entry of a 422 validation response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// JSONError writes the unified {"error": message} body and stops the request.
func JSONError(ctx iris.Context, status int, message string) {
	ctx.StopWithJSON(status, iris.Map{"error": message})
}

func CreateInternalServerError(ctx iris.Context) {
	JSONError(ctx, iris.StatusInternalServerError, "Internal server error")
}

// CreateValidationError writes the field-level 422 body.
func CreateValidationError(ctx iris.Context, details []FieldError) {
	ctx.StopWithJSON(iris.StatusUnprocessableEntity, iris.Map{
		"error":   "Validation failed",
		"details": details,
	})
}

// HandleValidationErrors maps a ReadJSON failure to 422 with per-field details
// when it came from the validator, and to 400 for malformed payloads.
func HandleValidationErrors(err error, ctx iris.Context) {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		details := make([]FieldError, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			details = append(details, FieldError{
				Field:   fieldErr.Field(),
				Message: validationMessage(fieldErr),
			})
		}
		CreateValidationError(ctx, details)
		return
	}

	JSONError(ctx, iris.StatusBadRequest, "Invalid request payload")
}

func validationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fieldErr.Param()
	case "max":
		return "must be at most " + fieldErr.Param()
	case "gte":
		return "must be " + fieldErr.Param() + " or greater"
	case "lte":
		return "must be " + fieldErr.Param() + " or less"
	case "oneof":
		return "must be one of " + fieldErr.Param()
	default:
		return "is invalid"
	}
}

// TotalPages implements the page envelope invariant totalPages = ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// JSONPage writes the {page, limit, total, totalPages, data} envelope used by
// every list endpoint.
func JSONPage(ctx iris.Context, data interface{}, page, limit int, total int64) {
	ctx.JSON(iris.Map{
		"page":       page,
		"limit":      limit,
		"total":      total,
		"totalPages": TotalPages(total, limit),
		"data":       data,
	})
}
