package response

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/putridahliana91-coder/senoplan/internal/lib/errs"
)

type Response struct {
	Status   int    `json:"status"`
	Error    string `json:"error,omitempty"`
	Category string `json:"category,omitempty"`
}

const (
	StatusOK = 200
)

func OK() Response {
	return Response{
		Status: StatusOK,
	}
}

func Error(msg string, status int) Response {
	if status == 0 {
		status = http.StatusInternalServerError
	}

	return Response{
		Status: status,
		Error:  msg,
	}
}

// GameError maps a categorized game error onto the envelope so clients can
// distinguish validation rejections from blocked-account rejections.
func GameError(err error) Response {
	switch errs.KindOf(err) {
	case errs.Validation:
		return Response{
			Status:   http.StatusUnprocessableEntity,
			Error:    errs.MessageOf(err),
			Category: errs.Validation.String(),
		}
	case errs.Blocked:
		return Response{
			Status:   http.StatusForbidden,
			Error:    errs.MessageOf(err),
			Category: errs.Blocked.String(),
		}
	default:
		return Response{
			Status: http.StatusInternalServerError,
			Error:  errs.MessageOf(err),
		}
	}
}

func ValidationError(errors validator.ValidationErrors) Response {
	var errMsgs []string

	for _, err := range errors {
		switch err.ActualTag() {
		case "required":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is required", err.Field()))
		case "min":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is below the minimum", err.Field()))
		case "max":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is above the maximum", err.Field()))
		default:
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is invalid", err.Field()))
		}
	}

	return Response{
		Status:   http.StatusBadRequest,
		Error:    strings.Join(errMsgs, ", "),
		Category: errs.Validation.String(),
	}
}
