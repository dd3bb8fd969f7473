package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// OK writes data inside a 200 envelope.
func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{
		Status:  http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    data,
	})
}

// Fail writes err as an error envelope. Request validation failures become 400,
// an *AppError keeps its own status and anything else is reported as a bare 500.
func Fail(c echo.Context, err error) error {
	var verr *ValidationErrors
	if errors.As(err, &verr) {
		return writeErrors(c, http.StatusBadRequest, verr.Fields)
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return writeErrors(c, appErr.Status, []*AppError{appErr})
	}
	return writeErrors(c, http.StatusInternalServerError, []*AppError{
		Errorf(http.StatusInternalServerError, CodeInternal, "something went wrong"),
	})
}

func writeErrors(c echo.Context, status int, errs interface{}) error {
	return c.JSON(status, Envelope{
		Status:  status,
		Message: http.StatusText(status),
		Errors:  errs,
	})
}
