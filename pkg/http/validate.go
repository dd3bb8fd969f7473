package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// ValidationErrors is returned by Bind when the request is malformed.
type ValidationErrors struct {
	Fields []FieldError
}

func (v *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		msgs = append(msgs, f.Message)
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}

// Bind reads path and query parameters into req, applies `default` tags and
// checks `validate` tags. Any failure is a *ValidationErrors.
func Bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return &ValidationErrors{Fields: []FieldError{{Code: "ERR_BIND", Message: bindMessage(err)}}}
	}
	if err := defaults.Set(req); err != nil {
		return fmt.Errorf("apply request defaults: %w", err)
	}

	err := validate.StructCtx(c.Request().Context(), req)
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return err
	}
	out := &ValidationErrors{Fields: make([]FieldError, 0, len(fes))}
	for _, fe := range fes {
		out.Fields = append(out.Fields, FieldError{
			Code:    "ERR_" + strings.ToUpper(fe.Tag()),
			Field:   strings.ToLower(fe.Field()),
			Message: fieldMessage(fe),
			Param:   fe.Param(),
		})
	}
	return out
}

func bindMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fmt.Sprint(he.Message)
	}
	return err.Error()
}

// Templates for the tags used by request models; %[1]s is the field, %[2]s the tag param.
var fieldMessages = map[string]string{
	"required":  "%[1]s is required",
	"lowercase": "%[1]s must be lower case",
	"alpha":     "%[1]s must contain letters only",
	"max":       "%[1]s must be at most %[2]s characters",
	"min":       "%[1]s must be at least %[2]s characters",
	"oneof":     "%[1]s must be one of %[2]s",
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	tmpl, ok := fieldMessages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
	return fmt.Sprintf(tmpl, field, fe.Param())
}
