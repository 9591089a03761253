package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var hhmmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	})
	return v
}

// Result is either a validated value or the list of problems found.
type Result[T any] struct {
	Value  T
	Errors []string
}

// OK reports whether validation passed.
func (r Result[T]) OK() bool {
	return len(r.Errors) == 0
}

// First returns the message shown to callers.
func (r Result[T]) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0]
}

// Validate checks v against its validate tags.
func Validate[T any](v T) Result[T] {
	err := validate.Struct(v)
	if err == nil {
		return Result[T]{Value: v}
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Result[T]{Errors: []string{err.Error()}}
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldMessage(fe))
	}
	return Result[T]{Errors: messages}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", field, strings.Join(strings.Fields(fe.Param()), ", "))
	case "email":
		return fmt.Sprintf("%q must be a valid email", field)
	case "min":
		return fmt.Sprintf("%q length must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%q length must be less than or equal to %s characters long", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%q must be a valid date in YYYY-MM-DD format", field)
	case "hhmm":
		return fmt.Sprintf("%q must be a valid time in HH:MM format", field)
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

// decodeAndValidate reads a JSON body into T and validates it. Unknown
// fields are rejected.
func decodeAndValidate[T any](r *http.Request) Result[T] {
	var req T
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return Result[T]{Errors: []string{decodeMessage(err)}}
	}
	return Validate(req)
}

func decodeMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return "Request body is required"
	case errors.As(err, &typeErr):
		return fmt.Sprintf("%q must be a %s", typeErr.Field, typeErr.Type.Kind())
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return fmt.Sprintf("%s is not allowed", field)
	default:
		return "Invalid request body"
	}
}

// SignupRequest is the body of POST /signup.
type SignupRequest struct {
	Title     string `json:"title" validate:"required,oneof=Mr Mrs Miss"`
	FirstName string `json:"firstname" validate:"required"`
	LastName  string `json:"lastname" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TodoRequest is the body of POST /create/todo and PUT /todo/update/{todoId}.
type TodoRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Title       string `json:"title" validate:"required,min=5"`
	Description string `json:"description" validate:"required,min=5,max=5000"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,hhmm"`
}
