package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"hotel-forecast/internal/dates"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	mustRegister("ddmmyy", func(fl validator.FieldLevel) bool {
		_, err := dates.ParseCompact(fl.Field().String(), dates.LayoutDDMMYY)
		return err == nil
	})
	mustRegister("isodate", func(fl validator.FieldLevel) bool {
		_, err := dates.ParseISO(fl.Field().String())
		return err == nil
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// FieldError is a rejected input field. It is the InputValidationError of the engine.
type FieldError struct {
	Field   string         `json:"field"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

func (e *FieldError) Error() string {
	return e.Message
}

// Errorf builds a FieldError for field with a formatted message.
func Errorf(field, code, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Errors collects every rejected field of one request.
type Errors []*FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

// Fields lists the rejected field names.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for _, fe := range e {
		out = append(out, fe.Field)
	}
	return out
}

// OrNil returns e as an error, or nil when empty.
func (e Errors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Struct fills `default` tags and then validates `validate` tags on req, which must be a
// pointer to a struct.
func Struct(ctx context.Context, req any) error {
	if err := defaults.Set(req); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}
	if err := validate.StructCtx(ctx, req); err != nil {
		return translate(err)
	}
	return nil
}

// Is reports whether err is a FieldError or Errors.
func Is(err error) bool {
	var fe *FieldError
	var fes Errors
	return errors.As(err, &fe) || errors.As(err, &fes)
}

func translate(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	out := make(Errors, 0, len(ves))
	for _, fe := range ves {
		out = append(out, &FieldError{
			Field:   fe.Field(),
			Code:    "ERR_" + strings.ToUpper(fe.Tag()),
			Message: message(fe),
			Params:  params(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", field, fe.Param())
	case "ddmmyy":
		return fmt.Sprintf("%s must be a DDMMYY date (e.g. 150226), got %v", field, fe.Value())
	case "isodate":
		return fmt.Sprintf("%s must be a YYYY-MM-DD date, got %v", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

func params(fe validator.FieldError) map[string]any {
	p := make(map[string]any)
	switch fe.Tag() {
	case "min", "gte":
		p["min"] = fe.Param()
	case "max", "lte":
		p["max"] = fe.Param()
	case "gt":
		p["value"] = fe.Param()
	case "oneof":
		p["options"] = strings.Split(fe.Param(), " ")
	}
	if len(p) == 0 {
		return nil
	}
	return p
}
