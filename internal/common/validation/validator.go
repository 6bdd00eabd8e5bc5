package validation

import (
	"errors"
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"orderboard/internal/domain"
)

// Validator turns struct tag failures into *domain.ValidationError.
type Validator struct {
	v *validatorv10.Validate
}

// New returns a validator with the orderboard tags registered:
// notblank, order_status, and decimal.Decimal compared as a number.
func New() *Validator {
	v := validatorv10.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		d, ok := field.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}
		f, _ := d.Float64()
		return f
	}, decimal.Decimal{})

	_ = v.RegisterValidation("notblank", func(fl validatorv10.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("order_status", func(fl validatorv10.FieldLevel) bool {
		return domain.Status(strings.TrimSpace(fl.Field().String())).Valid()
	})

	return &Validator{v: v}
}

// Struct validates s and reports every failing field.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		return &domain.ValidationError{Fields: map[string]string{"error": err.Error()}}
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fieldPath(fe.Namespace())] = message(fe)
	}
	return &domain.ValidationError{Fields: fields}
}

// fieldPath drops the top-level struct name: "CreateOrderRequest.dishes[0].id" -> "dishes[0].id".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "gte":
		return "must be >= " + fe.Param()
	case "order_status":
		return "must be one of open, in_progress, done"
	default:
		return "failed " + fe.Tag()
	}
}
