// Package validate wraps a shared go-playground validator instance.
package validate

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var instance = validator.New(validator.WithRequiredStructEnabled())

// Struct validates the tagged fields of v and flattens the first failure
// into a plain error suitable for an API response.
func Struct(v any) error {
	err := instance.Struct(v)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		fe := errs[0]
		return fmt.Errorf("field %s failed on the %q rule", fe.Field(), fe.Tag())
	}
	return err
}
