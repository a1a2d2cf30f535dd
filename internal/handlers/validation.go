package handlers

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/models"
)

const validationMessage = "Validation error"

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// validationFailed turns ozzo field errors into a 422 with one entry per
// field, ordered by field name.
func validationFailed(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		var internal validation.InternalError
		if errors.As(err, &internal) {
			return apperr.Internal("Internal server error")
		}
		return apperr.Validation(validationMessage, apperr.FieldError{Field: "body", Message: err.Error()})
	}

	fields := make([]apperr.FieldError, 0, len(errs))
	for field, fieldErr := range errs {
		if fieldErr == nil {
			continue
		}
		fields = append(fields, apperr.FieldError{Field: field, Message: fieldErr.Error()})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return apperr.Validation(validationMessage, fields...)
}

func in(values []string) validation.Rule {
	allowed := make([]interface{}, len(values))
	for i, v := range values {
		allowed[i] = v
	}
	return validation.In(allowed...)
}

// intBetween checks a *int or int inclusively. Unlike validation.Min it
// does not skip zero.
func intBetween(min, max int) validation.Rule {
	return validation.By(func(value interface{}) error {
		v, isNil := validation.Indirect(value)
		if isNil {
			return nil
		}
		n, ok := v.(int)
		if !ok {
			return nil
		}
		if n < min || n > max {
			return fmt.Errorf("must be between %d and %d", min, max)
		}
		return nil
	})
}

// positiveUpTo accepts values in (0, max].
func positiveUpTo(max float64) validation.Rule {
	return validation.By(func(value interface{}) error {
		v, isNil := validation.Indirect(value)
		if isNil {
			return nil
		}
		f, ok := v.(float64)
		if !ok {
			return nil
		}
		if f <= 0 || f > max {
			return fmt.Errorf("must be greater than 0 and at most %g", max)
		}
		return nil
	})
}

// patchValue validates a set Optional and rejects an explicit null.
func patchValue[T any](o models.Optional[T], rules ...validation.Rule) error {
	if !o.Set {
		return nil
	}
	if o.Null {
		return errors.New("cannot be null")
	}
	return validation.Validate(o.Value, rules...)
}

// nullablePatchValue is patchValue for columns that may be cleared.
func nullablePatchValue[T any](o models.Optional[T], rules ...validation.Rule) error {
	if !o.Set || o.Null {
		return nil
	}
	return validation.Validate(o.Value, rules...)
}
