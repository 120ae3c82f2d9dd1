// Package service implements validation and orchestration between the HTTP
// handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/unievent-backend/internal/apperr"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Options configures behaviour shared by every service.
type Options struct {
	Log logrus.FieldLogger
	// StoreTimeout bounds each store round trip. Zero means no deadline.
	StoreTimeout time.Duration
}

func (o Options) logger() logrus.FieldLogger {
	if o.Log == nil {
		return logrus.StandardLogger()
	}
	return o.Log
}

// withDeadline applies the store timeout. A call that hits it fails with a
// StoreError whose outcome is unknown.
func (o Options) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.StoreTimeout)
}

// validateStruct runs the struct's validate tags and reports the first
// failure as a ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.Validation("%s failed %q validation", fe.Field(), fe.Tag())
	}
	return apperr.Validation("%v", err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// logOutcome logs a repository result at a level matching its kind: expected
// races at Info, store faults at Error.
func logOutcome(log logrus.FieldLogger, err error, msg string) {
	switch apperr.CodeOf(err) {
	case apperr.CodeStore:
		log.WithError(err).Error(msg + " failed")
	case apperr.CodeValidation, apperr.CodeNotFound:
		log.WithError(err).Debug(msg + " rejected")
	default:
		log.WithField("outcome", apperr.CodeOf(err)).Info(msg + " refused")
	}
}

func requireID(name string, id int64) error {
	if id <= 0 {
		return apperr.Validation("%s must be positive", name)
	}
	return nil
}
