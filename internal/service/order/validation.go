package order

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Additional-Code/repairhub/internal/entity"
	"github.com/Additional-Code/repairhub/pkg/errorbank"
)

// CreateInput carries the fields a customer supplies for a new order.
type CreateInput struct {
	CustomerID       string              `json:"customer_id" validate:"required,notblank"`
	DeviceBrand      string              `json:"device_brand" validate:"required,notblank"`
	DeviceModel      string              `json:"device_model" validate:"required,notblank"`
	IssueDescription string              `json:"issue_description" validate:"required,notblank"`
	EstimatedPrice   *float64            `json:"estimated_price" validate:"required,gte=0"`
	ServiceType      entity.ServiceType  `json:"service_type" validate:"omitempty,oneof=mobile-technician pickup-delivery"`
	Location         string              `json:"location" validate:"required,notblank"`
	Coordinates      *entity.Coordinates `json:"coordinates"`
	MediaURLs        []string            `json:"media_urls" validate:"omitempty,dive,required,url"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// notblank is a fixed registration; the error can only be a programming mistake.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errorbank.Validation("invalid order", errorbank.WithCause(err))
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = fe.Tag()
	}
	return errorbank.Validation("invalid order", errorbank.WithDetail("fields", fields))
}

// fieldPath drops the struct name prefix: "CreateInput.coordinates.latitude" ->
// "coordinates.latitude".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
