package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = validator.New()

func init() {
	// Report JSON names so messages match the request body the client sent.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		switch v := fl.Field().Interface().(type) {
		case uuid.UUID:
			return v != uuid.Nil
		case string:
			id, err := uuid.Parse(v)
			return err == nil && id != uuid.Nil
		}
		return false
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []*ErrorResponse{{FailedField: "body", Tag: "invalid", Value: err.Error()}}
	}
	for _, fe := range verrs {
		errors = append(errors, &ErrorResponse{
			FailedField: fe.Field(),
			Tag:         fe.Tag(),
			Value:       fe.Param(),
		})
	}
	return errors
}

// Message renders the first failure as a single client-facing sentence.
func Message(errs []*ErrorResponse) string {
	if len(errs) == 0 {
		return ""
	}
	first := errs[0]
	if first.Value != "" {
		return fmt.Sprintf("Validation failed: field '%s' failed on tag '%s=%s'", first.FailedField, first.Tag, first.Value)
	}
	return fmt.Sprintf("Validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
}
