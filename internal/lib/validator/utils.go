package validator

import (
	"errors"
	"fmt"
	"moviecatalog/proj/internal/lib/utils"
	"reflect"
	"sort"
	"strings"

	govalidator "github.com/go-playground/validator/v10"
)

// ValidationError carries per-field messages keyed by the JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func New() *govalidator.Validate {
	return govalidator.New(govalidator.WithRequiredStructEnabled())
}

func getFieldName(obj any, origFieldName string) (fieldName string) {
	t := indirectType(obj)
	field, found := t.FieldByName(origFieldName)
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", origFieldName, t.Name()))
	}
	fieldName = utils.CamelToSnake(origFieldName)
	if tag := field.Tag.Get("json"); tag != "" && tag != "-" {
		if jsonName := strings.Split(tag, ",")[0]; jsonName != "" {
			fieldName = jsonName
		}
	}
	return
}

func indirectType(obj any) reflect.Type {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func ProcessValidationErrors(obj any, errs govalidator.ValidationErrors) map[string]string {
	processedErrors := make(map[string]string)
	for _, e := range errs {
		processedErrors[getFieldName(obj, e.StructField())] = GetErrorMsgForField(obj, e)
	}
	return processedErrors
}

func ValidateStruct(validator *govalidator.Validate, obj any) (validationErrs map[string]string) {
	if err := validator.Struct(obj); err != nil {
		var verrs govalidator.ValidationErrors
		if errors.As(err, &verrs) {
			validationErrs = ProcessValidationErrors(obj, verrs)
		} else {
			validationErrs = map[string]string{"_": err.Error()}
		}
	}
	return
}

// Validate is ValidateStruct returning a *ValidationError, or nil when obj is valid.
func Validate(validator *govalidator.Validate, obj any) error {
	if errs := ValidateStruct(validator, obj); errs != nil {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func GetErrorMsgForField(obj any, err govalidator.FieldError) (errorMsg string) {
	t := indirectType(obj)
	field, found := t.FieldByName(err.StructField())
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", err.StructField(), t.Name()))
	}
	errorMsg = field.Tag.Get("errorMsg")
	if errorMsg == "" {
		switch err.Tag() {
		case "required":
			errorMsg = "This field is required"
		case "max":
			if field.Type.Kind() == reflect.String {
				errorMsg = fmt.Sprintf("The maximum length is %s", err.Param())
			} else {
				errorMsg = fmt.Sprintf("The maximum value is %s", err.Param())
			}
		case "min":
			if field.Type.Kind() == reflect.String {
				errorMsg = fmt.Sprintf("The minimum length is %s", err.Param())
			} else {
				errorMsg = fmt.Sprintf("The minimum value is %s", err.Param())
			}
		case "gte":
			errorMsg = fmt.Sprintf("Value should be greater than or equal to %s", err.Param())
		case "lte":
			errorMsg = fmt.Sprintf("Value should be less than or equal to %s", err.Param())
		case "lt":
			errorMsg = fmt.Sprintf("Value should be less than %s", err.Param())
		case "gt":
			errorMsg = fmt.Sprintf("Value should be greater than %s", err.Param())
		case "oneof":
			errorMsg = fmt.Sprintf("Value should be one of %s", err.Param())
		case "url":
			errorMsg = "Value must be a valid URL"
		default:
			errorMsg = "This field is invalid"
		}
	}
	return
}
