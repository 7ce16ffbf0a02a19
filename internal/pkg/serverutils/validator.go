package serverutils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError carries the message shown to the client.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Messages for `validate` tags. A field can override them with a `message` tag.
var tagMessages = map[string]string{
	"required": "%s is required",
	"max":      "%s is too long",
	"min":      "%s is too short",
}

func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return err
	}

	fields := make(map[string]string, len(invalid))
	var messages []string
	for _, fe := range invalid {
		msg := fieldMessage(req, fe)
		fields[fe.Field()] = msg
		messages = append(messages, msg)
	}
	return &ValidationError{Message: strings.Join(messages, "; "), Fields: fields}
}

func fieldMessage(req interface{}, fe validator.FieldError) string {
	if msg := customMessage(req, fe.StructField()); msg != "" {
		return msg
	}
	if format, ok := tagMessages[fe.Tag()]; ok {
		return fmt.Sprintf(format, fe.Field())
	}
	return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
}

func customMessage(req interface{}, structField string) string {
	t := reflect.TypeOf(req)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return ""
	}
	f, ok := t.FieldByName(structField)
	if !ok {
		return ""
	}
	return f.Tag.Get("message")
}
