package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Document is implemented by every stored entity. Normalize runs before
// Validate on every write.
type Document interface {
	Base() *Meta
	Normalize()
	Validate() FieldErrors
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type FieldErrors []FieldError

func (fe FieldErrors) Messages() []string {
	msgs := make([]string, 0, len(fe))
	for _, e := range fe {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Fields.Messages(), ", ")
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: FieldErrors{{Field: field, Message: message}}}
}

var (
	ErrEmptyBody = errors.New("el cuerpo de la petición está vacío")
	ErrNotObject = errors.New("el cuerpo de la petición debe ser un objeto JSON")
)

// ParseAndValidate decodes a JSON body into a fresh document, normalizes it,
// runs the extra checks in order and finally the document's own validator.
// Type mismatches are reported as field errors.
func ParseAndValidate[T any, PT interface {
	*T
	Document
}](body io.Reader, checks ...func(PT) *ValidationError) (PT, error) {
	doc := PT(new(T))
	if err := json.NewDecoder(body).Decode(doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return nil, ErrEmptyBody
		case errors.As(err, &typeErr) && typeErr.Field == "":
			return nil, ErrNotObject
		case errors.As(err, &typeErr) && typeErr.Type == numberType:
			return nil, NewValidationError(typeErr.Field,
				fmt.Sprintf("%s no es un número válido para %s", typeErr.Value, typeErr.Field))
		case errors.As(err, &typeErr):
			return nil, NewValidationError(typeErr.Field,
				fmt.Sprintf("Valor no válido para %s: se esperaba %s", typeErr.Field, typeErr.Type))
		default:
			return nil, fmt.Errorf("JSON inválido: %w", err)
		}
	}
	doc.Normalize()
	for _, check := range checks {
		if verr := check(doc); verr != nil {
			return nil, verr
		}
	}
	if errs := doc.Validate(); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	return doc, nil
}

type checker struct {
	errs FieldErrors
}

func (c *checker) add(field, msg string) {
	c.errs = append(c.errs, FieldError{Field: field, Message: msg})
}

func (c *checker) required(field, value, msg string) bool {
	if value != "" {
		return true
	}
	if msg == "" {
		msg = fmt.Sprintf("El campo %s es obligatorio", field)
	}
	c.add(field, msg)
	return false
}

func (c *checker) maxLen(field, value string, max int, msg string) {
	if len([]rune(value)) > max {
		c.add(field, msg)
	}
}

func (c *checker) number(field string, v *Number, msg string) bool {
	if v != nil {
		return true
	}
	if msg == "" {
		msg = fmt.Sprintf("El campo %s es obligatorio", field)
	}
	c.add(field, msg)
	return false
}

func (c *checker) nonNegative(field string, v *Number, msg string) {
	if v != nil && v.Float() < 0 {
		if msg == "" {
			msg = fmt.Sprintf("El campo %s no puede ser negativo", field)
		}
		c.add(field, msg)
	}
}

func trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
