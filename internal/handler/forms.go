package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// fieldErrors maps a form field name to its first validation message.
// The empty key holds errors not tied to a field.
type fieldErrors map[string]string

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type commentForm struct {
	Name  string `form:"name" validate:"required,max=80"`
	Email string `form:"email" validate:"required,email,max=254"`
	Body  string `form:"body" validate:"required,max=5000"`
}

func (f *commentForm) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Body = strings.TrimSpace(f.Body)
}

type emailPostForm struct {
	Name     string `form:"name" validate:"required,max=25"`
	Email    string `form:"email" validate:"required,email,max=254"`
	To       string `form:"to" validate:"required,email,max=254"`
	Comments string `form:"comments" validate:"max=2000"`
}

func (f *emailPostForm) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.To = strings.TrimSpace(f.To)
	f.Comments = strings.TrimSpace(f.Comments)
}

type normalizer interface {
	normalize()
}

// bindForm maps the POST body into form, trims it and validates it.
// An empty result means the form is valid.
func bindForm(c *gin.Context, form normalizer) fieldErrors {
	if err := c.ShouldBindWith(form, binding.FormPost); err != nil {
		return fieldErrors{"": "The submitted form could not be read."}
	}
	form.normalize()

	if err := formValidator.Struct(form); err != nil {
		return translateValidationErrors(err)
	}
	return fieldErrors{}
}

func translateValidationErrors(err error) fieldErrors {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fieldErrors{"": "The submitted form is invalid."}
	}

	out := make(fieldErrors, len(validationErrors))
	for _, fe := range validationErrors {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = validationMessage(fe)
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	default:
		return "Enter a valid value."
	}
}
