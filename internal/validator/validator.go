package validator

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/yukikurage/project-management-api/internal/errors"
)

var registerOnce sync.Once

// Register configures gin's binding validator: field names in errors come
// from json tags and the custom rules are available. Safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		registerCustomRules(v)
	})
}

// Bind decodes the request into obj and validates it. Failures are returned
// as *apierrors.APIError ready for apierrors.Abort.
func Bind(c *gin.Context, obj interface{}) error {
	err := c.ShouldBind(obj)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if stderrors.As(err, &validationErrors) {
		return apierrors.Validation(Translate(validationErrors))
	}

	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		return apierrors.New(http.StatusRequestEntityTooLarge, "Request body too large")
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &syntaxErr) || stderrors.As(err, &typeErr) || stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
		return apierrors.BadRequest("Malformed request body")
	}

	return apierrors.BadRequest("Invalid request body")
}

// Translate converts validation failures into one {field: message} entry per
// field, in struct order.
func Translate(errs validator.ValidationErrors) []map[string]string {
	fields := make([]map[string]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, map[string]string{fieldName(fe): message(fe)})
	}
	return fields
}

// fieldName strips the top-level struct name from the namespace so nested
// fields read as attachments[0].url.
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "lowercase":
		return "Must be lowercase"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return "Must be a valid URL"
	case "task_status":
		return "Must be one of: to_do, in_progress, done"
	case "trimmed":
		return "Must not start or end with whitespace"
	default:
		return fmt.Sprintf("Invalid value (failed on '%s' tag)", fe.Tag())
	}
}
