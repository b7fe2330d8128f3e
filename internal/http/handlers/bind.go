package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidationDetail is one entry of a 422 detail list. loc is the path to the
// offending value, starting with "body".
type ValidationDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

var phonePattern = regexp.MustCompile(`^[\d\s\-+()]{10,}$`)

var registerOnce sync.Once

// RegisterValidators adds the custom binding rules used by request DTOs to
// gin's validator. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("accepted", func(fl validator.FieldLevel) bool {
			return fl.Field().Kind() == reflect.Bool && fl.Field().Bool()
		})
	})
}

// Normalizer is implemented by DTOs that clean their own input before
// validation runs.
type Normalizer interface {
	Normalize()
}

// BindJSON decodes the body into out, normalizes it and validates it. On
// failure it writes the error response and returns false.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	RegisterValidators()

	if err := json.NewDecoder(ctx.Request.Body).Decode(out); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(ctx, http.StatusRequestEntityTooLarge, "PayloadTooLarge", "Request body too large")
			return false
		}

		RespondValidation(ctx, parseBindError(err, out))
		return false
	}

	if n, ok := out.(Normalizer); ok {
		n.Normalize()
	}

	if err := binding.Validator.ValidateStruct(out); err != nil {
		RespondValidation(ctx, parseBindError(err, out))
		return false
	}

	return true
}

func parseBindError(err error, out interface{}) []ValidationDetail {
	rootType := baseStructType(out)

	var validatorError validator.ValidationErrors
	if errors.As(err, &validatorError) {
		details := make([]ValidationDetail, 0, len(validatorError))

		for _, fieldError := range validatorError {
			path := jsonPathFromValidatorError(rootType, fieldError)
			rule := fieldError.Tag()

			details = append(details, ValidationDetail{
				Loc:  append([]string{"body"}, strings.Split(path, ".")...),
				Msg:  validationMessage(rule, fieldError.Param(), fieldError.Kind()),
				Type: validationType(rule),
			})
		}
		return details
	}

	var syntaxError *json.SyntaxError
	if errors.As(err, &syntaxError) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []ValidationDetail{{
			Loc:  []string{"body"},
			Msg:  "JSON decode error",
			Type: "json_invalid",
		}}
	}

	var unmatchedTypeError *json.UnmarshalTypeError
	if errors.As(err, &unmatchedTypeError) {
		field := jsonPathFromDotPath(rootType, unmatchedTypeError.Field)
		if field == "" {
			field = strings.TrimSpace(unmatchedTypeError.Field)
		}

		loc := []string{"body"}
		if field != "" {
			loc = append(loc, strings.Split(field, ".")...)
		}

		return []ValidationDetail{{
			Loc:  loc,
			Msg:  fmt.Sprintf("Input should be a valid %s", unmatchedTypeError.Type.String()),
			Type: "type_error",
		}}
	}

	return []ValidationDetail{{
		Loc:  []string{"body"},
		Msg:  err.Error(),
		Type: "value_error",
	}}
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

func jsonPathFromValidatorError(rootType reflect.Type, fieldError validator.FieldError) string {
	// Namespace format is usually "<StructName>.<Field>[.<NestedField>...]".
	namespace := fieldError.StructNamespace()
	if namespace == "" {
		namespace = fieldError.Namespace()
	}

	if namespace == "" {
		return fieldError.Field()
	}

	parts := strings.Split(namespace, ".")
	if rootType != nil && rootType.Name() != "" && parts[0] == rootType.Name() {
		parts = parts[1:]
	}

	if path := mapStructPathToJSONPath(rootType, parts); path != "" {
		return path
	}

	return fieldError.Field()
}

func jsonPathFromDotPath(rootType reflect.Type, dotPath string) string {
	dotPath = strings.TrimSpace(dotPath)
	if dotPath == "" {
		return ""
	}

	return mapStructPathToJSONPath(rootType, strings.Split(dotPath, "."))
}

func mapStructPathToJSONPath(rootType reflect.Type, parts []string) string {
	current := rootType
	out := make([]string, 0, len(parts))

	for _, rawPart := range parts {
		if rawPart == "" {
			continue
		}

		fieldName, indexSuffix := splitFieldIndex(rawPart)
		jsonName := fieldName

		var nextType reflect.Type
		if current != nil {
			for current.Kind() == reflect.Pointer {
				current = current.Elem()
			}

			if current.Kind() == reflect.Struct {
				if sf, ok := current.FieldByName(fieldName); ok {
					jsonName = jsonNameFromStructField(sf)
					nextType = sf.Type
				}
			}
		}

		out = append(out, jsonName+indexSuffix)
		current = unwindCollection(nextType)
	}

	return strings.Join(out, ".")
}

func splitFieldIndex(part string) (string, string) {
	idx := strings.Index(part, "[")
	if idx == -1 {
		return part, ""
	}

	return part[:idx], part[idx:]
}

func jsonNameFromStructField(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" {
		return sf.Name
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return sf.Name
	}

	return name
}

func unwindCollection(t reflect.Type) reflect.Type {
	for t != nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			t = t.Elem()
		default:
			return t
		}
	}

	return nil
}

func validationMessage(rule, param string, kind reflect.Kind) string {
	switch rule {
	case "required", "notblank":
		return "Field required"
	case "email":
		return "value is not a valid email address"
	case "phone":
		return "Invalid phone number format"
	case "accepted":
		return "Terms and conditions must be accepted"
	case "min":
		if kind == reflect.String {
			return "should have at least " + param + " characters"
		}
		return "Input should be greater than or equal to " + param
	case "max":
		if kind == reflect.String {
			return "should have at most " + param + " characters"
		}
		return "Input should be less than or equal to " + param
	case "oneof":
		return "Input should be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}

func validationType(rule string) string {
	switch rule {
	case "required", "notblank":
		return "missing"
	case "min", "max":
		return "value_error." + rule
	default:
		return "value_error"
	}
}
