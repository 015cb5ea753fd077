package validation

import (
	"alcyxob/gym-app/internal/domain"
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error carries one message per offending field, keyed by its JSON name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// folderPattern accepts lowercase slash-separated path segments.
var folderPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*(/[a-z0-9][a-z0-9_-]*)*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "role", oneOf(domain.RoleUser, domain.RoleTrainer, domain.RoleAdmin))
	mustRegister(v, "accessstatus", oneOf(domain.AccessGreen, domain.AccessRed))
	mustRegister(v, "sex", oneOf(domain.SexMale, domain.SexFemale, domain.SexOther))
	mustRegister(v, "section", oneOf(domain.SectionMusculation, domain.SectionDiete))
	mustRegister(v, "difficulty", oneOf(domain.DifficultyBeginner, domain.DifficultyIntermediate, domain.DifficultyAdvanced))
	mustRegister(v, "activitytype", oneOf(domain.ActivityTypes...))
	mustRegister(v, "folder", func(fl validator.FieldLevel) bool {
		return folderPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "mediatype", func(fl validator.FieldLevel) bool {
		ct := fl.Field().String()
		return strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "video/")
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// oneOf builds a rule for string enums. Empty values pass; pair with required when needed.
func oneOf[T ~string](allowed ...T) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		for _, a := range allowed {
			if string(a) == value {
				return true
			}
		}
		return false
	}
}

// Struct validates s against its `validate` tags and returns *Error on failure.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &Error{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[fieldPath(fe)] = message(fe)
	}
	return out
}

// Var validates a single value, reporting it under name.
func Var(name string, value any, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	return &Error{Fields: map[string]string{name: message(fieldErrs[0])}}
}

// fieldPath drops the top-level struct name: "CreateSessionInput.capacity" -> "capacity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return "must have at least " + fe.Param() + " items or characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return "must have at most " + fe.Param() + " items or characters"
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "gtfield":
		return "must be after " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "folder":
		return "must be lowercase path segments (a-z, 0-9, - and _)"
	case "mediatype":
		return "must be an image/* or video/* content type"
	case "role", "accessstatus", "sex", "section", "difficulty", "activitytype":
		return "is not an accepted " + fe.Tag() + " value"
	default:
		return "failed the " + fe.Tag() + " rule"
	}
}
