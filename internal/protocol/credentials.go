package protocol

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	cerrors "chatd/internal/errors"
)

// Credentials are the arguments of register and connect.
type Credentials struct {
	Nickname string `validate:"required,max=32,nickname"`
	Password string `validate:"required,max=128"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("nickname", func(fl validator.FieldLevel) bool {
		return !strings.ContainsFunc(fl.Field().String(), unicode.IsSpace)
	})
	return v
}

// Credentials extracts and checks a nickname/password pair.  The
// request must use the array form with exactly two elements.
func (r Request) Credentials() (Credentials, error) {
	if !r.Args.List || len(r.Args.Values) != 2 {
		return Credentials{}, cerrors.Newf(cerrors.WrongCommandFormat,
			"%s takes exactly two arguments: nickname and password", r.Command)
	}
	c := Credentials{Nickname: r.Args.Values[0], Password: r.Args.Values[1]}

	err := validate.Struct(c)
	if err == nil {
		return c, nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return Credentials{}, cerrors.Newf(cerrors.WrongCommandFormat, "invalid credentials: %v", err)
	}
	return Credentials{}, cerrors.Newf(cerrors.WrongCommandFormat, "%s", describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.StructField())
	switch fe.Tag() {
	case "required":
		return field + " is empty"
	case "max":
		return field + " is longer than " + fe.Param() + " characters"
	case "nickname":
		return "nickname must not contain whitespace"
	default:
		return field + " is invalid"
	}
}
