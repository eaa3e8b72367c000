// Package validation holds the checks run on driver input before anything is
// sent to the backend. Each check stops at the first failing rule and
// reports one message.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"wms/internal/models"
)

// Error is a failed local check. It never reaches the transport.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Contact numbers must carry the French country code.
const countryCode = "+33"

// Full-match form of the platform phone pattern.
var phonePattern = regexp.MustCompile(`^(\+[0-9]+[\- \.]*)?(\([0-9]+\)[\- \.]*)?([0-9][0-9\- \.]+[0-9])$`)

const passwordSpecials = "@#$%^&+=!"

var validate *validator.Validate

func init() {
	validate = validator.New()
	err := validate.RegisterValidation("fr_phone", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		return strings.HasPrefix(v, countryCode) && phonePattern.MatchString(v)
	})
	if err != nil {
		panic(err)
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func isEmail(s string) bool {
	return validate.Var(s, "email") == nil
}

// Login checks a login form. Rules apply in order: email present, password
// present, email well formed, password at least 8 characters.
func Login(req models.LoginRequest) error {
	email, password := req.Email, req.Password
	switch {
	case blank(email):
		return &Error{Field: "email", Message: "Email is required"}
	case blank(password):
		return &Error{Field: "password", Message: "Password is required"}
	case !isEmail(email):
		return &Error{Field: "email", Message: "Please enter a valid email address"}
	case len([]rune(password)) < 8:
		return &Error{Field: "password", Message: "Password must be at least 8 characters"}
	}
	return nil
}

// SignUp checks a registration form.
func SignUp(req models.SignUpRequest) error {
	contactNumber, email := req.ContactNumber, req.Email
	if blank(req.FirstName) || blank(req.LastName) || blank(contactNumber) || blank(email) || blank(req.Password) {
		return &Error{Message: "All fields are required!"}
	}
	if validate.Var(contactNumber, "fr_phone") != nil {
		return &Error{Field: "contactNumber", Message: "Contact number must start with +33 and be valid!"}
	}
	if !isEmail(email) {
		return &Error{Field: "email", Message: "Invalid email address!"}
	}
	return Password(req.Password)
}

// Password enforces the sign up password policy: 8 characters or more, an
// upper case letter, a lower case letter, a digit, one of @#$%^&+=! and no
// whitespace. The first unmet rule is reported.
func Password(password string) error {
	var upper, lower, digit, special, space bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		case unicode.IsSpace(r):
			space = true
		}
	}
	if len([]rune(password)) >= 8 && upper && lower && digit && special && !space {
		return nil
	}

	msg := "Password must meet all requirements!"
	switch {
	case len([]rune(password)) < 8:
		msg = "Password must be at least 8 characters long!"
	case !upper:
		msg = "Password must contain at least one uppercase letter!"
	case !lower:
		msg = "Password must contain at least one lowercase letter!"
	case !digit:
		msg = "Password must contain at least one number!"
	case !special:
		msg = "Password must contain at least one special character (@#$%^&+=)!"
	case strings.Contains(password, " "):
		msg = "Password must not contain spaces!"
	}
	return &Error{Field: "password", Message: msg}
}
