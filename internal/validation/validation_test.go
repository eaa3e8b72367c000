package validation_test

import (
	"errors"
	"testing"

	"wms/internal/models"
	"wms/internal/validation"
)

func message(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		return ""
	}
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("error %v is not a *validation.Error", err)
	}
	return verr.Message
}

func TestLogin(t *testing.T) {
	cases := []struct {
		email, password string
		want            string
	}{
		{"", "", "Email is required"},
		{"   ", "secret123", "Email is required"},
		{"driver@example.com", "", "Password is required"},
		{"not-an-email", "abc", "Please enter a valid email address"},
		{"driver@example.com", "abc", "Password must be at least 8 characters"},
		{"driver@example.com", "12345678", ""},
	}
	for _, tc := range cases {
		got := message(t, validation.Login(models.LoginRequest{Email: tc.email, Password: tc.password}))
		if got != tc.want {
			t.Errorf("Login(%q, %q) = %q, want %q", tc.email, tc.password, got, tc.want)
		}
	}
}

func TestSignUp(t *testing.T) {
	valid := models.NewSignUpRequest("Ana", "Silva", "+33612345678", "ana@example.com", "Secret1@pw")

	cases := []struct {
		name   string
		mutate func(*models.SignUpRequest)
		want   string
	}{
		{"valid", func(*models.SignUpRequest) {}, ""},
		{"blank first name", func(r *models.SignUpRequest) { r.FirstName = " " }, "All fields are required!"},
		{"blank password", func(r *models.SignUpRequest) { r.Password = "" }, "All fields are required!"},
		{"wrong country code", func(r *models.SignUpRequest) { r.ContactNumber = "+44612345678" }, "Contact number must start with +33 and be valid!"},
		{"letters in number", func(r *models.SignUpRequest) { r.ContactNumber = "+33abc" }, "Contact number must start with +33 and be valid!"},
		{"spaced number", func(r *models.SignUpRequest) { r.ContactNumber = "+33 6 12 34 56 78" }, ""},
		{"bad email", func(r *models.SignUpRequest) { r.Email = "not-an-email" }, "Invalid email address!"},
		{"weak password", func(r *models.SignUpRequest) { r.Password = "abc" }, "Password must be at least 8 characters long!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			if got := message(t, validation.SignUp(req)); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	cases := []struct {
		password string
		want     string
	}{
		{"abc", "Password must be at least 8 characters long!"},
		{"secret1@pw", "Password must contain at least one uppercase letter!"},
		{"SECRET1@PW", "Password must contain at least one lowercase letter!"},
		{"Secret@pw", "Password must contain at least one number!"},
		{"Secret1pw", "Password must contain at least one special character (@#$%^&+=)!"},
		{"Secret1@ pw", "Password must not contain spaces!"},
		{"Secret1@\tpw", "Password must meet all requirements!"},
		{"Secret1@pw", ""},
		{"Secret1!pw", ""},
	}
	for _, tc := range cases {
		if got := message(t, validation.Password(tc.password)); got != tc.want {
			t.Errorf("Password(%q) = %q, want %q", tc.password, got, tc.want)
		}
	}
}
