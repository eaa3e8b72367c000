package flows

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"wms/internal/api"
	"wms/internal/apierr"
	"wms/internal/models"
	"wms/internal/session"
	"wms/internal/validation"
)

// AuthAPI is the part of the transport used by AuthFlow.
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error)
	SignUp(ctx context.Context, req models.SignUpRequest) (models.SignUpResponse, error)
}

// AuthState is the state of a login or sign up attempt.
type AuthState interface {
	authState()
}

type (
	AuthIdle    struct{}
	AuthLoading struct{}

	// AuthSuccess carries the persisted session and the text shown to the driver.
	AuthSuccess struct {
		Session models.Session
		Message string
	}

	// AuthValidationError carries the field errors returned by the server.
	AuthValidationError struct {
		Errors map[string]string
	}

	// AuthNetworkError is a transport failure or an unparsed HTTP error.
	AuthNetworkError struct {
		Message string
	}

	// AuthAPIError is a structured error body returned on sign up.
	AuthAPIError struct {
		Status  int
		Error   string
		Message string
	}

	// AuthUnknownError is a 2xx answer with neither a token nor field errors.
	AuthUnknownError struct {
		Message string
	}
)

func (AuthIdle) authState()            {}
func (AuthLoading) authState()         {}
func (AuthSuccess) authState()         {}
func (AuthValidationError) authState() {}
func (AuthNetworkError) authState()    {}
func (AuthAPIError) authState()        {}
func (AuthUnknownError) authState()    {}

const (
	signUpSuccessMessage = "Sign up successful!"
	unknownErrorMessage  = "Unknown error occurred"
)

// AuthFlow runs login and sign up. It is the only writer of a new session.
type AuthFlow struct {
	api   AuthAPI
	store session.Store
	log   *zap.Logger
	state *Observable[AuthState]
}

func NewAuthFlow(a AuthAPI, store session.Store, log *zap.Logger) *AuthFlow {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthFlow{api: a, store: store, log: log, state: NewObservable[AuthState](AuthIdle{})}
}

// State exposes the current attempt.
func (f *AuthFlow) State() *Observable[AuthState] { return f.state }

// Login validates req and, if it passes, dispatches it. Invalid input is
// returned as a *validation.Error without touching state. The channel
// receives the terminal state once.
func (f *AuthFlow) Login(ctx context.Context, req models.LoginRequest) (<-chan AuthState, error) {
	if err := validation.Login(req); err != nil {
		return nil, err
	}

	f.log.Info("🔐 Login attempt", zap.String("email", req.Email))
	return f.dispatch(func() AuthState {
		resp, err := f.api.Login(ctx, req)
		if err != nil {
			msg := apierr.Classify(err).Message()
			f.log.Warn("❌ Login failed", zap.String("email", req.Email), zap.String("reason", msg), zap.Error(err))
			return AuthNetworkError{Message: msg}
		}

		switch {
		case resp.Errors != nil:
			return AuthValidationError{Errors: resp.Errors}
		case resp.Token != "":
			s := models.SessionFromLogin(resp)
			if err := f.store.Save(s); err != nil {
				f.log.Error("❌ Failed to persist session", zap.Error(err))
				return AuthUnknownError{Message: err.Error()}
			}
			f.log.Info("✅ Login successful", zap.Int("user_id", s.UserID))
			return AuthSuccess{Session: s, Message: "Bonjour " + s.FirstName + "!"}
		default:
			msg := unknownErrorMessage
			if resp.Message != nil {
				msg = *resp.Message
			}
			return AuthUnknownError{Message: msg}
		}
	}), nil
}

// SignUp validates req and registers the driver with the fixed role and status.
func (f *AuthFlow) SignUp(ctx context.Context, req models.SignUpRequest) (<-chan AuthState, error) {
	if err := validation.SignUp(req); err != nil {
		return nil, err
	}
	req.UserRole = models.RoleDriver
	req.UserStatus = models.StatusPending

	f.log.Info("📝 Sign up attempt", zap.String("email", req.Email))
	return f.dispatch(func() AuthState {
		resp, err := f.api.SignUp(ctx, req)
		if err != nil {
			st := signUpFailure(err)
			f.log.Warn("❌ Sign up failed", zap.String("email", req.Email), zap.Error(err))
			return st
		}
		switch {
		case resp.Errors != nil:
			return AuthValidationError{Errors: resp.Errors}
		case resp.Token != "":
			s := models.SessionFromSignUp(resp)
			if err := f.store.Save(s); err != nil {
				f.log.Error("❌ Failed to persist session", zap.Error(err))
				return AuthUnknownError{Message: err.Error()}
			}
			f.log.Info("✅ Sign up successful", zap.String("email", s.Email))
			return AuthSuccess{Session: s, Message: signUpSuccessMessage}
		default:
			msg := unknownErrorMessage
			if resp.Message != "" {
				msg = resp.Message
			}
			f.log.Warn("❌ Sign up answered without a token", zap.String("email", req.Email))
			return AuthUnknownError{Message: msg}
		}
	}), nil
}

// Logout clears the session and resets the flow.
func (f *AuthFlow) Logout() error {
	if err := f.store.Clear(); err != nil {
		return err
	}
	f.state.Set(AuthIdle{})
	f.log.Info("👋 Logged out")
	return nil
}

func (f *AuthFlow) dispatch(call func() AuthState) <-chan AuthState {
	f.state.Set(AuthLoading{})
	out := make(chan AuthState, 1)
	go func() {
		defer close(out)
		st := call()
		f.state.Set(st)
		out <- st
	}()
	return out
}

// signUpFailure prefers the server's structured error body and falls back to
// the status table.
func signUpFailure(err error) AuthState {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		var body models.ErrorResponse
		if json.Unmarshal(httpErr.Body, &body) == nil && (body.Message != "" || body.Error != "") {
			return AuthAPIError{Status: body.Status, Error: body.Error, Message: body.Message}
		}
	}
	return AuthNetworkError{Message: apierr.Classify(err).MessageWith(apierr.SignUpMessages)}
}
