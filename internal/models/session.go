package models

// Session is the locally persisted identity of the logged-in driver.
type Session struct {
	UserID        int    `json:"userId"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
	Role          string `json:"role"`
	Token         string `json:"token"`
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// SessionFromLogin builds a session from a successful login.
func SessionFromLogin(r LoginResponse) Session {
	return Session{
		UserID:        r.UserID,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Email:         r.Email,
		ContactNumber: r.ContactNumber,
		Role:          r.Role,
		Token:         r.Token,
	}
}

// SessionFromSignUp builds a session from a successful registration.
func SessionFromSignUp(r SignUpResponse) Session {
	return Session{
		UserID:        r.UserID,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Email:         r.Email,
		ContactNumber: r.ContactNumber,
		Role:          r.Role,
		Token:         r.Token,
	}
}

// ApplyProfile copies the identity fields of p into the session. An empty
// token in p leaves the current token in place.
func (s *Session) ApplyProfile(p UserData) {
	s.FirstName = p.FirstName
	s.LastName = p.LastName
	s.Email = p.Email
	s.ContactNumber = p.ContactNumber
	s.Role = p.Role
	if p.Token != "" {
		s.Token = p.Token
	}
}
