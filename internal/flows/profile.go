package flows

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"wms/internal/api"
	"wms/internal/models"
	"wms/internal/session"
)

// ProfileAPI is the part of the transport used by ProfileFlow.
type ProfileAPI interface {
	GetDriver(ctx context.Context, id int) (models.LoginResponse, error)
	UpdateDriver(ctx context.Context, id int, user models.UserData) (models.ProfileUpdate, error)
}

const profileUpdatedMessage = "Profile updated successfully!"

// UpdateResult is the outcome of a profile update. Message is always set;
// Err is nil on success.
type UpdateResult struct {
	Profile models.UserProfile
	Message string
	Err     error
}

// ProfileFlow reads and edits the profile of the logged-in driver.
type ProfileFlow struct {
	api   ProfileAPI
	store session.Store
	log   *zap.Logger
	f     *fetcher[models.UserProfile]
}

func NewProfileFlow(a ProfileAPI, store session.Store, log *zap.Logger) *ProfileFlow {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileFlow{api: a, store: store, log: log, f: newFetcher[models.UserProfile]()}
}

func (p *ProfileFlow) State() *Observable[Fetch[models.UserProfile]] { return p.f.state }

// Fetch loads the profile of the session's driver. It fails with
// session.ErrNoSession when nobody is logged in.
func (p *ProfileFlow) Fetch(ctx context.Context) (<-chan Fetch[models.UserProfile], error) {
	s, err := p.store.Load()
	if err != nil {
		return nil, err
	}

	return p.f.run(ctx, func(ctx context.Context) (models.UserProfile, error) {
		resp, err := p.api.GetDriver(ctx, s.UserID)
		if err != nil {
			p.log.Warn("❌ Failed to fetch profile", zap.Int("user_id", s.UserID), zap.Error(err))
			return models.UserProfile{}, err
		}
		return models.ProfileFromResponse(resp), nil
	}, func(err error) string {
		return "Failed to fetch user data: " + err.Error()
	}), nil
}

// Update sends the full profile. On success the merged profile is published
// and the session identity is rewritten; on failure the published profile is
// left unchanged.
func (p *ProfileFlow) Update(ctx context.Context, user models.UserData) (<-chan UpdateResult, error) {
	s, err := p.store.Load()
	if err != nil {
		return nil, err
	}

	out := make(chan UpdateResult, 1)
	go func() {
		defer close(out)
		res := p.update(ctx, s.UserID, user)
		out <- res
	}()
	return out, nil
}

func (p *ProfileFlow) update(ctx context.Context, id int, user models.UserData) UpdateResult {
	resp, err := p.api.UpdateDriver(ctx, id, user)
	if err != nil {
		p.log.Warn("❌ Profile update failed", zap.Int("user_id", id), zap.Error(err))
		return UpdateResult{Message: describeUpdateFailure(err), Err: err}
	}

	merged := MergeProfile(user, resp)
	p.f.replace(Fetch[models.UserProfile]{Phase: PhaseLoaded, Value: merged})
	if err := p.store.Update(func(s *models.Session) { s.ApplyProfile(merged) }); err != nil {
		p.log.Error("❌ Failed to sync session", zap.Error(err))
	}
	p.log.Info("✅ Profile updated", zap.Int("user_id", id))
	return UpdateResult{Profile: merged, Message: profileUpdatedMessage}
}

// MergeProfile overlays the server's answer on the submitted profile field by
// field. Fields absent from the answer keep the submitted value.
func MergeProfile(submitted models.UserData, resp models.ProfileUpdate) models.UserData {
	pick := func(server *string, local string) string {
		if server != nil {
			return *server
		}
		return local
	}
	return models.UserData{
		FirstName:     pick(resp.FirstName, submitted.FirstName),
		LastName:      pick(resp.LastName, submitted.LastName),
		ContactNumber: pick(resp.ContactNumber, submitted.ContactNumber),
		Email:         pick(resp.Email, submitted.Email),
		Role:          pick(resp.Role, submitted.Role),
		Token:         pick(resp.Token, submitted.Token),
	}
}

func describeUpdateFailure(err error) string {
	if errors.Is(err, api.ErrEmptyBody) {
		return "Failed to parse response."
	}
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		if body := strings.TrimSpace(string(httpErr.Body)); body != "" {
			return "Error: " + body
		}
		return "Error: " + httpErr.Status
	}
	return "Exception: " + err.Error()
}
