package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"wms/internal/api"
	"wms/internal/database"
	"wms/internal/flows"
	"wms/internal/middleware"
	"wms/internal/models"
	"wms/internal/navigation"
	"wms/internal/server"
	"wms/internal/session"
	"wms/internal/websocket"
)

const secret = "test-secret"

var nopLog = zap.NewNop()

type recordingAlerter struct {
	mu   sync.Mutex
	bins []models.Bin
}

func (a *recordingAlerter) BinCritical(_ context.Context, bin models.Bin) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bins = append(a.bins, bin)
	return nil
}

func (a *recordingAlerter) alerts() []models.Bin {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.Bin(nil), a.bins...)
}

type backend struct {
	srv     *httptest.Server
	repo    *database.MemoryRepository
	alerter *recordingAlerter
	store   *session.MemoryStore
	client  *api.Client
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	ctx := context.Background()

	repo := database.NewMemoryRepository()
	if err := database.SeedDrivers(ctx, repo, nopLog); err != nil {
		t.Fatal(err)
	}
	if err := database.SeedBins(ctx, repo, nopLog); err != nil {
		t.Fatal(err)
	}

	hub := websocket.NewHub(nil)
	done := make(chan struct{})
	go hub.Run(done)
	t.Cleanup(func() { close(done) })

	alerter := &recordingAlerter{}
	srv := httptest.NewServer(server.NewRouter(server.Deps{
		Repo:    repo,
		Secret:  secret,
		Hub:     hub,
		Alerter: alerter,
	}))
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	client, err := api.New(srv.URL+"/", 5*time.Second, api.WithTokenSource(store.AuthToken))
	if err != nil {
		t.Fatal(err)
	}
	return &backend{srv: srv, repo: repo, alerter: alerter, store: store, client: client}
}

func (b *backend) login(t *testing.T, email, password string) flows.AuthState {
	t.Helper()
	ch, err := flows.NewAuthFlow(b.client, b.store, nil).Login(context.Background(), models.LoginRequest{Email: email, Password: password})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return <-ch
}

func TestLoginAgainstBackend(t *testing.T) {
	b := newBackend(t)

	st := b.login(t, database.DemoEmail, database.DemoPassword)
	ok, isSuccess := st.(flows.AuthSuccess)
	if !isSuccess {
		t.Fatalf("state = %#v, want AuthSuccess", st)
	}
	if ok.Message != "Bonjour Demo!" {
		t.Fatalf("message = %q", ok.Message)
	}
	if ok.Session.Role != models.RoleDriver || ok.Session.Token == "" {
		t.Fatalf("session = %+v", ok.Session)
	}
	claims, err := middleware.ParseToken(secret, ok.Session.Token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != models.DriverKey(ok.Session.UserID) {
		t.Fatalf("token subject = %q, session user = %d", claims.UserID, ok.Session.UserID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	b := newBackend(t)

	st := b.login(t, database.DemoEmail, "Wrong@2024")
	nerr, ok := st.(flows.AuthNetworkError)
	if !ok || nerr.Message != "Invalid email or password" {
		t.Fatalf("state = %#v", st)
	}
	if _, err := b.store.Load(); !errors.Is(err, session.ErrNoSession) {
		t.Fatal("session stored after failed login")
	}
}

func TestSignUpThenDuplicate(t *testing.T) {
	b := newBackend(t)
	f := flows.NewAuthFlow(b.client, b.store, nil)
	req := models.NewSignUpRequest("Ana", "Silva", "+33612345678", "ana@example.com", "Secret1@pw")

	ch, err := f.SignUp(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	st := <-ch
	ok, isSuccess := st.(flows.AuthSuccess)
	if !isSuccess || ok.Message != "Sign up successful!" {
		t.Fatalf("state = %#v", st)
	}
	d, err := b.repo.DriverByEmail(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if d.Role != models.RoleDriver || d.Status != models.StatusPending {
		t.Fatalf("stored driver = %+v", d)
	}

	req.Email = "ANA@example.com"
	ch, err = f.SignUp(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	st = <-ch
	verr, isValidation := st.(flows.AuthValidationError)
	if !isValidation || verr.Errors["email"] != "Email is already registered" {
		t.Fatalf("state = %#v", st)
	}
}

func TestBinFlows(t *testing.T) {
	b := newBackend(t)

	list := <-flows.NewBinListFlow(b.client, nil).Fetch(context.Background())
	if list.Phase != flows.PhaseLoaded || len(list.Value) != 12 {
		t.Fatalf("list = %+v", list)
	}
	for i := 1; i < len(list.Value); i++ {
		if list.Value[i-1].ID >= list.Value[i].ID {
			t.Fatal("bins are not ordered by id")
		}
	}

	details := <-flows.NewBinDetailsFlow(b.client, nil).Fetch(context.Background(), list.Value[3].ID)
	if details.Phase != flows.PhaseLoaded || details.Value.Status != 89 {
		t.Fatalf("details = %+v", details)
	}
	if details.Value.FillLevel() != models.FillCritical {
		t.Fatalf("fill = %s", details.Value.FillLevel())
	}

	missing := <-flows.NewBinDetailsFlow(b.client, nil).Fetch(context.Background(), 999)
	if missing.Phase != flows.PhaseFailed || missing.Message != "Request failed: 404" {
		t.Fatalf("missing = %+v", missing)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	b := newBackend(t)
	if _, ok := b.login(t, database.DemoEmail, database.DemoPassword).(flows.AuthSuccess); !ok {
		t.Fatal("login failed")
	}
	p := flows.NewProfileFlow(b.client, b.store, nil)

	ch, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	got := <-ch
	if got.Phase != flows.PhaseLoaded || got.Value.FirstName != "Demo" || got.Value.Email != database.DemoEmail {
		t.Fatalf("profile = %+v", got)
	}

	edited := got.Value
	edited.FirstName = "Camille"
	res, err := p.Update(context.Background(), edited)
	if err != nil {
		t.Fatal(err)
	}
	r := <-res
	if r.Err != nil || r.Message != "Profile updated successfully!" {
		t.Fatalf("update = %+v", r)
	}
	s, err := b.store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.FirstName != "Camille" || s.Token == "" {
		t.Fatalf("session = %+v", s)
	}
}

func TestDriversRequireOwner(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	if _, err := b.client.GetDriver(ctx, 1); !isStatus(err, http.StatusUnauthorized) {
		t.Fatalf("anonymous: err = %v", err)
	}

	if _, ok := b.login(t, database.DemoEmail, database.DemoPassword).(flows.AuthSuccess); !ok {
		t.Fatal("login failed")
	}
	s, _ := b.store.Load()
	if _, err := b.client.GetDriver(ctx, s.UserID+1); !isStatus(err, http.StatusForbidden) {
		t.Fatalf("other driver: err = %v", err)
	}
}

func isStatus(err error, code int) bool {
	var httpErr *api.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == code
}

func patchBin(t *testing.T, b *backend, id int64, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPatch, b.srv.URL+"/api/bins/"+strconv.FormatInt(id, 10), strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestUpdateBinAlertsOnCritical(t *testing.T) {
	b := newBackend(t)

	// Bin 1 starts at 45%.
	if resp := patchBin(t, b, 1, `{"status": 60}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if n := len(b.alerter.alerts()); n != 0 {
		t.Fatalf("alerts after warning = %d", n)
	}

	if resp := patchBin(t, b, 1, `{"status": 140}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	alerts := b.alerter.alerts()
	if len(alerts) != 1 || alerts[0].ID != 1 || alerts[0].Status != 100 {
		t.Fatalf("alerts = %+v", alerts)
	}

	// Already critical: no second alert.
	patchBin(t, b, 1, `{"status": 95}`)
	if n := len(b.alerter.alerts()); n != 1 {
		t.Fatalf("alerts = %d", n)
	}

	if resp := patchBin(t, b, 1, `{}`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty patch status = %d", resp.StatusCode)
	}
	if resp := patchBin(t, b, 999, `{"status": 10}`); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing bin status = %d", resp.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	b := newBackend(t)

	resp, err := http.Get(b.srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health = %d", resp.StatusCode)
	}

	patchBin(t, b, 2, `{"status": 99}`)

	resp, err = http.Get(b.srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{
		`wms_http_requests_total{method="GET",path="/health",status="200"} 1`,
		`wms_http_requests_total{method="PATCH",path="/api/bins/{id}",status="200"} 1`,
		`wms_bins_critical_total 1`,
	} {
		if !bytes.Contains(body, []byte(want)) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestTrackingStoresLocation(t *testing.T) {
	b := newBackend(t)
	st, ok := b.login(t, database.DemoEmail, database.DemoPassword).(flows.AuthSuccess)
	if !ok {
		t.Fatal("login failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tr, err := navigation.Dial(ctx, b.client.BaseURL(), st.Session.Token, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	if err := tr.Ping(); err != nil {
		t.Fatal(err)
	}
	select {
	case f := <-tr.Frames():
		if f.Type != "pong" {
			t.Fatalf("frame = %+v", f)
		}
	case <-ctx.Done():
		t.Fatal("no pong")
	}

	if err := tr.Send(models.LocationUpdate{Latitude: 48.85, Longitude: 2.35}); err != nil {
		t.Fatal(err)
	}
	for {
		u, connected, found := b.repo.LastLocation(st.Session.UserID)
		if found {
			if !connected || u.Latitude != 48.85 || u.DriverID != st.Session.UserID {
				t.Fatalf("location = %+v connected=%v", u, connected)
			}
			return
		}
		select {
		case <-ctx.Done():
			t.Fatal("location never stored")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWebsocketRejectsBadToken(t *testing.T) {
	b := newBackend(t)
	if _, err := navigation.Dial(context.Background(), b.client.BaseURL(), "garbage", nil); err == nil {
		t.Fatal("dial succeeded with an invalid token")
	}
}

func TestAdminConnections(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	admin := models.Driver{FirstName: "Ada", LastName: "Admin", Email: "admin@wms.local", Role: models.RoleAdmin}
	if err := b.repo.CreateDriver(ctx, &admin); err != nil {
		t.Fatal(err)
	}
	adminTok, err := middleware.IssueToken(secret, admin)
	if err != nil {
		t.Fatal(err)
	}
	demo, err := b.repo.DriverByEmail(ctx, database.DemoEmail)
	if err != nil {
		t.Fatal(err)
	}
	driverTok, _ := middleware.IssueToken(secret, demo)

	get := func(tok, path string) *http.Response {
		req, _ := http.NewRequest(http.MethodGet, b.srv.URL+path, nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	connections := "/api/admin/connections?driver=" + strconv.Itoa(demo.ID)
	if resp := get(driverTok, connections); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("driver status = %d", resp.StatusCode)
	}

	resp := get(adminTok, connections)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin status = %d", resp.StatusCode)
	}
	var body struct {
		Clients   int  `json:"clients"`
		Connected bool `json:"connected"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Clients != 0 || body.Connected {
		t.Fatalf("body = %+v", body)
	}

	resp = get(adminTok, "/api/admin/drivers")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("drivers status = %d", resp.StatusCode)
	}
	var list struct {
		Success bool                    `json:"success"`
		Data    []models.DriverPosition `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if !list.Success || list.Data == nil || len(list.Data) != 0 {
		t.Fatalf("drivers = %+v", list)
	}
}
