package flows_test

import (
	"context"
	"sync"

	"wms/internal/models"
)

// fakeAPI answers every transport call from canned values and counts calls.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	login    models.LoginResponse
	loginErr error

	signUp    models.SignUpResponse
	signUpErr error
	signedUp  models.SignUpRequest

	bins    []models.Bin
	binsErr error
	bin     func(id int64) (models.BinDetails, error)

	driver    models.LoginResponse
	driverErr error
	updated   models.UserData
	updateRes models.ProfileUpdate
	updateErr error
}

func (f *fakeAPI) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) Login(_ context.Context, _ models.LoginRequest) (models.LoginResponse, error) {
	f.hit("login")
	return f.login, f.loginErr
}

func (f *fakeAPI) SignUp(_ context.Context, req models.SignUpRequest) (models.SignUpResponse, error) {
	f.hit("signup")
	f.mu.Lock()
	f.signedUp = req
	f.mu.Unlock()
	return f.signUp, f.signUpErr
}

func (f *fakeAPI) GetBins(context.Context) ([]models.Bin, error) {
	f.hit("bins")
	return f.bins, f.binsErr
}

func (f *fakeAPI) GetBin(_ context.Context, id int64) (models.BinDetails, error) {
	f.hit("bin")
	return f.bin(id)
}

func (f *fakeAPI) GetDriver(context.Context, int) (models.LoginResponse, error) {
	f.hit("driver")
	return f.driver, f.driverErr
}

func (f *fakeAPI) UpdateDriver(_ context.Context, _ int, user models.UserData) (models.ProfileUpdate, error) {
	f.hit("update")
	f.mu.Lock()
	f.updated = user
	f.mu.Unlock()
	return f.updateRes, f.updateErr
}

func str(s string) *string { return &s }
