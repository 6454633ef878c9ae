package state

import (
	"context"
	"sync"

	"github.com/example/vehicore/models"
)

type memStorage struct {
	mu      sync.Mutex
	values  map[string]string
	removes int
}

func newMemStorage() *memStorage {
	return &memStorage{values: map[string]string{}}
}

func (m *memStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memStorage) Remove(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removes++
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

// fakeBackend implements every backend interface; unset funcs succeed with zero values.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	signIn         func(models.SignInRequest) (*models.SignInResponse, error)
	signUp         func(models.SignUpRequest) (*models.SignInResponse, error)
	signOut        func() error
	changePassword func(models.ChangePasswordRequest) (*models.MessageResponse, error)
	currentUser    func() (*models.User, error)
	listKeys       func() ([]models.APIKey, error)
	createKey      func(string) (*models.APIKey, error)
	revokeKey      func(string) error
	listProducts   func() ([]models.Product, error)
	listPackages   func() ([]models.Package, error)
	checkout       func(models.CheckoutRequest) (*models.CheckoutResponse, error)
	overview       func(context.Context) (*models.UsageOverview, error)
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) SignUp(_ context.Context, req models.SignUpRequest) (*models.SignInResponse, error) {
	f.record("SignUp")
	if f.signUp != nil {
		return f.signUp(req)
	}
	return &models.SignInResponse{}, nil
}

func (f *fakeBackend) SignIn(_ context.Context, req models.SignInRequest) (*models.SignInResponse, error) {
	f.record("SignIn")
	if f.signIn != nil {
		return f.signIn(req)
	}
	return &models.SignInResponse{AccessToken: "token", User: models.User{Email: req.Email}}, nil
}

func (f *fakeBackend) SignOut(context.Context) error {
	f.record("SignOut")
	if f.signOut != nil {
		return f.signOut()
	}
	return nil
}

func (f *fakeBackend) ForgotPassword(context.Context, models.ForgotPasswordRequest) (*models.MessageResponse, error) {
	f.record("ForgotPassword")
	return &models.MessageResponse{Success: true}, nil
}

func (f *fakeBackend) ResetPassword(context.Context, models.ResetPasswordRequest) (*models.MessageResponse, error) {
	f.record("ResetPassword")
	return &models.MessageResponse{Success: true}, nil
}

func (f *fakeBackend) ConfirmEmail(context.Context, string) (*models.MessageResponse, error) {
	f.record("ConfirmEmail")
	return &models.MessageResponse{Success: true}, nil
}

func (f *fakeBackend) ChangePassword(_ context.Context, req models.ChangePasswordRequest) (*models.MessageResponse, error) {
	f.record("ChangePassword")
	if f.changePassword != nil {
		return f.changePassword(req)
	}
	return &models.MessageResponse{Success: true}, nil
}

func (f *fakeBackend) GetCurrentUser(context.Context) (*models.User, error) {
	f.record("GetCurrentUser")
	if f.currentUser != nil {
		return f.currentUser()
	}
	return &models.User{Email: "me@example.com"}, nil
}

func (f *fakeBackend) ListKeys(context.Context) ([]models.APIKey, error) {
	f.record("ListKeys")
	if f.listKeys != nil {
		return f.listKeys()
	}
	return nil, nil
}

func (f *fakeBackend) CreateKey(_ context.Context, name string) (*models.APIKey, error) {
	f.record("CreateKey")
	if f.createKey != nil {
		return f.createKey(name)
	}
	return &models.APIKey{ID: "new", Name: name, APIKey: "vk_live_0123456789"}, nil
}

func (f *fakeBackend) RevokeKey(_ context.Context, id string) error {
	f.record("RevokeKey")
	if f.revokeKey != nil {
		return f.revokeKey(id)
	}
	return nil
}

func (f *fakeBackend) ListProducts(context.Context) ([]models.Product, error) {
	f.record("ListProducts")
	if f.listProducts != nil {
		return f.listProducts()
	}
	return nil, nil
}

func (f *fakeBackend) ListPackages(context.Context) ([]models.Package, error) {
	f.record("ListPackages")
	if f.listPackages != nil {
		return f.listPackages()
	}
	return nil, nil
}

func (f *fakeBackend) CreateCheckout(_ context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	f.record("CreateCheckout")
	if f.checkout != nil {
		return f.checkout(req)
	}
	return &models.CheckoutResponse{URL: "https://pay.example.com/" + req.PackageID}, nil
}

func (f *fakeBackend) GetUsageOverview(ctx context.Context) (*models.UsageOverview, error) {
	f.record("GetUsageOverview")
	if f.overview != nil {
		return f.overview(ctx)
	}
	return &models.UsageOverview{}, nil
}
