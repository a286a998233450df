package accounts

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/auth"
	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type mockUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMockUsers() *mockUsers {
	return &mockUsers{users: make(map[primitive.ObjectID]*models.User)}
}

func (m *mockUsers) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return nil, apperr.New(apperr.KindConflict, "user already exists")
		}
	}
	user.ID = primitive.NewObjectID()
	m.users[user.ID] = user
	cp := *user
	return &cp, nil
}

func (m *mockUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	cp := *u
	return &cp, nil
}

func (m *mockUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "user not found")
}

func (m *mockUsers) FindByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.RefreshToken != "" && u.RefreshToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "user not found")
}

func (m *mockUsers) FindByResetToken(ctx context.Context, digest string, now time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.PasswordResetToken == digest && u.PasswordResetExpires != nil && u.PasswordResetExpires.After(now) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "user not found")
}

func (m *mockUsers) FindAll(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUsers) Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	delete(m.users, id)
	return u, nil
}

func (m *mockUsers) UpdateProfile(ctx context.Context, id primitive.ObjectID, firstName, lastName, email, mobile string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	if firstName != "" {
		u.FirstName = firstName
	}
	if lastName != "" {
		u.LastName = lastName
	}
	if email != "" {
		u.Email = email
	}
	if mobile != "" {
		u.Mobile = mobile
	}
	cp := *u
	return &cp, nil
}

func (m *mockUsers) SaveAddress(ctx context.Context, id primitive.ObjectID, address string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	u.Address = address
	cp := *u
	return &cp, nil
}

func (m *mockUsers) SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	u.IsBlocked = blocked
	cp := *u
	return &cp, nil
}

func (m *mockUsers) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	u.RefreshToken = token
	cp := *u
	return &cp, nil
}

func (m *mockUsers) ClearRefreshTokenByValue(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.RefreshToken == token {
			u.RefreshToken = ""
		}
	}
	return nil
}

func (m *mockUsers) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}
	u.Password = hash
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
	cp := *u
	return &cp, nil
}

func (m *mockUsers) SetResetToken(ctx context.Context, id primitive.ObjectID, digest string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	u.PasswordResetToken = digest
	u.PasswordResetExpires = &expires
	return nil
}

type mockProducts struct{}

func (mockProducts) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Product{ID: id})
	}
	return out, nil
}

type mockMailer struct {
	mu   sync.Mutex
	sent []struct{ to, subject, html string }
	err  error
}

func (m *mockMailer) Send(to, subject, text, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, struct{ to, subject, html string }{to, subject, html})
	return nil
}

func newService(t *testing.T) (*Service, *mockUsers, *mockMailer) {
	t.Helper()
	tokens := auth.NewTokenManager(&config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  time.Hour,
		RefreshExpiry: 72 * time.Hour,
	})
	users := newMockUsers()
	mailer := &mockMailer{}
	svc := NewService(users, mockProducts{}, tokens, mailer, "http://localhost:3000", zap.NewNop())
	return svc, users, mailer
}

func register(t *testing.T, svc *Service, email string) *models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Jo",
		LastName:  "Doe",
		Email:     email,
		Mobile:    "0400000000",
		Password:  "s3cret",
	})
	if err != nil {
		t.Fatalf("Register(%q): %v", email, err)
	}
	return user
}

func TestRegister(t *testing.T) {
	svc, users, _ := newService(t)

	user := register(t, svc, "jo@example.com")
	if user.Role != models.RoleUser {
		t.Errorf("role = %q, want %q", user.Role, models.RoleUser)
	}

	stored := users.users[user.ID]
	if stored.Password == "s3cret" {
		t.Error("password stored in plain text")
	}
	if !auth.CheckPassword(stored.Password, "s3cret") {
		t.Error("stored hash does not verify")
	}
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _, _ := newService(t)
	register(t, svc, "jo@example.com")

	_, err := svc.Register(context.Background(), RegisterInput{Email: "jo@example.com", Password: "x"})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, users, _ := newService(t)
	user := register(t, svc, "jo@example.com")

	session, err := svc.Login(context.Background(), "jo@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if users.users[user.ID].RefreshToken != session.RefreshToken {
		t.Error("refresh token not stored on the user")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := newService(t)
	register(t, svc, "jo@example.com")

	_, err := svc.Login(context.Background(), "jo@example.com", "wrong")
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Login(context.Background(), "nobody@example.com", "x")
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
}

func TestLoginAdmin_RejectsNonAdmin(t *testing.T) {
	svc, users, _ := newService(t)
	user := register(t, svc, "jo@example.com")

	_, err := svc.LoginAdmin(context.Background(), "jo@example.com", "s3cret")
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected Forbidden, got %v", err)
	}

	users.users[user.ID].Role = models.RoleAdmin
	if _, err := svc.LoginAdmin(context.Background(), "jo@example.com", "s3cret"); err != nil {
		t.Fatalf("admin login: %v", err)
	}
}

func TestRefresh(t *testing.T) {
	svc, _, _ := newService(t)
	register(t, svc, "jo@example.com")

	session, err := svc.Login(context.Background(), "jo@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	access, err := svc.Refresh(context.Background(), session.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if access == "" {
		t.Fatal("expected a new access token")
	}
}

func TestRefresh_UnknownToken(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Refresh(context.Background(), "not-a-stored-token")
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected Unauthorized, got %v", err)
	}

	_, err = svc.Refresh(context.Background(), "")
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("empty token: expected Unauthorized, got %v", err)
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	svc, users, _ := newService(t)
	user := register(t, svc, "jo@example.com")

	session, err := svc.Login(context.Background(), "jo@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Logout(context.Background(), session.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if users.users[user.ID].RefreshToken != "" {
		t.Error("refresh token still stored after logout")
	}
	if _, err := svc.Refresh(context.Background(), session.RefreshToken); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("revoked token must not refresh, got %v", err)
	}
}

func TestForgotPassword(t *testing.T) {
	svc, users, mailer := newService(t)
	user := register(t, svc, "jo@example.com")

	if err := svc.ForgotPassword(context.Background(), "jo@example.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(mailer.sent))
	}
	mail := mailer.sent[0]
	if mail.to != "jo@example.com" {
		t.Errorf("mail to %q", mail.to)
	}
	if !strings.Contains(mail.html, "http://localhost:3000/reset-password/") {
		t.Errorf("mail does not carry the reset link: %q", mail.html)
	}

	stored := users.users[user.ID]
	if stored.PasswordResetToken == "" || stored.PasswordResetExpires == nil {
		t.Fatal("reset token not stored")
	}
	// The stored value is the digest; the raw token must never land in the
	// database.
	if strings.Contains(mail.html, stored.PasswordResetToken) {
		t.Error("mail carries the stored digest instead of the raw token")
	}
}

func TestResetPassword(t *testing.T) {
	svc, users, mailer := newService(t)
	user := register(t, svc, "jo@example.com")

	if err := svc.ForgotPassword(context.Background(), "jo@example.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	link := mailer.sent[0].html
	idx := strings.Index(link, "/reset-password/")
	token := link[idx+len("/reset-password/"):]
	token = token[:strings.IndexAny(token, "\"")]

	if _, err := svc.ResetPassword(context.Background(), token, "newpass"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	stored := users.users[user.ID]
	if !auth.CheckPassword(stored.Password, "newpass") {
		t.Error("password was not changed")
	}
	if stored.PasswordResetToken != "" || stored.PasswordResetExpires != nil {
		t.Error("reset token not cleared after use")
	}
}

func TestResetPassword_Expired(t *testing.T) {
	svc, users, _ := newService(t)
	user := register(t, svc, "jo@example.com")

	token, digest, err := auth.NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	expired := time.Now().Add(-time.Minute)
	users.users[user.ID].PasswordResetToken = digest
	users.users[user.ID].PasswordResetExpires = &expired

	_, err = svc.ResetPassword(context.Background(), token, "newpass")
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict for expired token, got %v", err)
	}
}

func TestBlockedFlag(t *testing.T) {
	svc, _, _ := newService(t)
	user := register(t, svc, "jo@example.com")

	blocked, err := svc.Block(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Block: %v", err)
	}
	if !blocked.IsBlocked {
		t.Error("expected blocked user")
	}

	unblocked, err := svc.Unblock(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Unblock: %v", err)
	}
	if unblocked.IsBlocked {
		t.Error("expected unblocked user")
	}
}

func TestGetWishlist(t *testing.T) {
	svc, users, _ := newService(t)
	user := register(t, svc, "jo@example.com")
	p1, p2 := primitive.NewObjectID(), primitive.NewObjectID()
	users.users[user.ID].Wishlist = []primitive.ObjectID{p1, p2}

	view, err := svc.GetWishlist(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetWishlist: %v", err)
	}
	if len(view.Products) != 2 {
		t.Errorf("expected 2 products, got %d", len(view.Products))
	}
}
