// Package accounts implements identity: registration, login with access and
// refresh tokens, logout, profile mutation, blocking, and the password
// reset flow.
package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/auth"
	"github.com/example/storefront/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const resetTokenTTL = 30 * time.Minute

type UserStore interface {
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByRefreshToken(ctx context.Context, token string) (*models.User, error)
	FindByResetToken(ctx context.Context, digest string, now time.Time) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, firstName, lastName, email, mobile string) (*models.User, error)
	SaveAddress(ctx context.Context, id primitive.ObjectID, address string) (*models.User, error)
	SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) (*models.User, error)
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) (*models.User, error)
	ClearRefreshTokenByValue(ctx context.Context, token string) error
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) (*models.User, error)
	SetResetToken(ctx context.Context, id primitive.ObjectID, digest string, expires time.Time) error
}

type ProductStore interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
}

type TokenIssuer interface {
	IssueAccess(userID string) (string, error)
	IssueRefresh(userID string) (string, error)
	Verify(token string) (string, error)
}

type Mailer interface {
	Send(to, subject, text, html string) error
}

type Service struct {
	users    UserStore
	products ProductStore
	tokens   TokenIssuer
	mailer   Mailer
	resetURL string
	logger   *zap.Logger
}

func NewService(users UserStore, products ProductStore, tokens TokenIssuer, mailer Mailer, resetURL string, logger *zap.Logger) *Service {
	return &Service{
		users:    users,
		products: products,
		tokens:   tokens,
		mailer:   mailer,
		resetURL: resetURL,
		logger:   logger,
	}
}

type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	Password  string `json:"password"`
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, apperr.New(apperr.KindBadRequest, "email and password are required")
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperr.New(apperr.KindConflict, "user already exists")
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.users.Insert(ctx, &models.User{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Mobile:    input.Mobile,
		Password:  hash,
		Role:      models.RoleUser,
	})
}

// Session is a successful login: the user plus the token pair. The refresh
// token also ends up on the user document so it can be matched and revoked.
type Session struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	return s.login(ctx, email, password, false)
}

// LoginAdmin is the admin entry point; a non-admin role is rejected before
// the password is even checked.
func (s *Service) LoginAdmin(ctx context.Context, email, password string) (*Session, error) {
	return s.login(ctx, email, password, true)
}

func (s *Service) login(ctx context.Context, email, password string, requireAdmin bool) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.New(apperr.KindUnauthorized, "invalid credentials")
		}
		return nil, err
	}

	if requireAdmin && !user.IsAdmin() {
		return nil, apperr.New(apperr.KindForbidden, "not authorised")
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid credentials")
	}

	refresh, err := s.tokens.IssueRefresh(user.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if _, err := s.users.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, err
	}

	access, err := s.tokens.IssueAccess(user.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &Session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The token
// must both verify and match the copy stored for the user it names.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperr.New(apperr.KindUnauthorized, "no refresh token present")
	}

	user, err := s.users.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return "", apperr.New(apperr.KindUnauthorized, "refresh token not recognised")
		}
		return "", err
	}

	userID, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return "", err
	}
	if userID != user.ID.Hex() {
		return "", apperr.New(apperr.KindUnauthorized, "refresh token does not match user")
	}

	return s.tokens.IssueAccess(user.ID.Hex())
}

// Logout revokes the refresh token. A token that matches no user is not an
// error; the cookie gets cleared either way.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return apperr.New(apperr.KindUnauthorized, "no refresh token present")
	}
	return s.users.ClearRefreshTokenByValue(ctx, refreshToken)
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.users.FindAll(ctx)
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users.Delete(ctx, id)
}

type ProfileInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
}

func (s *Service) UpdateProfile(ctx context.Context, id primitive.ObjectID, input ProfileInput) (*models.User, error) {
	return s.users.UpdateProfile(ctx, id, input.FirstName, input.LastName, input.Email, input.Mobile)
}

func (s *Service) SaveAddress(ctx context.Context, id primitive.ObjectID, address string) (*models.User, error) {
	return s.users.SaveAddress(ctx, id, address)
}

func (s *Service) Block(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users.SetBlocked(ctx, id, true)
}

func (s *Service) Unblock(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users.SetBlocked(ctx, id, false)
}

func (s *Service) UpdatePassword(ctx context.Context, id primitive.ObjectID, password string) (*models.User, error) {
	if password == "" {
		return nil, apperr.New(apperr.KindBadRequest, "password is required")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.users.SetPassword(ctx, id, hash)
}

// ForgotPassword stores a hashed reset token with a 30-minute expiry and
// mails the raw token to the user as a reset link.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return apperr.New(apperr.KindNotFound, "user not found with this email")
		}
		return err
	}

	token, digest, err := auth.NewResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	if err := s.users.SetResetToken(ctx, user.ID, digest, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password/%s", s.resetURL, token)
	html := fmt.Sprintf("Hi. Please follow this link to reset your password. This link is valid for 30 minutes. <a href=%q>Click Here</a>", link)
	if err := s.mailer.Send(user.Email, "Forgot Password Link", "Hey user", html); err != nil {
		s.logger.Error("failed to send reset mail", zap.String("email", user.Email), zap.Error(err))
		return apperr.Wrap(apperr.KindUnavailable, "could not send reset mail", err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, password string) (*models.User, error) {
	if password == "" {
		return nil, apperr.New(apperr.KindBadRequest, "password is required")
	}

	user, err := s.users.FindByResetToken(ctx, auth.HashResetToken(token), time.Now())
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.New(apperr.KindConflict, "token expired, please try again")
		}
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.users.SetPassword(ctx, user.ID, hash)
}

// WishlistView is a user together with their wishlist products resolved
// from the catalog.
type WishlistView struct {
	User     *models.User     `json:"user"`
	Products []models.Product `json:"products"`
}

func (s *Service) GetWishlist(ctx context.Context, id primitive.ObjectID) (*WishlistView, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if len(user.Wishlist) > 0 {
		products, err = s.products.FindByIDs(ctx, user.Wishlist)
		if err != nil {
			return nil, err
		}
	}
	return &WishlistView{User: user, Products: products}, nil
}
