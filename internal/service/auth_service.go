package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"sick-fits/internal/domain"
	"sick-fits/internal/mail"
	"sick-fits/pkg/utils"
)

const (
	ResetTokenBytes = 20
	ResetTokenTTL   = time.Hour
)

type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(pw, hashed string) bool
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Session is a signed-in user plus the token to hand to the client.
type Session struct {
	User  *domain.User
	Token string
}

type AuthDeps struct {
	Users       domain.UserRepository
	Hasher      PasswordHasher
	Tokens      TokenIssuer
	Mailer      mail.Sender
	FrontendURL string
	Log         *zap.Logger
	Now         func() time.Time
}

type AuthService struct {
	users       domain.UserRepository
	hasher      PasswordHasher
	tokens      TokenIssuer
	mailer      mail.Sender
	frontendURL string
	log         *zap.Logger
	now         func() time.Time
}

func NewAuthService(d AuthDeps) *AuthService {
	s := &AuthService{
		users:       d.Users,
		hasher:      d.Hasher,
		tokens:      d.Tokens,
		mailer:      d.Mailer,
		frontendURL: strings.TrimRight(d.FrontendURL, "/"),
		log:         d.Log,
		now:         d.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

type SignupInput struct {
	Email    string
	Password string
	Name     string
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	switch {
	case email == "" || !strings.Contains(email, "@"):
		return nil, domain.Validation("A valid email is required")
	case in.Password == "":
		return nil, domain.Validation("A password is required")
	case name == "":
		return nil, domain.Validation("A name is required")
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, domain.Internal("could not create account", err)
	}
	u := &domain.User{
		ID:          utils.NewID(),
		Name:        name,
		Email:       email,
		Password:    hashed,
		Permissions: domain.Permissions{domain.PermUser},
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			authEvent("signup", "duplicate")
			return nil, domain.Validation(fmt.Sprintf("A user with the email %s already exists", email))
		}
		return nil, domain.Internal("could not create account", err)
	}
	authEvent("signup", "ok")
	s.log.Info("user signed up", zap.String("user_id", u.ID))
	return s.session(u)
}

func (s *AuthService) Signin(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.Internal("could not sign in", err)
	}
	if u == nil {
		authEvent("signin", "unknown_email")
		return nil, domain.NotFound("No such user found for email %s", email)
	}
	if !s.hasher.Verify(password, u.Password) {
		authEvent("signin", "bad_password")
		s.log.Info("signin rejected", zap.String("user_id", u.ID))
		return nil, domain.InvalidCredentials()
	}
	authEvent("signin", "ok")
	return s.session(u)
}

// RequestReset stores a fresh reset token on the user and mails it. A mail
// failure is reported but the stored token stays in place.
func (s *AuthService) RequestReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return domain.Internal("could not request reset", err)
	}
	if u == nil {
		authEvent("request_reset", "unknown_email")
		return domain.NotFound("No such user found for email %s", email)
	}

	token, err := utils.RandomHex(ResetTokenBytes)
	if err != nil {
		return domain.Internal("could not request reset", err)
	}
	expiry := s.now().UTC().Add(ResetTokenTTL)
	u.ResetToken, u.ResetTokenExpiry = &token, &expiry
	if err := s.users.Update(ctx, u); err != nil {
		return domain.Internal("could not request reset", err)
	}

	body, err := mail.NiceEmail{
		Text:     "Your Password Reset Token is here!",
		Link:     s.frontendURL + "/reset?resetToken=" + url.QueryEscape(token),
		LinkText: "Click Here to Reset",
	}.Render()
	if err != nil {
		return domain.Internal("could not render reset mail", err)
	}
	if err := s.mailer.Send(ctx, u.Email, "Your password reset token", body); err != nil {
		authEvent("request_reset", "mail_failed")
		s.log.Error("reset mail failed", zap.String("user_id", u.ID), zap.Error(err))
		return domain.Internal("could not send reset mail", err)
	}
	authEvent("request_reset", "ok")
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password, confirm string) (*Session, error) {
	if password != confirm {
		return nil, domain.Validation("Passwords don't match!")
	}
	if password == "" {
		return nil, domain.Validation("A password is required")
	}
	// valid while expiry has not passed, i.e. within ResetTokenTTL of issue
	u, err := s.users.FindByResetToken(ctx, token, s.now().UTC())
	if err != nil {
		return nil, domain.Internal("could not reset password", err)
	}
	if u == nil {
		authEvent("reset_password", "invalid_token")
		return nil, domain.InvalidOrExpired()
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, domain.Internal("could not reset password", err)
	}
	u.Password = hashed
	u.ResetToken, u.ResetTokenExpiry = nil, nil
	if err := s.users.Update(ctx, u); err != nil {
		return nil, domain.Internal("could not reset password", err)
	}
	authEvent("reset_password", "ok")
	return s.session(u)
}

// Me returns the session user, or nil for anonymous requests and sessions
// whose user no longer exists.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, nil
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.Internal("could not load user", err)
	}
	return u, nil
}

// CurrentUser is Me for operations that require a session.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.AuthRequired()
	}
	return u, nil
}

func (s *AuthService) Users(ctx context.Context, actorID string, f domain.UserFilter) ([]domain.User, int64, error) {
	actor, err := s.CurrentUser(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}
	if err := domain.HasPermission(actor, domain.PermAdmin, domain.PermPermissionUpdate); err != nil {
		return nil, 0, err
	}
	users, total, err := s.users.List(ctx, f)
	if err != nil {
		return nil, 0, domain.Internal("could not list users", err)
	}
	return users, total, nil
}

// UpdatePermissions replaces the target's permission set wholesale.
func (s *AuthService) UpdatePermissions(ctx context.Context, actorID, targetID string, permissions []string) (*domain.User, error) {
	actor, err := s.CurrentUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := domain.HasPermission(actor, domain.PermAdmin, domain.PermPermissionUpdate); err != nil {
		return nil, err
	}
	perms, err := domain.ParsePermissions(permissions)
	if err != nil {
		return nil, err
	}
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, domain.Internal("could not load user", err)
	}
	if target == nil {
		return nil, domain.NotFound("No user found with id %s", targetID)
	}
	target.Permissions = perms
	if err := s.users.Update(ctx, target); err != nil {
		return nil, domain.Internal("could not update permissions", err)
	}
	s.log.Info("permissions updated",
		zap.String("actor_id", actor.ID),
		zap.String("user_id", target.ID),
		zap.Strings("permissions", perms.Strings()),
	)
	return target, nil
}

func (s *AuthService) session(u *domain.User) (*Session, error) {
	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, domain.Internal("issue token failed", err)
	}
	return &Session{User: u, Token: tok}, nil
}
