package application

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/recipe-api/config"
	"github.com/oksasatya/recipe-api/internal/domain/entity"
	repo "github.com/oksasatya/recipe-api/internal/domain/repository"
	"github.com/oksasatya/recipe-api/pkg/helpers"
	"github.com/oksasatya/recipe-api/pkg/mailer"
	mailtpl "github.com/oksasatya/recipe-api/pkg/mailer/templates"
)

type UserService struct {
	Repo     repo.UserRepository
	JWT      *helpers.JWTManager
	Sessions SessionStore
	Mail     MailPublisher
	Config   *config.Config
	Logger   *logrus.Logger

	now func() time.Time
}

type Token struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
}

// NewUserService wires the user service. sessions and mail may be nil.
func NewUserService(repo repo.UserRepository, jwt *helpers.JWTManager, sessions SessionStore, mail MailPublisher, cfg *config.Config, logger *logrus.Logger) *UserService {
	return &UserService{
		Repo:     repo,
		JWT:      jwt,
		Sessions: sessions,
		Mail:     mail,
		Config:   cfg,
		Logger:   logger,
		now:      time.Now,
	}
}

func (s *UserService) minPasswordLength() int {
	if s.Config == nil || s.Config.PasswordMinLength < 1 {
		return 5
	}
	return s.Config.PasswordMinLength
}

func (s *UserService) checkPassword(password string) error {
	if minLen := s.minPasswordLength(); utf8.RuneCountInString(password) < minLen {
		return entity.NewValidationError("password", fmt.Sprintf("ensure this field has at least %d characters", minLen))
	}
	return nil
}

// CreateUser registers an account with a normalised email and hashed password.
func (s *UserService) CreateUser(ctx context.Context, email, password, name string) (*entity.User, error) {
	u, err := s.newUser(email, password, name)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.sendWelcome(ctx, u)
	return u, nil
}

// CreateSuperuser registers a staff account with every permission.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password, name string) (*entity.User, error) {
	u, err := s.newUser(email, password, name)
	if err != nil {
		return nil, err
	}
	u.IsStaff = true
	u.IsSuperuser = true
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) newUser(email, password, name string) (*entity.User, error) {
	if entity.NormalizeEmail(email) == "" {
		return nil, entity.ErrEmailRequired
	}
	if err := s.checkPassword(password); err != nil {
		return nil, err
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return entity.NewUser(email, strings.TrimSpace(name), hash)
}

func (s *UserService) sendWelcome(ctx context.Context, u *entity.User) {
	if s.Mail == nil || s.Config == nil || !s.Config.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData(s.Config, u.Name, u.Email, mailtpl.WithTime(s.now())),
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("queue welcome email failed")
	}
}

// Authenticate validates email/password and returns the user without issuing tokens.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil || u == nil {
		return nil, entity.ErrInvalidCredentials
	}
	if !u.IsActive || !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, entity.ErrInvalidCredentials
	}
	return u, nil
}

// IssueToken signs an access token and records its session.
func (s *UserService) IssueToken(ctx context.Context, u *entity.User) (Token, error) {
	sid := uuid.NewString()
	access, exp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return Token{}, err
	}
	if s.Sessions != nil {
		sess := entity.Session{ID: sid, UserID: u.ID, Email: u.Email, Name: u.Name}
		if err := s.Sessions.Create(ctx, sess, s.JWT.AccessTTL); err != nil {
			return Token{}, fmt.Errorf("store session: %w", err)
		}
	}
	return Token{Token: access, SessionID: sid, ExpiresAt: exp}, nil
}

// Login authenticates, issues a token and stamps last_login.
func (s *UserService) Login(ctx context.Context, email, password string) (Token, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return Token{}, err
	}
	tok, err := s.IssueToken(ctx, u)
	if err != nil {
		return Token{}, err
	}
	now := s.now().UTC()
	u.LastLogin = &now
	if err := s.Repo.Update(ctx, u); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("update last_login failed")
	}
	return tok, nil
}

// Logout revokes the session behind the current token.
func (s *UserService) Logout(ctx context.Context, userID int64, sessionID string) error {
	if s.Sessions == nil {
		return nil
	}
	return s.Sessions.Delete(ctx, userID, sessionID)
}

// SessionActive reports whether a token's session is still live. Without a
// session store every validly signed token is accepted.
func (s *UserService) SessionActive(ctx context.Context, userID int64, sessionID string) (bool, error) {
	if s.Sessions == nil {
		return true, nil
	}
	return s.Sessions.Exists(ctx, userID, sessionID)
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, entity.ErrUnauthorized
	}
	return u, nil
}

// UpdateProfileInput carries a partial update; nil fields are left as they are.
type UpdateProfileInput struct {
	Name     *string
	Email    *string
	Password *string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, sessionID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := entity.NormalizeEmail(*in.Email)
		if email == "" {
			return nil, entity.ErrEmailRequired
		}
		u.Email = email
	}
	if in.Password != nil {
		if err := s.checkPassword(*in.Password); err != nil {
			return nil, err
		}
		hash, err := helpers.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.Password = hash
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}

	if s.Sessions != nil && sessionID != "" {
		sess := entity.Session{ID: sessionID, UserID: u.ID, Email: u.Email, Name: u.Name}
		if err := s.Sessions.Touch(ctx, sess); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("refresh session failed")
		}
	}
	return u, nil
}
