package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/yoointerview/internal/identity"
	"github.com/yoockh/yoointerview/internal/models"
	pgrepo "github.com/yoockh/yoointerview/internal/repositories/postgres"
	"github.com/yoockh/yoointerview/internal/utils"
)

type AuthProvider interface {
	CreateAccount(ctx context.Context, email, password, displayName string) (identity.Session, error)
	SignIn(ctx context.Context, email, password string) (identity.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	CurrentUser(ctx context.Context, accessToken string) (models.User, error)
}

// Account is the signed-in user together with the profile row, when one exists.
type Account struct {
	User    models.User     `json:"user"`
	Profile *models.Profile `json:"profile,omitempty"`
}

type AccountService interface {
	SignUp(ctx context.Context, email, password, displayName string) (identity.Session, error)
	SignIn(ctx context.Context, email, password string) (identity.Session, error)
	SignOut(ctx context.Context, user models.User, accessToken string) error
	Me(ctx context.Context, user models.User, accessToken string) (*Account, error)
}

type accountService struct {
	auth     AuthProvider
	profiles pgrepo.ProfileRepository
	watcher  *identity.Watcher
	log      *logrus.Logger
	now      func() time.Time
}

func NewAccountService(auth AuthProvider, profiles pgrepo.ProfileRepository, watcher *identity.Watcher, log *logrus.Logger) AccountService {
	return &accountService{
		auth:     auth,
		profiles: profiles,
		watcher:  watcher,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SignUp creates the account and its profile row. When the project requires
// email confirmation the returned session has no access token.
func (s *accountService) SignUp(ctx context.Context, email, password, displayName string) (identity.Session, error) {
	const op = "AccountService.SignUp"

	email = strings.TrimSpace(email)
	displayName = strings.TrimSpace(displayName)
	if email == "" || password == "" {
		return identity.Session{}, utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	sess, err := s.auth.CreateAccount(ctx, email, password, displayName)
	if err != nil && !errors.Is(err, identity.ErrConfirmationPending) {
		return identity.Session{}, providerError(op, utils.CodeInvalidArgument, err)
	}

	now := s.now()
	p := &models.Profile{
		UserID:    sess.User.ID,
		Email:     email,
		FullName:  displayName,
		CreatedAt: now,
		LastLogin: now,
	}
	// sign-in recreates a missing row, so a failed write here is not fatal
	if perr := s.profiles.Create(ctx, p); perr != nil {
		s.log.WithError(perr).WithField("user_id", p.UserID).Warn("profile create failed")
	}

	if sess.AccessToken != "" {
		s.publishSignIn(sess.User)
	}
	return sess, nil
}

func (s *accountService) SignIn(ctx context.Context, email, password string) (identity.Session, error) {
	const op = "AccountService.SignIn"

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return identity.Session{}, utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	sess, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		return identity.Session{}, providerError(op, utils.CodeUnauthorized, err)
	}

	if perr := s.profiles.TouchLogin(ctx, sess.User.ID, sess.User.Email, s.now()); perr != nil {
		s.log.WithError(perr).WithField("user_id", sess.User.ID).Warn("last login update failed")
	}
	s.publishSignIn(sess.User)
	return sess, nil
}

// SignOut revokes the session and tells subscribers, even when the provider
// call fails, so that nothing more is saved under this identity.
func (s *accountService) SignOut(ctx context.Context, user models.User, accessToken string) error {
	const op = "AccountService.SignOut"

	err := s.auth.SignOut(ctx, accessToken)
	if s.watcher != nil {
		s.watcher.Publish(identity.Change{Kind: identity.SignedOut, UserID: user.ID})
	}
	if err != nil {
		return providerError(op, utils.CodeUnavailable, err)
	}
	return nil
}

// Me asks the provider for the current user and falls back to the token
// claims when the provider cannot be reached.
func (s *accountService) Me(ctx context.Context, user models.User, accessToken string) (*Account, error) {
	const op = "AccountService.Me"

	if user.ID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "unauthorized", nil)
	}
	acc := &Account{User: user}

	if accessToken != "" {
		fresh, err := s.auth.CurrentUser(ctx, accessToken)
		var pe *identity.ProviderError
		switch {
		case errors.As(err, &pe) && pe.Status == http.StatusUnauthorized:
			return nil, utils.E(utils.CodeUnauthorized, op, pe.Reason, err)
		case err != nil:
			s.log.WithError(err).WithField("user_id", user.ID).Warn("current user lookup failed")
		case fresh.ID == user.ID:
			acc.User = fresh
		}
	}

	p, err := s.profiles.GetByUserID(ctx, user.ID)
	switch {
	case errors.Is(err, utils.ErrNotFound):
	case err != nil:
		return nil, utils.E(utils.CodeInternal, op, "failed to get profile", err)
	default:
		acc.Profile = p
		if acc.User.DisplayName == "" {
			acc.User.DisplayName = p.FullName
		}
	}
	return acc, nil
}

func (s *accountService) publishSignIn(u models.User) {
	if s.watcher == nil || u.ID == "" {
		return
	}
	user := u
	s.watcher.Publish(identity.Change{Kind: identity.SignedIn, UserID: u.ID, User: &user})
}

// providerError keeps the provider's reason as the caller-facing message.
// clientCode is used for 4xx answers; transport failures and 5xx are UNAVAILABLE.
func providerError(op string, clientCode utils.Code, err error) error {
	var pe *identity.ProviderError
	if errors.As(err, &pe) {
		if pe.Status == http.StatusTooManyRequests || pe.Status >= 500 {
			return utils.E(utils.CodeUnavailable, op, pe.Reason, err)
		}
		return utils.E(clientCode, op, pe.Reason, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return utils.E(utils.CodeTimeout, op, "auth service timed out", err)
	}
	return utils.E(utils.CodeUnavailable, op, "auth service unavailable", err)
}
