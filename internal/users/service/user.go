package service

import (
	"context"
	"errors"
	userserrors "staybook/internal/users/errors"
	"staybook/internal/users/repository"
	"staybook/pkg/auth"
	"staybook/pkg/config"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/model"
	"staybook/pkg/sanitizer"
	"strings"
)

const (
	IdentityEventUserCreated = "user.created"
	IdentityEventUserUpdated = "user.updated"
	IdentityEventUserDeleted = "user.deleted"
)

// IdentityEvent is the webhook payload sent by the identity provider.
type IdentityEvent struct {
	Type string       `json:"type"`
	Data IdentityUser `json:"data"`
}

type IdentityUser struct {
	ID             string `json:"id"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	ImageURL  string `json:"image_url"`
}

func (u IdentityUser) email() string {
	if len(u.EmailAddresses) == 0 {
		return ""
	}
	return strings.TrimSpace(u.EmailAddresses[0].EmailAddress)
}

func (u IdentityUser) displayName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return strings.TrimSpace(u.Username)
}

type UserService interface {
	// EnsureUser returns the stored profile for a verified identity and
	// creates it on first sight.
	EnsureUser(ctx context.Context, id *auth.Identity) (*model.User, error)
	AddRecentSearchedCity(ctx context.Context, user *model.User, city string) ([]string, error)
	HandleIdentityEvent(ctx context.Context, event *IdentityEvent) error
}

type userService struct {
	repo repository.UserRepository
	cfg  *config.Config
}

func NewUserService(repo repository.UserRepository, cfg *config.Config) UserService {
	return &userService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *userService) EnsureUser(ctx context.Context, id *auth.Identity) (*model.User, error) {
	if id == nil || id.Subject == "" {
		return nil, apperrors.Unauthorized("Not authorized")
	}

	user, err := s.repo.FindByID(ctx, id.Subject)
	if err == nil {
		if user.HasPlaceholderProfile() && (id.Email != "" || id.Image != "") {
			s.upgradeProfile(ctx, user, id.Name, id.Email, id.Image)
		}
		return user, nil
	}
	if !errors.Is(err, userserrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to load user",
			"user_id", id.Subject,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to load user", err)
	}

	user, err = s.repo.InsertIfAbsent(ctx, newUser(id.Subject, id.Name, id.Email, id.Image))
	if err != nil {
		s.cfg.Log.Error("Failed to create user",
			"user_id", id.Subject,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User created on first request", "user_id", user.ID)
	return user, nil
}

// upgradeProfile replaces placeholder fields once real data is known. A failed
// write is not fatal; the next request retries.
func (s *userService) upgradeProfile(ctx context.Context, user *model.User, name, email, image string) {
	fresh := newUser(user.ID, name, email, image)
	if email == "" {
		fresh.Email = user.Email
	}
	if image == "" {
		fresh.Image = user.Image
	}
	if name == "" {
		fresh.Username = user.Username
	}

	if err := s.repo.UpdateProfile(ctx, user.ID, fresh.Username, fresh.Email, fresh.Image); err != nil {
		s.cfg.Log.Warn("Failed to upgrade placeholder profile",
			"user_id", user.ID,
			"error", err,
		)
		return
	}
	user.Username, user.Email, user.Image = fresh.Username, fresh.Email, fresh.Image
}

func (s *userService) AddRecentSearchedCity(ctx context.Context, user *model.User, city string) ([]string, error) {
	city = sanitizer.NormalizeCity(city)
	if city == "" {
		return nil, apperrors.InvalidInput("City is required")
	}

	cities := model.PushRecentCity(user.RecentSearchedCities, city, s.cfg.RecentCitiesLimit)
	if err := s.repo.SetRecentCities(ctx, user.ID, cities); err != nil {
		s.cfg.Log.Error("Failed to store recent city",
			"user_id", user.ID,
			"city", city,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to store recent city", err)
	}

	user.RecentSearchedCities = cities
	return cities, nil
}

func (s *userService) HandleIdentityEvent(ctx context.Context, event *IdentityEvent) error {
	if event.Data.ID == "" {
		return apperrors.InvalidInput("Webhook payload has no user id")
	}

	switch event.Type {
	case IdentityEventUserCreated, IdentityEventUserUpdated:
		return s.syncUser(ctx, event.Data)
	case IdentityEventUserDeleted:
		err := s.repo.Delete(ctx, event.Data.ID)
		if err != nil && !errors.Is(err, userserrors.ErrNotFound) {
			s.cfg.Log.Error("Failed to delete user from webhook",
				"user_id", event.Data.ID,
				"error", err,
			)
			return apperrors.Internal("Failed to delete user", err)
		}
		s.cfg.Log.Info("User deleted by identity provider", "user_id", event.Data.ID)
		return nil
	default:
		s.cfg.Log.Debug("Ignoring identity event", "type", event.Type)
		return nil
	}
}

func (s *userService) syncUser(ctx context.Context, data IdentityUser) error {
	name, email, image := data.displayName(), data.email(), strings.TrimSpace(data.ImageURL)

	existing, err := s.repo.FindByID(ctx, data.ID)
	switch {
	case err == nil:
		fresh := newUser(existing.ID, name, email, image)
		err = s.repo.UpdateProfile(ctx, existing.ID, fresh.Username, fresh.Email, fresh.Image)
	case errors.Is(err, userserrors.ErrNotFound):
		_, err = s.repo.InsertIfAbsent(ctx, newUser(data.ID, name, email, image))
	}
	if err != nil {
		s.cfg.Log.Error("Failed to sync user from webhook",
			"user_id", data.ID,
			"error", err,
		)
		return apperrors.Internal("Failed to sync user", err)
	}

	s.cfg.Log.Info("User synced from identity provider", "user_id", data.ID)
	return nil
}

// newUser fills missing profile fields with placeholders.
func newUser(id, name, email, image string) *model.User {
	if email == "" {
		email = model.PlaceholderEmail(id)
	}
	if image == "" {
		image = model.PlaceholderImage
	}
	if name == "" {
		name = fallbackName(email)
	}
	return &model.User{
		ID:                   id,
		Username:             name,
		Email:                email,
		Image:                image,
		Role:                 model.RoleUser,
		RecentSearchedCities: []string{},
	}
}

func fallbackName(email string) string {
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	return "Guest"
}
