package user

import (
	"context"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/auth"
)

type Service struct {
	repo   Repository
	issuer *auth.Issuer
}

func NewService(repo Repository, issuer *auth.Issuer) *Service {
	return &Service{repo: repo, issuer: issuer}
}

type Registration struct {
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role"`
	Phone    string    `json:"phone"`
	Location string    `json:"location"`
}

type Session struct {
	auth.TokenPair
	User User `json:"user"`
}

func (s *Service) Register(ctx context.Context, reg Registration) (User, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	if reg.Username == "" || reg.Email == "" || reg.Password == "" {
		return User{}, apperr.Validation("username, email and password are required")
	}
	if reg.Role == "" {
		reg.Role = auth.RoleCustomer
	}
	if reg.Role != auth.RoleCustomer && reg.Role != auth.RoleVendor {
		return User{}, apperr.Validation("role must be customer or vendor")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	created, err := s.repo.Create(ctx, User{
		Username: reg.Username,
		Email:    reg.Email,
		Password: string(hashed),
		Role:     reg.Role,
		Phone:    strings.TrimSpace(reg.Phone),
		Location: strings.TrimSpace(reg.Location),
	})
	if err != nil {
		return User{}, err
	}
	log.WithFields(log.Fields{"user_id": created.ID, "role": created.Role}).Info("user registered")
	return sanitizeUser(created), nil
}

// CreateAdmin creates an admin account or promotes an existing one with the
// same email, resetting its password.
func (s *Service) CreateAdmin(ctx context.Context, username, email, password string) (User, error) {
	if email == "" || password == "" {
		return User{}, apperr.Validation("email and password are required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		existing.Role = auth.RoleAdmin
		existing.Verified = true
		existing.Password = string(hashed)
		updated, err := s.repo.Update(ctx, existing)
		return sanitizeUser(updated), err
	case apperr.KindOf(err) != apperr.KindNotFound:
		return User{}, err
	}

	if username == "" {
		username = "admin"
	}
	created, err := s.repo.Create(ctx, User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Role:     auth.RoleAdmin,
		Verified: true,
	})
	return sanitizeUser(created), err
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates and stores the freshly issued refresh token so that
// only the latest one can be exchanged.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	return s.startSession(ctx, u)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	if refreshToken == "" {
		return Session{}, apperr.Unauthorized("no refresh token provided")
	}
	id, err := s.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return Session{}, apperr.Unauthorized("invalid refresh token")
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return Session{}, apperr.Unauthorized("invalid refresh token")
		}
		return Session{}, err
	}
	if u.RefreshToken == "" || u.RefreshToken != refreshToken {
		return Session{}, apperr.Unauthorized("invalid refresh token")
	}
	return s.startSession(ctx, u)
}

func (s *Service) Logout(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetRefreshToken(ctx, id, "")
}

func (s *Service) startSession(ctx context.Context, u User) (Session, error) {
	pair, err := s.issuer.Issue(u.ID, u.Role)
	if err != nil {
		return Session{}, err
	}
	if err := s.repo.SetRefreshToken(ctx, u.ID, pair.RefreshToken); err != nil {
		return Session{}, err
	}
	return Session{TokenPair: pair, User: sanitizeUser(u)}, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	return sanitizeUser(u), nil
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, p Profile) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if p.Username != nil {
		name := strings.TrimSpace(*p.Username)
		if name == "" {
			return User{}, apperr.Validation("username cannot be empty")
		}
		u.Username = name
	}
	if p.Phone != nil {
		u.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Location != nil {
		u.Location = strings.TrimSpace(*p.Location)
	}
	u.Password = ""
	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return User{}, err
	}
	return sanitizeUser(updated), nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return sanitizeAll(users), nil
}

func (s *Service) ListByRole(ctx context.Context, role auth.Role) ([]User, error) {
	users, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	return sanitizeAll(users), nil
}

func (s *Service) CountByRole(ctx context.Context) (map[auth.Role]int, error) {
	return s.repo.CountByRole(ctx)
}

// SetVerified flips the verification flag of a vendor. Non-vendors are
// reported as missing vendors.
func (s *Service) SetVerified(ctx context.Context, id uuid.UUID, verified bool) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if u.Role != auth.RoleVendor {
		return User{}, apperr.NotFound("vendor not found")
	}
	u.Verified = verified
	u.Password = ""
	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return User{}, err
	}
	return sanitizeUser(updated), nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func sanitizeAll(users []User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, sanitizeUser(u))
	}
	return out
}
