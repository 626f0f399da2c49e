package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity carried by an access token.
type Claims struct {
	UserID uuid.UUID
	Role   Role
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Issuer signs and verifies HS256 access and refresh tokens. The two token
// kinds use different secrets so a refresh token never passes as access.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (i *Issuer) AccessSecret() []byte { return i.accessSecret }

func (i *Issuer) Issue(userID uuid.UUID, role Role) (TokenPair, error) {
	now := i.now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   userID.String(),
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(i.accessTTL).Unix(),
	})
	signedAccess, err := access.SignedString(i.accessSecret)
	if err != nil {
		return TokenPair{}, err
	}

	// jti keeps two refresh tokens issued in the same second distinct
	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  userID.String(),
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(i.refreshTTL).Unix(),
	})
	signedRefresh, err := refresh.SignedString(i.refreshSecret)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: signedAccess, RefreshToken: signedRefresh}, nil
}

func (i *Issuer) ParseAccess(token string) (Claims, error) {
	claims, err := parse(token, i.accessSecret)
	if err != nil {
		return Claims{}, err
	}
	return ClaimsFromMap(claims)
}

// ParseRefresh returns the user id of a valid refresh token.
func (i *Issuer) ParseRefresh(token string) (uuid.UUID, error) {
	claims, err := parse(token, i.refreshSecret)
	if err != nil {
		return uuid.Nil, err
	}
	return idFromMap(claims)
}

func parse(token string, secret []byte) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func ClaimsFromMap(claims jwt.MapClaims) (Claims, error) {
	id, err := idFromMap(claims)
	if err != nil {
		return Claims{}, err
	}
	role, _ := claims["role"].(string)
	if !Role(role).Valid() {
		return Claims{}, ErrInvalidToken
	}
	return Claims{UserID: id, Role: Role(role)}, nil
}

func idFromMap(claims jwt.MapClaims) (uuid.UUID, error) {
	raw, ok := claims["id"].(string)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}
