package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	CookieName = "crossfield-admin"
	RoleAdmin  = "admin"
	DefaultTTL = 24 * 7 * time.Hour
)

var (
	ErrCredentialsNotConfigured = errors.New("admin credentials not configured")
	ErrSecretNotConfigured      = errors.New("session signing secret not configured")
	ErrWrongCredentials         = errors.New("wrong credentials")
)

type Admin struct {
	Username     string
	PasswordHash string
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Config is built once at startup from the environment and handed to the
// auth components, nothing in this package reads the environment itself.
type Config struct {
	Admin         Admin
	SigningSecret string
	TTL           time.Duration
	SameSite      http.SameSite
}

// ParseSameSite maps the config value to a cookie SameSite mode, empty means lax.
func ParseSameSite(mode string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return http.SameSiteDefaultMode, fmt.Errorf("unknown cookie same site mode: %s", mode)
	}
}
