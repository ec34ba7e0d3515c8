package auth

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/2beens/crossfield/pkg"
	log "github.com/sirupsen/logrus"
)

type Service struct {
	admin    Admin
	sessions *SessionManager
	// ability to inject the password check (for unit testing slow or cancelled checks)
	CheckPasswordFunc func(password, hash string) bool
}

func NewAuthService(admin Admin, sessions *SessionManager) *Service {
	return &Service{
		admin:             admin,
		sessions:          sessions,
		CheckPasswordFunc: pkg.CheckPasswordHash,
	}
}

func (s *Service) Sessions() *SessionManager {
	return s.sessions
}

// VerifyCredentials compares the username exactly and the password against the
// configured bcrypt hash. Missing configuration returns ErrCredentialsNotConfigured.
func (s *Service) VerifyCredentials(ctx context.Context, username, password string) (bool, error) {
	if s.admin.Username == "" || s.admin.PasswordHash == "" {
		return false, ErrCredentialsNotConfigured
	}

	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) == 1

	// bcrypt is slow on purpose, run it off the caller so a cancelled request returns right away
	passwordOK := make(chan bool, 1)
	go func() {
		passwordOK <- s.CheckPasswordFunc(password, s.admin.PasswordHash)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case ok := <-passwordOK:
		return ok && usernameOK, nil
	}
}

// Login verifies the credentials and sets a fresh session cookie on w.
func (s *Service) Login(ctx context.Context, w http.ResponseWriter, creds Credentials) error {
	ok, err := s.VerifyCredentials(ctx, creds.Username, creds.Password)
	if err != nil {
		return err
	}
	if !ok {
		log.Tracef("[login] failed login attempt for user: %s", creds.Username)
		return ErrWrongCredentials
	}

	if _, err := s.sessions.Issue(w); err != nil {
		return err
	}

	return nil
}

func (s *Service) Logout(w http.ResponseWriter) {
	s.sessions.Clear(w)
}
