package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	identitydomain "authgate/backend/internal/identity/domain"
	"authgate/backend/internal/security"
	sessiondomain "authgate/backend/internal/session/domain"
	userdomain "authgate/backend/internal/user/domain"
)

const (
	// defaultRetryAfter is used when the rate limiter blocks a login without
	// supplying its own cooldown.
	defaultRetryAfter = 5 * time.Minute
	// activityUpdateTimeout bounds the detached session-activity update so a
	// slow store cannot leak goroutines indefinitely.
	activityUpdateTimeout = 5 * time.Second
)

// UserRepository is the minimal user store needed by the auth service.
// Lookups match on the normalized email; Get methods return (nil, nil) when
// no row exists. Save upserts and reports a duplicate normalized email as
// userdomain.ErrDuplicateEmail.
type UserRepository interface {
	GetByEmail(ctx context.Context, email identitydomain.Email) (*userdomain.User, error)
	EmailExists(ctx context.Context, email identitydomain.Email) (bool, error)
	GetByID(ctx context.Context, id identitydomain.UserID) (*userdomain.User, error)
	Save(ctx context.Context, u *userdomain.User) error
}

// SessionRepository is the minimal session store needed by the auth service.
// Delete is idempotent; UpdateActivity is best-effort and may fail without
// consequence for the caller.
type SessionRepository interface {
	GetByID(ctx context.Context, id identitydomain.SessionID) (*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	Delete(ctx context.Context, id identitydomain.SessionID) error
	UpdateActivity(ctx context.Context, id identitydomain.SessionID, at time.Time) error
}

// PasswordHasher hashes and verifies credentials. Compare must run in
// constant time relative to the outcome for fixed-length inputs.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// RateLimitResult is the limiter's verdict for one attempt.
type RateLimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
}

// RateLimiter throttles repeated attempts keyed by (identifier, action).
// Window semantics are the adapter's choice.
type RateLimiter interface {
	CheckLimit(ctx context.Context, identifier, action string) (RateLimitResult, error)
}

// Clock supplies the current time. Lockout, expiry, and sliding-refresh
// decisions only ever see injected time, which keeps them deterministic in
// tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// RegisterRequest carries the registration form fields.
type RegisterRequest struct {
	Email           string
	Password        string
	ConfirmPassword string
}

// RegisterResult is returned on successful registration.
type RegisterResult struct {
	UserID string
}

// LoginRequest carries the login form fields plus client metadata recorded on
// the account and session.
type LoginRequest struct {
	Email      string
	Password   string
	IPAddress  string
	UserAgent  string
	RedirectTo string
}

// AuthResult is returned on successful login. RedirectTo is the validated
// same-origin path the handler should redirect to.
type AuthResult struct {
	UserID     string
	SessionID  string
	CSRFToken  string
	RedirectTo string
}

// UserResponse describes the authenticated principal for read paths.
type UserResponse struct {
	ID          string
	Email       string
	CreatedAt   time.Time
	LastLoginAt *time.Time
}

// AuthService implements registration, login, logout, and current-principal
// resolution. It is stateless and re-entrant; every call works off injected
// collaborators only.
type AuthService struct {
	users      UserRepository
	sessions   SessionRepository
	hasher     PasswordHasher
	limiter    RateLimiter
	clock      Clock
	rand       io.Reader
	sessionTTL time.Duration
}

// Dependencies collects the collaborators for NewAuthService. Clock and Rand
// default to the system clock and crypto/rand when nil.
type Dependencies struct {
	Users      UserRepository
	Sessions   SessionRepository
	Hasher     PasswordHasher
	Limiter    RateLimiter
	Clock      Clock
	Rand       io.Reader
	SessionTTL time.Duration
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(deps Dependencies) *AuthService {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	randSource := deps.Rand
	if randSource == nil {
		randSource = rand.Reader
	}
	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		users:      deps.Users,
		sessions:   deps.Sessions,
		hasher:     deps.Hasher,
		limiter:    deps.Limiter,
		clock:      clock,
		rand:       randSource,
		sessionTTL: ttl,
	}
}

// Register creates an account. The confirm-password check runs before any
// other validation so its precedence is predictable for clients. The
// email-existence check and the password hash are independent I/O and run
// concurrently; a save-time unique violation is still mapped to a conflict to
// cover the race between the existence check and the write.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (RegisterResult, error) {
	if req.Password != req.ConfirmPassword {
		return RegisterResult{}, fieldError("confirmPassword", "Passwords do not match")
	}
	email, err := identitydomain.NewEmail(req.Email)
	if err != nil {
		return RegisterResult{}, fieldError("email", "Invalid email address")
	}
	password, err := identitydomain.NewPassword(req.Password)
	if err != nil {
		return RegisterResult{}, fieldError("password", passwordMessage(err))
	}

	var (
		exists       bool
		passwordHash string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		exists, err = s.users.EmailExists(gctx, email)
		return err
	})
	g.Go(func() error {
		var err error
		passwordHash, err = s.hasher.Hash(password.Plaintext())
		return err
	})
	if err := g.Wait(); err != nil {
		return RegisterResult{}, fmt.Errorf("register: %w", err)
	}
	if exists {
		return RegisterResult{}, &ConflictError{Message: "Email is already registered"}
	}

	user := userdomain.New(identitydomain.NewUserID(), email, passwordHash, s.clock.Now())
	if err := s.users.Save(ctx, &user); err != nil {
		if isDuplicateEmail(err) {
			return RegisterResult{}, &ConflictError{Message: "Email is already registered"}
		}
		return RegisterResult{}, fmt.Errorf("register: save user: %w", err)
	}
	return RegisterResult{UserID: user.ID.String()}, nil
}

// Login authenticates credentials and issues a session. The rate limit is
// checked before any password verification so attackers cannot burn hashing
// capacity, and the nonexistent-account path verifies against a fixed dummy
// hash so it costs the same as a wrong password.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (AuthResult, error) {
	redirectTo, err := validateRedirectURL(req.RedirectTo)
	if err != nil {
		return AuthResult{}, fieldError("redirectTo", "Invalid redirect target")
	}
	email, err := identitydomain.NewEmail(req.Email)
	if err != nil {
		return AuthResult{}, fieldError("email", "Invalid email address")
	}
	if req.Password == "" {
		return AuthResult{}, fieldError("password", "Password is required")
	}
	password := identitydomain.UncheckedPassword(req.Password)

	if s.limiter != nil {
		verdict, err := s.limiter.CheckLimit(ctx, email.Normalized(), "login")
		// A broken limiter fails open: login availability outranks throttling.
		if err == nil && !verdict.Allowed {
			retryAfter := verdict.RetryAfter
			if retryAfter <= 0 {
				retryAfter = defaultRetryAfter
			}
			return AuthResult{}, &RateLimitError{RetryAfter: retryAfter}
		}
	}

	now := s.clock.Now()
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("login: find user: %w", err)
	}
	if user == nil {
		// Equalize timing with the wrong-password path before failing.
		_ = s.hasher.Compare(security.DummyHash, password.Plaintext())
		return AuthResult{}, &UnauthorizedError{Message: msgInvalidCredentials}
	}
	if user.IsLocked(now) {
		return AuthResult{}, &UnauthorizedError{Message: msgAccountLocked}
	}
	if err := s.hasher.Compare(user.PasswordHash, password.Plaintext()); err != nil {
		failed := user.RecordFailedLogin(now)
		_ = s.users.Save(ctx, &failed)
		return AuthResult{}, &UnauthorizedError{Message: msgInvalidCredentials}
	}

	loggedIn := user.RecordSuccessfulLogin(now, req.IPAddress, req.UserAgent)
	if err := s.users.Save(ctx, &loggedIn); err != nil {
		return AuthResult{}, fmt.Errorf("login: save user: %w", err)
	}

	csrfToken, err := identitydomain.NewCSRFToken(s.rand)
	if err != nil {
		return AuthResult{}, fmt.Errorf("login: %w", err)
	}
	session := sessiondomain.New(identitydomain.NewSessionID(), loggedIn.ID, csrfToken, req.IPAddress, req.UserAgent, now, s.sessionTTL)
	if err := s.sessions.Create(ctx, &session); err != nil {
		return AuthResult{}, fmt.Errorf("login: create session: %w", err)
	}

	return AuthResult{
		UserID:     loggedIn.ID.String(),
		SessionID:  session.ID.String(),
		CSRFToken:  csrfToken.String(),
		RedirectTo: redirectTo,
	}, nil
}

// Logout terminates the session identified by rawSessionID. It always
// succeeds from the caller's point of view: a malformed id touches no
// storage, and deleting an unknown session is a no-op.
func (s *AuthService) Logout(ctx context.Context, rawSessionID string) error {
	id, err := identitydomain.ParseSessionID(rawSessionID)
	if err != nil {
		return nil
	}
	_ = s.sessions.Delete(ctx, id)
	return nil
}

// CurrentUser resolves the principal behind rawSessionID. Malformed ids,
// unknown sessions, and sessions whose user no longer exists all collapse to
// the same unauthorized message; only expiry is reported distinctly, since a
// read path is not a credential-guessing surface. When the sliding-activity
// threshold has passed, a detached best-effort activity update is scheduled
// and its outcome discarded.
func (s *AuthService) CurrentUser(ctx context.Context, rawSessionID string) (UserResponse, error) {
	id, err := identitydomain.ParseSessionID(rawSessionID)
	if err != nil {
		return UserResponse{}, &UnauthorizedError{Message: msgInvalidSession}
	}
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return UserResponse{}, fmt.Errorf("current user: find session: %w", err)
	}
	if session == nil {
		return UserResponse{}, &UnauthorizedError{Message: msgInvalidSession}
	}
	now := s.clock.Now()
	if session.IsExpired(now) {
		return UserResponse{}, &UnauthorizedError{Message: msgSessionExpired}
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return UserResponse{}, fmt.Errorf("current user: find user: %w", err)
	}
	if user == nil {
		// Orphaned session: indistinguishable from an invalid one, so account
		// deletion timing is not observable through this path.
		return UserResponse{}, &UnauthorizedError{Message: msgInvalidSession}
	}

	if session.NeedsRefresh(now) {
		sessionID := session.ID
		go func() {
			updateCtx, cancel := context.WithTimeout(context.Background(), activityUpdateTimeout)
			defer cancel()
			_ = s.sessions.UpdateActivity(updateCtx, sessionID, now)
		}()
	}

	return UserResponse{
		ID:          user.ID.String(),
		Email:       user.Email.Normalized(),
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}, nil
}

// validateRedirectURL accepts only same-origin relative paths. Empty input
// defaults to "/". Absolute URLs, protocol-relative URLs, and backslashes are
// rejected as open-redirect and path-confusion vectors.
func validateRedirectURL(raw string) (string, error) {
	if raw == "" {
		return "/", nil
	}
	if strings.Contains(raw, "://") {
		return "", fmt.Errorf("absolute redirect %q", raw)
	}
	if strings.HasPrefix(raw, "//") {
		return "", fmt.Errorf("protocol-relative redirect %q", raw)
	}
	if strings.Contains(raw, `\`) {
		return "", fmt.Errorf("backslash in redirect %q", raw)
	}
	return raw, nil
}

func passwordMessage(err error) string {
	if msg, ok := strings.CutPrefix(err.Error(), identitydomain.ErrWeakPassword.Error()+": "); ok {
		return msg
	}
	return "Password does not meet the strength requirements"
}

func isDuplicateEmail(err error) bool {
	return errors.Is(err, userdomain.ErrDuplicateEmail)
}
