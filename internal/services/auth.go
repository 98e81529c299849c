package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dbu-union/portal-server/internal/models"
	"github.com/dbu-union/portal-server/internal/registry"
	"github.com/dbu-union/portal-server/internal/session"
)

// sessionTokenTTL bounds how long a login token remains usable.
const sessionTokenTTL = 7 * 24 * time.Hour

// FederatedProvider exchanges a federated identity for a portal user.
type FederatedProvider interface {
	Exchange(ctx context.Context) (*models.User, error)
}

// MockGoogleProvider is the federated-identity placeholder. It returns a
// fixed student identity after a simulated exchange.
type MockGoogleProvider struct {
	Delay time.Duration
	// Fail forces ErrFederatedAuth, imitating a rejected exchange.
	Fail bool
}

func (p *MockGoogleProvider) Exchange(ctx context.Context) (*models.User, error) {
	if p.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.Delay):
		}
	}
	if p.Fail {
		return nil, models.ErrFederatedAuth
	}
	return &models.User{
		ID:         uuid.NewString(),
		Name:       "Hanna Solomon",
		Email:      "hanna.solomon@dbu.edu.et",
		StudentID:  "DBU/2022/156",
		Role:       models.RoleStudent,
		IsVerified: true,
	}, nil
}

// SessionManager orchestrates login, logout and session restoration. All
// session state lives in the injected store; the manager itself is
// stateless and safe for concurrent use.
type SessionManager struct {
	registry  *registry.Registry
	store     session.Store
	verifier  CredentialVerifier
	federated FederatedProvider
	domain    string // institutional email domain, e.g. "dbu.edu.et"
	jwtSecret []byte
	now       func() time.Time
	logger    *zap.SugaredLogger
}

// NewSessionManager wires the manager's collaborators.
func NewSessionManager(reg *registry.Registry, store session.Store, verifier CredentialVerifier,
	federated FederatedProvider, domain, jwtSecret string, logger *zap.SugaredLogger) *SessionManager {
	return &SessionManager{
		registry:  reg,
		store:     store,
		verifier:  verifier,
		federated: federated,
		domain:    domain,
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
		logger:    logger,
	}
}

// Login authenticates either a student or, when AdminRole is set, an admin
// against the credential registry. remoteIP feeds the admin access log.
// Every rejection maps to models.ErrInvalidCredentials; the reason is logged
// server-side but never leaked to the caller.
func (m *SessionManager) Login(ctx context.Context, req models.LoginRequest, remoteIP string) (*models.Session, string, error) {
	sess := &models.Session{ID: uuid.NewString()}

	if req.AdminRole != "" {
		user, cred, err := m.adminLogin(ctx, req)
		if err != nil {
			return nil, "", err
		}
		sess.User = user
		sess.Credential = cred
	} else {
		user, err := m.studentLogin(ctx, req)
		if err != nil {
			return nil, "", err
		}
		sess.User = user
	}

	if err := m.persist(ctx, sess); err != nil {
		return nil, "", err
	}

	if sess.Credential != nil {
		m.logAdminAccess(ctx, sess, remoteIP)
	}

	token, err := m.issueToken(sess)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	m.logger.Infow("Login succeeded", "email", sess.User.Email, "role", sess.User.Role)
	return sess, token, nil
}

func (m *SessionManager) adminLogin(ctx context.Context, req models.LoginRequest) (*models.User, *models.AdminCredential, error) {
	role, ok := models.ParseRole(req.AdminRole)
	if !ok || !role.IsAdmin() {
		m.logger.Warnw("Admin login with unknown role", "role", req.AdminRole)
		return nil, nil, models.ErrInvalidCredentials
	}

	if !m.hasInstitutionalDomain(req.Email) {
		m.logger.Warnw("Admin login with foreign domain", "email", req.Email)
		return nil, nil, models.ErrInvalidCredentials
	}

	cred, err := m.registry.ValidateCredential(req.Email, role)
	if err != nil {
		m.logger.Warnw("Admin login not in registry", "email", req.Email, "role", role)
		return nil, nil, models.ErrInvalidCredentials
	}

	if err := m.verifier.Verify(ctx, req.Email, req.Password, req.OTP); err != nil {
		return nil, nil, models.ErrInvalidCredentials
	}

	user := &models.User{
		ID:         "admin-" + string(role),
		Name:       cred.Name,
		Email:      cred.Email,
		Role:       role,
		Branch:     cred.Branch,
		IsVerified: true,
	}
	return user, cred, nil
}

func (m *SessionManager) studentLogin(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	if !m.hasInstitutionalDomain(req.Email) {
		m.logger.Warnw("Student login with foreign domain", "email", req.Email)
		return nil, models.ErrInvalidCredentials
	}

	// Registry emails must come through the admin entry point.
	if _, err := m.registry.FindByEmail(req.Email); err == nil {
		m.logger.Warnw("Student login with reserved admin email", "email", req.Email)
		return nil, models.ErrInvalidCredentials
	}

	if err := m.verifier.Verify(ctx, req.Email, req.Password, req.OTP); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return &models.User{
		ID:         uuid.NewString(),
		Name:       "Student User",
		Email:      strings.ToLower(req.Email),
		Role:       models.RoleStudent,
		IsVerified: true,
	}, nil
}

// LoginWithGoogle runs the federated placeholder flow.
func (m *SessionManager) LoginWithGoogle(ctx context.Context) (*models.Session, string, error) {
	user, err := m.federated.Exchange(ctx)
	if err != nil {
		m.logger.Warnw("Federated login failed", "error", err)
		return nil, "", models.ErrFederatedAuth
	}

	sess := &models.Session{ID: uuid.NewString(), User: user}
	if err := m.persist(ctx, sess); err != nil {
		return nil, "", err
	}

	token, err := m.issueToken(sess)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return sess, token, nil
}

// Logout clears the session records unconditionally. Logging out an already
// cleared session is a no-op, not an error.
func (m *SessionManager) Logout(ctx context.Context, sessionID string) error {
	if err := m.store.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Restore reloads a persisted session without revalidating against the
// registry (trust-on-read). Returns (nil, nil) when no session exists.
func (m *SessionManager) Restore(ctx context.Context, sessionID string) (*models.Session, error) {
	user, err := m.store.LoadUser(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, nil
	}

	cred, err := m.store.LoadCredential(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}

	return &models.Session{ID: sessionID, User: user, Credential: cred}, nil
}

// ParseToken validates a session token and returns the session ID.
func (m *SessionManager) ParseToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", models.ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", models.ErrInvalidCredentials
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", models.ErrInvalidCredentials
	}
	return sid, nil
}

func (m *SessionManager) persist(ctx context.Context, sess *models.Session) error {
	if err := m.store.SaveUser(ctx, sess.ID, sess.User); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	if sess.Credential != nil {
		if err := m.store.SaveCredential(ctx, sess.ID, sess.Credential); err != nil {
			return fmt.Errorf("persist credential: %w", err)
		}
	}
	return nil
}

func (m *SessionManager) logAdminAccess(ctx context.Context, sess *models.Session, remoteIP string) {
	entry := models.AdminAccessLogEntry{
		Timestamp:   m.now(),
		AdminEmail:  sess.User.Email,
		AdminName:   sess.Credential.Name,
		Role:        sess.User.Role,
		Action:      "LOGIN",
		IPAddress:   remoteIP,
		Permissions: sess.Credential.Permissions,
	}
	if err := m.store.AppendAccessLog(ctx, entry); err != nil {
		// Log failure must not block the login itself
		m.logger.Errorw("Failed to append admin access log", "error", err)
	}
}

func (m *SessionManager) issueToken(sess *models.Session) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid":  sess.ID,
		"sub":  sess.User.ID,
		"role": string(sess.User.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(sessionTokenTTL).Unix(),
	})
	return token.SignedString(m.jwtSecret)
}

func (m *SessionManager) hasInstitutionalDomain(email string) bool {
	return strings.HasSuffix(strings.ToLower(email), "@"+m.domain)
}
