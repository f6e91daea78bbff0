package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type authSessionRepository interface {
	Create(ctx context.Context, session *models.AuthSession) error
	FindByID(ctx context.Context, id string) (*models.AuthSession, error)
	ListByUser(ctx context.Context, userID string) ([]models.AuthSession, error)
	Delete(ctx context.Context, id string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*models.User, error)
}

type teacherScopeReader interface {
	FindByUserAndSession(ctx context.Context, userID, sessionID string) (*models.Teacher, error)
}

type teacherClassReader interface {
	FindByTeacher(ctx context.Context, teacherID string) (*models.Class, error)
	ListClassSubjectsByTeacher(ctx context.Context, teacherID string) ([]models.ClassSubjectDetail, error)
}

type profileLinkReader interface {
	ProfilesByUser(ctx context.Context, userID string) ([]models.StudentProfile, error)
	StudentsByProfile(ctx context.Context, profileID string) ([]models.Student, error)
}

type latestSessionReader interface {
	Latest(ctx context.Context) (*models.AcademicSession, error)
}

// AuthService issues, resolves and revokes login sessions.
type AuthService struct {
	sessions authSessionRepository
	users    userReader
	teachers teacherScopeReader
	classes  teacherClassReader
	profiles profileLinkReader
	terms    latestSessionReader
	verifier IdentityVerifier
	secret   []byte
	maxAge   time.Duration
	logger   *zap.Logger
}

// NewAuthService constructs AuthService.
func NewAuthService(sessions authSessionRepository, users userReader, teachers teacherScopeReader, classes teacherClassReader, profiles profileLinkReader, terms latestSessionReader, verifier IdentityVerifier, secret string, maxAge time.Duration, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		sessions: sessions,
		users:    users,
		teachers: teachers,
		classes:  classes,
		profiles: profiles,
		terms:    terms,
		verifier: verifier,
		secret:   []byte(secret),
		maxAge:   maxAge,
		logger:   logger,
	}
}

// Login rotates a presented session or verifies a federated identity
// assertion, then issues a fresh signed session token. The identity's
// email or phone must match an existing user; accounts are never
// created here.
func (s *AuthService) Login(ctx context.Context, presentedToken, idToken, userAgent string) (string, error) {
	var user *models.User

	if presentedToken != "" {
		if session := s.sessionFromToken(ctx, presentedToken); session != nil {
			u, err := s.users.FindByID(ctx, session.UserID)
			if err == nil {
				user = u
				// Rotation: the presented session dies with this login.
				if err := s.sessions.Delete(ctx, session.ID); err != nil {
					s.logger.Warn("failed to rotate session", zap.String("session_id", session.ID), zap.Error(err))
				}
			}
		}
	}

	if user == nil {
		if idToken == "" {
			return "", appErrors.Clone(appErrors.ErrUnauthorized, "")
		}
		identity, err := s.verifier.Verify(ctx, idToken)
		if err != nil {
			s.logger.Info("identity verification failed", zap.Error(err))
			return "", appErrors.Clone(appErrors.ErrUnauthorized, "")
		}
		user, err = s.users.FindByEmailOrPhone(ctx, identity.Email, identity.Email)
		if err != nil {
			if err == sql.ErrNoRows {
				return "", appErrors.Clone(appErrors.ErrUnauthorized, "account does not exist")
			}
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
		}
	}

	session := &models.AuthSession{UserID: user.ID, UserAgent: userAgent}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	token, err := s.signSession(session.ID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	s.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return token, nil
}

// ResolveUser maps a bearer token back to its user, with role-scoped
// associations attached. Any decode failure or lookup miss yields nil
// without error; callers translate nil into 401.
func (s *AuthService) ResolveUser(ctx context.Context, token string) (*models.AuthUser, error) {
	session := s.sessionFromToken(ctx, token)
	if session == nil {
		return nil, nil
	}
	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	authUser := &models.AuthUser{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}

	sessions, err := s.sessions.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	for _, sess := range sessions {
		authUser.Sessions = append(authUser.Sessions, models.SessionInfo{ID: sess.ID, UserAgent: sess.UserAgent})
	}

	switch user.Role {
	case models.RoleTeacher:
		if err := s.attachTeacherScope(ctx, authUser); err != nil {
			return nil, err
		}
	case models.RoleStudent:
		if err := s.attachStudentLinks(ctx, authUser); err != nil {
			return nil, err
		}
	}
	return authUser, nil
}

// Logout deletes the token's session. Absent or invalid sessions are
// treated as already logged out.
func (s *AuthService) Logout(ctx context.Context, token string) {
	session := s.sessionFromToken(ctx, token)
	if session == nil {
		return
	}
	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		s.logger.Warn("failed to delete session", zap.String("session_id", session.ID), zap.Error(err))
	}
}

// SweepStaleSessions deletes sessions older than the configured max
// age. Run out-of-band, never on the request path.
func (s *AuthService) SweepStaleSessions(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.maxAge)
	removed, err := s.sessions.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("session sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("swept stale sessions", zap.Int64("removed", removed))
	}
}

func (s *AuthService) attachTeacherScope(ctx context.Context, authUser *models.AuthUser) error {
	term, err := s.terms.Latest(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest session")
	}
	teacher, err := s.teachers.FindByUserAndSession(ctx, authUser.ID, term.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	scope := &models.TeacherScope{TeacherID: teacher.ID}
	class, err := s.classes.FindByTeacher(ctx, teacher.ID)
	if err != nil && err != sql.ErrNoRows {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load homeroom")
	}
	if err == nil {
		scope.Class = &models.ClassRef{ID: class.ID, Grade: class.Grade, Section: class.Section}
	}
	assignments, err := s.classes.ListClassSubjectsByTeacher(ctx, teacher.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class subjects")
	}
	for _, assignment := range assignments {
		scope.ClassSubjects = append(scope.ClassSubjects, models.ClassSubjectRef{ID: assignment.ID, ClassID: assignment.ClassID})
	}
	authUser.Teacher = scope
	return nil
}

func (s *AuthService) attachStudentLinks(ctx context.Context, authUser *models.AuthUser) error {
	profiles, err := s.profiles.ProfilesByUser(ctx, authUser.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profiles")
	}
	for _, profile := range profiles {
		link := models.StudentLink{ProfileID: profile.ID, Name: profile.Name}
		students, err := s.profiles.StudentsByProfile(ctx, profile.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
		}
		for _, student := range students {
			link.StudentIDs = append(link.StudentIDs, student.ID)
		}
		authUser.Students = append(authUser.Students, link)
	}
	return nil
}

// sessionFromToken decodes a signed token and looks up its session.
// Malformed tokens and missing sessions both resolve to nil.
func (s *AuthService) sessionFromToken(ctx context.Context, token string) *models.AuthSession {
	claims := &models.SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.SessionID == "" {
		return nil
	}
	session, err := s.sessions.FindByID(ctx, claims.SessionID)
	if err != nil {
		if err != sql.ErrNoRows {
			s.logger.Error("failed to load session", zap.Error(err))
		}
		return nil
	}
	return session
}

func (s *AuthService) signSession(sessionID string) (string, error) {
	claims := models.SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now().UTC()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
