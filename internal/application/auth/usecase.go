package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/tarifarios-api/internal/application/access"
	"github.com/jhoicas/tarifarios-api/internal/application/dto"
	"github.com/jhoicas/tarifarios-api/internal/domain"
	"github.com/jhoicas/tarifarios-api/internal/domain/repository"
	"github.com/jhoicas/tarifarios-api/pkg/jwt"
)

// Códigos de error de autenticación.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountInactive    = "ACCOUNT_INACTIVE"
	CodeTooManyAttempts    = "TOO_MANY_ATTEMPTS"
)

// JWTConfig configuración para generación de tokens. La vigencia es fija (jwt.SessionTTL).
type JWTConfig struct {
	Secret string
	Issuer string
}

// LoginLimiter limita intentos de login por clave (email + IP).
// Allow cuenta el intento y devuelve false con el tiempo restante de la ventana si se superó el máximo.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
	Reset(ctx context.Context, key string) error
}

// CredentialIssuer emite tokens de sesión a partir del estado vivo del usuario.
type CredentialIssuer struct {
	users   repository.UserRepository
	gate    *access.Gate
	limiter LoginLimiter
	jwtCfg  JWTConfig
}

// NewCredentialIssuer construye el emisor. Falla si el secreto de firma está vacío.
// limiter puede ser nil (sin límite de intentos).
func NewCredentialIssuer(users repository.UserRepository, gate *access.Gate, limiter LoginLimiter, jwtCfg JWTConfig) (*CredentialIssuer, error) {
	if strings.TrimSpace(jwtCfg.Secret) == "" {
		return nil, jwt.ErrMissingSecret
	}
	return &CredentialIssuer{users: users, gate: gate, limiter: limiter, jwtCfg: jwtCfg}, nil
}

// IssueToken resuelve rol, permisos y tarifarios alcanzables del usuario y firma el token.
func (uc *CredentialIssuer) IssueToken(ctx context.Context, userID int64) (*dto.LoginResponse, error) {
	session, err := uc.Session(ctx, userID)
	if err != nil {
		return nil, err
	}
	token, exp, err := jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, jwt.Session{
		UserID:      session.UserID,
		Role:        session.Role,
		Permissions: session.Permissions,
		Tarifarios:  session.Tarifarios,
	})
	if err != nil {
		return nil, domain.Internal("firmar token", err)
	}
	return &dto.LoginResponse{Token: token, ExpiresAt: exp, Session: *session}, nil
}

// Session estado de sesión vivo del usuario (lo que iría en un token emitido ahora).
func (uc *CredentialIssuer) Session(ctx context.Context, userID int64) (*dto.SessionResponse, error) {
	subject, err := uc.gate.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	tarifarios, err := uc.gate.ReachableTarifarios(ctx, subject)
	if err != nil {
		return nil, err
	}
	return &dto.SessionResponse{
		UserID:      subject.UserID,
		Role:        subject.RoleName,
		Permissions: subject.PermissionNames(),
		Tarifarios:  tarifarios,
	}, nil
}

// Login verifica email/password con bcrypt y emite el token.
func (uc *CredentialIssuer) Login(ctx context.Context, in dto.LoginRequest, clientIP string) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, domain.Validation("INVALID_INPUT", "email y password son requeridos")
	}
	key := fmt.Sprintf("login:%s:%s", email, clientIP)
	if uc.limiter != nil {
		ok, retryAfter, err := uc.limiter.Allow(ctx, key)
		if err != nil {
			return nil, domain.Internal("limitar intentos de login", err)
		}
		if !ok {
			return nil, domain.RateLimited(CodeTooManyAttempts, "demasiados intentos de login").
				WithDetails(map[string]any{"retry_after_seconds": int(retryAfter.Round(time.Second).Seconds())})
		}
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, domain.Internal("cargar usuario", err)
	}
	if user == nil {
		return nil, invalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, invalidCredentials()
		}
		return nil, domain.Internal("verificar password", err)
	}
	if !user.Active {
		return nil, domain.Authorization(CodeAccountInactive, "cuenta inactiva")
	}

	if uc.limiter != nil {
		// Un login exitoso limpia el contador.
		_ = uc.limiter.Reset(ctx, key)
	}
	return uc.IssueToken(ctx, user.ID)
}

func invalidCredentials() error {
	return domain.Authentication(CodeInvalidCredentials, "credenciales inválidas")
}

// HashPassword hash bcrypt con el costo por defecto.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", domain.Validation("INVALID_INPUT", "password vacío")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
