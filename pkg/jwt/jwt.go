package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL vigencia fija de un token de sesión. No hay revocación en servidor:
// la expiración es el único mecanismo de terminación.
const SessionTTL = 8 * time.Hour

var (
	ErrMissingSecret = errors.New("jwt: secret vacío")
	ErrTokenExpired  = errors.New("jwt: token expirado")
	ErrTokenInvalid  = errors.New("jwt: token inválido")
)

// Claims incluye los claims estándar JWT más la sesión resuelta al emitir.
// Permissions y Tarifarios son una foto del momento de emisión; la autorización
// por petición se vuelve a resolver contra el store.
type Claims struct {
	jwt.RegisteredClaims
	UserID      int64    `json:"id_usuario"`
	Role        string   `json:"rol"`
	Permissions []string `json:"permisos"`
	Tarifarios  []int64  `json:"tarifarios"`
}

// Session datos de sesión a firmar.
type Session struct {
	UserID      int64
	Role        string
	Permissions []string
	Tarifarios  []int64
}

// Generate firma un token HS256 con vigencia SessionTTL.
func Generate(secret, issuer string, s Session) (string, time.Time, error) {
	return GenerateWithTTL(secret, issuer, s, SessionTTL)
}

// GenerateWithTTL igual que Generate con vigencia explícita (herramientas y tests).
func GenerateWithTTL(secret, issuer string, s Session, ttl time.Duration) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, ErrMissingSecret
	}
	now := time.Now()
	exp := now.Add(ttl)
	perms := s.Permissions
	if perms == nil {
		perms = []string{}
	}
	tarifarios := s.Tarifarios
	if tarifarios == nil {
		tarifarios = []int64{}
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(s.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID:      s.UserID,
		Role:        s.Role,
		Permissions: perms,
		Tarifarios:  tarifarios,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("firmar token: %w", err)
	}
	return signed, exp, nil
}

// Parse valida firma y expiración y devuelve los claims.
// Distingue ErrTokenExpired de ErrTokenInvalid (firma, formato, algoritmo).
func Parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: id_usuario ausente", ErrTokenInvalid)
	}
	return claims, nil
}
