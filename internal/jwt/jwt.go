package jwt

import (
	"errors"
	"time"

	. "room-access-control/internal/config"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrNonValidToken    = errors.New("token did not pass validation")
	ErrInvalidClaimType = errors.New("invalid claim type")
)

var tokenSignatureAlg = gojwt.SigningMethodHS256

// Claim for authenticated sessions. Carries the verified identity that the
// booking core consumes: subject, email and role.
type AuthClaim struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	gojwt.RegisteredClaims
}

func NewAuthClaim(userID, email, role string) AuthClaim {
	return AuthClaim{
		UserID:           userID,
		Email:            email,
		Role:             role,
		RegisteredClaims: newRegisteredClaims(time.Duration(Cfg.TokenTTL) * time.Hour),
	}
}

func DecodeAuthJWT(tokenString string) (*AuthClaim, error) {
	return decodeJWT(tokenString, &AuthClaim{})
}

func newRegisteredClaims(ttl time.Duration) gojwt.RegisteredClaims {
	now := time.Now().UTC()
	return gojwt.RegisteredClaims{
		IssuedAt:  gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
	}
}

// Generic JWT token generation function
func GenerateJWT(claims gojwt.Claims) (string, error) {
	token := gojwt.NewWithClaims(tokenSignatureAlg, claims)
	JWTSecret := []byte(Cfg.Secret)
	return token.SignedString(JWTSecret)
}

func decodeJWT[T gojwt.Claims](tokenString string, claimsType T) (T, error) {
	var zero T

	parsedToken, err := gojwt.ParseWithClaims(tokenString, claimsType, func(token *gojwt.Token) (interface{}, error) {
		JWTSecret := []byte(Cfg.Secret)
		return JWTSecret, nil
	}, gojwt.WithValidMethods([]string{tokenSignatureAlg.Alg()}))

	if err != nil {
		return zero, err
	} else if parsedToken == nil || !parsedToken.Valid {
		return zero, ErrNonValidToken
	} else if claims, ok := parsedToken.Claims.(T); ok {
		return claims, nil
	}

	return zero, ErrInvalidClaimType
}
