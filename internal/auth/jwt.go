package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ProfileTokenTTL is how long a browser keeps the same profile (and with it
// its order history) without a visit.
const ProfileTokenTTL = 365 * 24 * time.Hour

// ProfileClaims identify a browser profile. They are carried in the profile
// cookie and signed with the session secret.
type ProfileClaims struct {
	ProfileID uuid.UUID `json:"profile_id"`
	jwt.RegisteredClaims
}

func GenerateProfileToken(secret string, profileID uuid.UUID) (string, error) {
	now := time.Now()
	claims := ProfileClaims{
		ProfileID: profileID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ProfileTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateProfileToken(secret, tokenStr string) (*ProfileClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &ProfileClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*ProfileClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.ProfileID == uuid.Nil {
		return nil, fmt.Errorf("token has no profile")
	}
	return claims, nil
}

// identityClaims is the part of an identity provider ID token shown in the UI.
type identityClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// EmailFromIDToken reads the email claim without verifying the signature.
// The ordering API verifies the token; this client only displays it.
func EmailFromIDToken(idToken string) string {
	var claims identityClaims
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, &claims); err != nil {
		return ""
	}
	return claims.Email
}
