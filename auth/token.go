package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pairchat/domain"
)

// jwtKey is the secret shared with the identity provider.
// In a production environment, this should be loaded from an environment variable or a secret manager.
var jwtKey = []byte("pairchat_identity_shared_secret_2026")

// IdentityClaims is what the provider vouches for on sign-in. The
// subject carries the opaque, stable account id.
type IdentityClaims struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	jwt.RegisteredClaims
}

// MintIdentityToken signs an identity token for an account. The real
// provider does this on sign-in; this helper stands in for it in
// development tooling and tests.
func MintIdentityToken(account domain.Account, ttl time.Duration) (string, error) {
	claims := &IdentityClaims{
		DisplayName: account.DisplayName,
		AvatarURL:   account.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "pairchat-identity",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

// ValidateIdentityToken parses and validates a provider token and
// adapts it into the domain Account this core works with.
func ValidateIdentityToken(tokenString string) (domain.Account, error) {
	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	})
	if err != nil {
		return domain.Account{}, err
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid {
		return domain.Account{}, jwt.ErrSignatureInvalid
	}

	account := domain.Account{
		ID:          claims.Subject,
		DisplayName: claims.DisplayName,
		AvatarURL:   claims.AvatarURL,
	}
	if err = ValidateAccount(account); err != nil {
		return domain.Account{}, err
	}
	return account, nil
}
