package credentials

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

// tokenExpiry extracts the expiry timestamp from the exp claim of an identity
// token. The signature is not verified, the token was just minted by Google
// and is only inspected to know when to refresh it.
func tokenExpiry(raw string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(raw, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse identity token: %w", err)
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}, errors.New("identity token has no exp claim")
	}
	return time.Unix(int64(exp), 0), nil
}
