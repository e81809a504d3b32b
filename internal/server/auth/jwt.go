// Package auth issues and verifies the bearer tokens that carry a user's
// identity between requests.
package auth

import (
	"github.com/dmitrijs2005/messagely/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the single identity claim embedded in a bearer token.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// IssueToken signs a token binding the username claim with the process-wide
// secret. Tokens carry no expiry; revocation and lifetimes are out of scope.
func IssueToken(username string, secretKey []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: username,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// UsernameFromToken validates the signature and structure of a token and
// returns the embedded username. Only HS256 is accepted: a token signed with
// any other method, including "none", fails verification regardless of what
// its header announces.
func UsernameFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, shared.ErrorInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		return "", shared.ErrorInvalidToken
	}

	if !token.Valid || claims.Username == "" {
		return "", shared.ErrorInvalidToken
	}

	return claims.Username, nil
}
