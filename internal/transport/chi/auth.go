package chi

import (
	"errors"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errNotBearer            = errors.New("authorization header must use Bearer scheme")
)

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", errMissingAuthorization
	}
	if !strings.HasPrefix(auth, bearerPrefix) {
		return "", errNotBearer
	}
	return strings.TrimSpace(auth[len(bearerPrefix):]), nil
}
