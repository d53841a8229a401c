package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// AccountFromIDToken derives the account from id_token claims. The token came
// straight from the token endpoint over TLS, so its signature is not verified here.
func AccountFromIDToken(idToken string) (*Account, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, fmt.Errorf("failed to parse id token: %w", err)
	}
	subject := claimString(claims, "oid")
	if subject == "" {
		subject = claimString(claims, "sub")
	}
	if subject == "" {
		return nil, fmt.Errorf("id token has no subject")
	}
	account := &Account{
		HomeAccountID: subject,
		Username:      claimString(claims, "preferred_username"),
		Name:          claimString(claims, "name"),
		Issuer:        claimString(claims, "iss"),
		TenantID:      claimString(claims, "tid"),
	}
	if account.Username == "" {
		account.Username = claimString(claims, "email")
	}
	if account.TenantID != "" {
		account.HomeAccountID += "." + account.TenantID
	}
	return account, nil
}

func claimString(claims jwt.MapClaims, name string) string {
	if value, ok := claims[name].(string); ok {
		return value
	}
	return ""
}
