package mock

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// createJWT creates a signed JWT token for clientID with the given type, expiry and extra claims
func (m *AuthorizationService) createJWT(clientID, tokenType string, expiry time.Duration, extra map[string]interface{}) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": m.Issuer,
		"sub": m.Subject,
		"aud": clientID,
		"exp": now.Add(expiry).Unix(),
		"iat": now.Unix(),
		"typ": tokenType,
	}
	for k, v := range extra {
		claims[k] = v
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "mock"
	return token.SignedString(m.PrivateKey)
}

// parseJWT verifies a token issued by this service.
func (m *AuthorizationService) parseJWT(tokenString, tokenType string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return &m.PrivateKey.PublicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	if claims["typ"] != tokenType {
		return nil, fmt.Errorf("expected %v, got %v", tokenType, claims["typ"])
	}
	return claims, nil
}

type claimValue struct {
	Essential bool     `json:"essential,omitempty"`
	Value     string   `json:"value,omitempty"`
	Values    []string `json:"values,omitempty"`
}

type claimsRequest struct {
	AccessToken map[string]claimValue `json:"access_token"`
}

// ClaimsRequest returns the JSON claims request demanding authentication context acr.
func ClaimsRequest(acr string) string {
	data, _ := json.Marshal(claimsRequest{AccessToken: map[string]claimValue{"acrs": {Essential: true, Value: acr}}})
	return string(data)
}

// ClaimsChallenge returns the base64 claims challenge demanding authentication context acr.
func ClaimsChallenge(acr string) string {
	return base64.StdEncoding.EncodeToString([]byte(ClaimsRequest(acr)))
}

// requestedACRs extracts the authentication contexts of a JSON claims request.
func requestedACRs(claims string) []string {
	if claims == "" {
		return nil
	}
	request := claimsRequest{}
	if err := json.Unmarshal([]byte(claims), &request); err != nil {
		return nil
	}
	acrs, ok := request.AccessToken["acrs"]
	if !ok {
		return nil
	}
	var result []string
	if acrs.Value != "" {
		result = append(result, acrs.Value)
	}
	return append(result, acrs.Values...)
}
