package mock

import (
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
)

type jsonWebKey struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// defaultJwksHandler handles /jwks requests by exposing the server's public key
func (m *AuthorizationService) defaultJwksHandler(w http.ResponseWriter, _ *http.Request) {
	pubKey := m.PrivateKey.PublicKey
	nB64 := base64.RawURLEncoding.EncodeToString(pubKey.N.Bytes())
	eB64 := base64.RawURLEncoding.EncodeToString(new(big.Int).SetInt64(int64(pubKey.E)).Bytes())
	jwks := map[string][]jsonWebKey{"keys": {{Kty: "RSA", Use: "sig", Alg: "RS256", Kid: "mock", N: nB64, E: eB64}}}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(jwks)
}
