package mock

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

// defaultTokenHandler handles /token requests
func (m *AuthorizationService) defaultTokenHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	clientID, clientSecret, ok := r.BasicAuth()
	if !ok {
		clientID = r.FormValue("client_id")
		clientSecret = r.FormValue("client_secret")
	}
	if clientID != m.ClientID || clientSecret != m.ClientSecret {
		writeTokenError(w, http.StatusUnauthorized, "invalid_client")
		return
	}

	grantType := r.FormValue("grant_type")
	claims := r.FormValue("claims")
	switch grantType {
	case "authorization_code":
		m.mu.Lock()
		codeClaims, ok := m.codes[r.FormValue("code")]
		delete(m.codes, r.FormValue("code"))
		m.mu.Unlock()
		if !ok {
			writeTokenError(w, http.StatusBadRequest, "invalid_grant")
			return
		}
		if claims == "" {
			claims = codeClaims
		}
	case "refresh_token":
		if r.PostForm.Has("code") || r.PostForm.Has("redirect_uri") {
			writeTokenError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if _, err := m.parseJWT(r.FormValue("refresh_token"), "refresh_token"); err != nil {
			writeTokenError(w, http.StatusBadRequest, "invalid_grant")
			return
		}
	default:
		writeTokenError(w, http.StatusBadRequest, "unsupported_grant_type")
		return
	}
	m.mu.Lock()
	m.grants = append(m.grants, Grant{GrantType: grantType, Claims: claims, Scope: r.FormValue("scope"), Params: cloneValues(r.PostForm)})
	m.mu.Unlock()

	expiresIn := 3600
	extra := map[string]interface{}{}
	if acrs := requestedACRs(claims); len(acrs) > 0 {
		extra["acrs"] = acrs
	}
	accessToken, err := m.createJWT(clientID, "access_token", time.Duration(expiresIn)*time.Second, extra)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	refreshToken, err := m.createJWT(clientID, "refresh_token", 24*time.Hour, nil)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	idToken, err := m.createJWT(clientID, "id_token", time.Duration(expiresIn)*time.Second, map[string]interface{}{
		"preferred_username": m.Subject + "@example.com",
		"name":               "Test Subject",
		"tid":                "mock-tenant",
	})
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	response := map[string]interface{}{
		"access_token":  accessToken,
		"token_type":    "Bearer",
		"refresh_token": refreshToken,
		"expires_in":    expiresIn,
		"id_token":      idToken,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func writeTokenError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

func cloneValues(values url.Values) url.Values {
	ret := make(url.Values, len(values))
	for k, v := range values {
		ret[k] = append([]string{}, v...)
	}
	return ret
}
