package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type task struct {
	ID          string `json:"id"`
	Owner       string `json:"owner,omitempty"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// authorize authenticates the bearer token and enforces the authentication
// context for guarded methods. It writes the 401 and returns nil on failure.
func (m *AuthorizationService) authorize(w http.ResponseWriter, r *http.Request) jwt.MapClaims {
	m.mu.Lock()
	m.requests[r.Method]++
	m.mu.Unlock()

	authHeader := r.Header.Get("Authorization")
	tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || tokenString == "" {
		w.Header().Set("WWW-Authenticate", `Bearer realm="tasks", error="invalid_request"`)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil
	}
	claims, err := m.parseJWT(tokenString, "access_token")
	if err != nil {
		w.Header().Set("WWW-Authenticate", `Bearer realm="tasks", error="invalid_token"`)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil
	}
	if m.RequiredACR != "" && slices.Contains(m.ChallengeMethods, r.Method) && !hasACR(claims, m.RequiredACR) {
		w.Header().Set("WWW-Authenticate", fmt.Sprintf(
			`Bearer realm="", authorization_uri="%s/authorize", client_id="%s", error="insufficient_claims", claims="%s"`,
			m.Issuer, m.ClientID, ClaimsChallenge(m.RequiredACR)))
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil
	}
	return claims
}

func hasACR(claims jwt.MapClaims, acr string) bool {
	values, _ := claims["acrs"].([]interface{})
	for _, value := range values {
		if value == acr {
			return true
		}
	}
	return false
}

// AddTask seeds the resource with a task and returns its id.
func (m *AuthorizationService) AddTask(description string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	item := &task{ID: uuid.NewString(), Owner: m.Subject, Description: description}
	m.tasks[item.ID] = item
	m.order = append(m.order, item.ID)
	return item.ID
}

// Task returns the stored description of a task.
func (m *AuthorizationService) Task(id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.tasks[id]
	if !ok {
		return "", false
	}
	return item.Description, true
}

func (m *AuthorizationService) listTasks(w http.ResponseWriter, r *http.Request) {
	if m.authorize(w, r) == nil {
		return
	}
	m.mu.Lock()
	result := make([]*task, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.tasks[id])
	}
	m.mu.Unlock()
	writeJSON(w, http.StatusOK, result)
}

func (m *AuthorizationService) getTask(w http.ResponseWriter, r *http.Request) {
	if m.authorize(w, r) == nil {
		return
	}
	m.mu.Lock()
	item, ok := m.tasks[r.PathValue("id")]
	m.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (m *AuthorizationService) createTask(w http.ResponseWriter, r *http.Request) {
	claims := m.authorize(w, r)
	if claims == nil {
		return
	}
	item := &task{}
	if err := json.NewDecoder(r.Body).Decode(item); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	item.ID = uuid.NewString()
	item.Owner, _ = claims["sub"].(string)
	m.mu.Lock()
	m.tasks[item.ID] = item
	m.order = append(m.order, item.ID)
	m.mu.Unlock()
	writeJSON(w, http.StatusCreated, item)
}

func (m *AuthorizationService) updateTask(w http.ResponseWriter, r *http.Request) {
	if m.authorize(w, r) == nil {
		return
	}
	id := r.PathValue("id")
	update := &task{}
	if err := json.NewDecoder(r.Body).Decode(update); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	m.mu.Lock()
	item, ok := m.tasks[id]
	if ok {
		item.Description = update.Description
		item.Completed = update.Completed
	}
	m.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (m *AuthorizationService) deleteTask(w http.ResponseWriter, r *http.Request) {
	if m.authorize(w, r) == nil {
		return
	}
	id := r.PathValue("id")
	m.mu.Lock()
	item, ok := m.tasks[id]
	if ok {
		delete(m.tasks, id)
		m.order = slices.DeleteFunc(m.order, func(candidate string) bool { return candidate == id })
	}
	m.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
