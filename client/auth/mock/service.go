package mock

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"net/http"
	"net/url"
	"sync"
)

// AuthorizationService is a test server that simulates an OAuth2 authorization
// server together with a protected tasks resource.
type AuthorizationService struct {
	PrivateKey   *rsa.PrivateKey
	Issuer       string
	ClientID     string
	ClientSecret string
	Subject      string
	// RequiredACR, when set, is the authentication context write requests must carry.
	RequiredACR string
	// ChallengeMethods lists methods guarded by RequiredACR; defaults to writes.
	ChallengeMethods []string

	TokenHandler     func(w http.ResponseWriter, r *http.Request)
	AuthorizeHandler func(w http.ResponseWriter, r *http.Request)
	// JwksHandler handles requests for the JSON Web Key Set
	JwksHandler func(w http.ResponseWriter, r *http.Request)

	mu       sync.Mutex
	codes    map[string]string
	tasks    map[string]*task
	order    []string
	requests map[string]int
	grants   []Grant
}

// Grant records a token endpoint request.
type Grant struct {
	GrantType string
	Claims    string
	Scope     string
	// Params holds the posted form.
	Params url.Values
}

type Option func(*AuthorizationService)

// WithRequiredACR guards write requests with an authentication context.
func WithRequiredACR(acr string) Option {
	return func(s *AuthorizationService) {
		s.RequiredACR = acr
	}
}

// WithChallengeMethods overrides the methods guarded by the required context.
func WithChallengeMethods(methods ...string) Option {
	return func(s *AuthorizationService) {
		s.ChallengeMethods = methods
	}
}

// NewAuthorizationService creates a new mock OAuth2 authorization server
func NewAuthorizationService(opts ...Option) (*AuthorizationService, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %v", err)
	}
	service := &AuthorizationService{
		PrivateKey:       privateKey,
		ClientID:         ClientID,
		ClientSecret:     ClientSecret,
		Subject:          "test_subject",
		ChallengeMethods: []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		codes:            map[string]string{},
		tasks:            map[string]*task{},
		requests:         map[string]int{},
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Requests returns how many tasks requests were received for method.
func (m *AuthorizationService) Requests(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[method]
}

// Grants returns the token endpoint requests received so far.
func (m *AuthorizationService) Grants() []Grant {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Grant{}, m.grants...)
}

// Register registers HTTP handlers for all mock endpoints onto the given ServeMux.
func (m *AuthorizationService) Register(mux *http.ServeMux) {
	mux.HandleFunc("/authorize", m.handle(m.AuthorizeHandler, m.defaultAuthorizeHandler))
	mux.HandleFunc("/token", m.handle(m.TokenHandler, m.defaultTokenHandler))
	mux.HandleFunc("/jwks", m.handle(m.JwksHandler, m.defaultJwksHandler))
	mux.HandleFunc("GET /api/tasks", m.listTasks)
	mux.HandleFunc("POST /api/tasks", m.createTask)
	mux.HandleFunc("GET /api/tasks/{id}", m.getTask)
	mux.HandleFunc("PUT /api/tasks/{id}", m.updateTask)
	mux.HandleFunc("PATCH /api/tasks/{id}", m.updateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", m.deleteTask)
}

// Handler returns an http.Handler for all mock endpoints, suitable for any HTTP server.
func (m *AuthorizationService) Handler() http.Handler {
	mux := http.NewServeMux()
	m.Register(mux)
	return mux
}

func (m *AuthorizationService) handle(custom, fallback http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if custom != nil {
			custom(w, r)
			return
		}
		fallback(w, r)
	}
}
