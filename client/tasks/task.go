package tasks

import "fmt"

// Task is a to-do item.
type Task struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Owner       string `json:"owner,omitempty" yaml:"owner,omitempty"`
	Description string `json:"description" yaml:"description"`
	Completed   bool   `json:"completed" yaml:"completed"`
}

// StatusError is a non 2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}
