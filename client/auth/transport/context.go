package transport

import "context"

type (
	contextKey string
)

const (
	// ContextAuthTokenKey carries a caller supplied access token.
	ContextAuthTokenKey contextKey = "authToken"
	// ContextSkipChallengeKey disables challenge recovery for a request.
	ContextSkipChallengeKey contextKey = "skipChallenge"
)

// WithAuthToken makes requests bound to the returned context use token instead
// of asking the token provider.
func WithAuthToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ContextAuthTokenKey, token)
}

// WithoutChallenge makes 401 responses pass through unchanged.
func WithoutChallenge(ctx context.Context) context.Context {
	return context.WithValue(ctx, ContextSkipChallengeKey, true)
}

func getAuthToken(ctx context.Context) string {
	if v := ctx.Value(ContextAuthTokenKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func skipChallenge(ctx context.Context) bool {
	skip, _ := ctx.Value(ContextSkipChallengeKey).(bool)
	return skip
}
