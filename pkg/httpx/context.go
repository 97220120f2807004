package httpx

import "context"

type ctxKey string

const (
	CtxKeySubjectID ctxKey = "subject_id"
	CtxKeySessionID ctxKey = "session_id"
	CtxKeyScopes    ctxKey = "scopes"
	CtxKeyAPIKey    ctxKey = "api_key" // full metadata record for key-authenticated callers
)

// ContextWithAuth stashes the authenticated caller's identity fields for
// downstream handlers.
func ContextWithAuth(ctx context.Context, subjectID, sessionID string, scopes []string) context.Context {
	ctx = context.WithValue(ctx, CtxKeySubjectID, subjectID)
	ctx = context.WithValue(ctx, CtxKeySessionID, sessionID)
	ctx = context.WithValue(ctx, CtxKeyScopes, scopes)
	return ctx
}

// SubjectIDFromContext returns the authenticated subject id, if any.
func SubjectIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySubjectID).(string); ok {
		return v
	}
	return ""
}

// SessionIDFromContext returns the authenticated session id, if any.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySessionID).(string); ok {
		return v
	}
	return ""
}

func scopesFromCtx(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyScopes).([]string); ok {
		return v
	}
	return nil
}
