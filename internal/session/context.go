package session

import (
	"context"
	"net/http"

	"superadmin/pkg/requestcontext"
)

type snapshotKey struct{}

// WithSnapshot stores the request's session snapshot.
func WithSnapshot(ctx context.Context, s Snapshot) context.Context {
	return context.WithValue(ctx, snapshotKey{}, s)
}

// FromContext returns the snapshot set by Provider, or an empty one.
func FromContext(ctx context.Context) Snapshot {
	s, _ := ctx.Value(snapshotKey{}).(Snapshot)
	return s
}

// Provider loads the session once per request and injects the snapshot, so
// handlers never read the cookie themselves.
func Provider(b *Bridge) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := b.Load(w, r)
			ctx := WithSnapshot(r.Context(), snap)
			if snap.Authenticated() {
				ctx = requestcontext.WithOperator(ctx, requestcontext.Operator{ID: snap.User.ID, Email: snap.User.Email})
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
