package auth

import (
	"context"
)

type ctxKey string

const claimsKey ctxKey = "sessionClaims"

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func FromContext(ctx context.Context) Claims {
	if v, ok := ctx.Value(claimsKey).(Claims); ok {
		return v
	}
	return Claims{}
}

func Subject(ctx context.Context) string {
	return FromContext(ctx).Subject
}
