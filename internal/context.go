package internal

import (
	"context"
)

type ctxKey string

const ContextUserKey ctxKey = "userPhone"

func UserPhoneFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if phone, ok := ctx.Value(ContextUserKey).(string); ok {
		return phone
	}
	return ""
}

func ContextWithUserPhone(ctx context.Context, phone string) context.Context {
	return context.WithValue(ctx, ContextUserKey, phone)
}
