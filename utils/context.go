package utils

import (
	"context"

	"github.com/google/uuid"
)

type rqIDKey struct{}

func GetRequestIDFromCtx(ctx context.Context) string {
	rqID, ok := ctx.Value(rqIDKey{}).(string)
	if !ok {
		return ""
	}
	return rqID
}

func CtxWithRqID(ctx context.Context, rqID string) context.Context {
	if rqID == "" {
		rqID = uuid.NewString()
	}
	return context.WithValue(ctx, rqIDKey{}, rqID)
}
