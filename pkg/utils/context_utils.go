package utils

import (
	"context"

	"maintenance-system/pkg/contextkeys"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
)

// WithActor кладёт участника в контекст запроса. Вызывается middleware аутентификации.
func WithActor(ctx context.Context, actor types.Actor) context.Context {
	return context.WithValue(ctx, contextkeys.ActorKey, actor)
}

func GetActorFromCtx(ctx context.Context) (types.Actor, error) {
	actor, ok := ctx.Value(contextkeys.ActorKey).(types.Actor)
	if !ok || !actor.Role.IsValid() {
		return types.Actor{}, apperrors.ErrActorNotFoundInContext
	}
	return actor, nil
}
