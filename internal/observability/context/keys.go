package context

import "context"

type contextKey string

const (
	runIDKey   contextKey = "observability_run_id"
	commandKey contextKey = "observability_command"
	actorKey   contextKey = "observability_actor"
)

func WithRunID(ctx context.Context, runID string) context.Context {
	if ctx == nil || runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, runID)
}

func RunIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(runIDKey).(string)
	return value
}

func WithCommand(ctx context.Context, command string) context.Context {
	if ctx == nil || command == "" {
		return ctx
	}
	return context.WithValue(ctx, commandKey, command)
}

func CommandFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(commandKey).(string)
	return value
}

func WithActor(ctx context.Context, actor string) context.Context {
	if ctx == nil || actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(actorKey).(string)
	return value
}
