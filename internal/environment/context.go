package environment

import "context"

type ctxKey int

const (
	envKey ctxKey = iota
	versionKey
	buildTimeKey
)

// CtxWithEnv returns a copy of ctx carrying env.
func CtxWithEnv(ctx context.Context, env Env) context.Context {
	return context.WithValue(ctx, envKey, env)
}

// EnvFromCtx returns Env stored in ctx, Local when absent.
func EnvFromCtx(ctx context.Context) Env {
	if env, ok := ctx.Value(envKey).(Env); ok {
		return env
	}
	return Local
}

// CtxWithVersion returns a copy of ctx carrying application version.
func CtxWithVersion(ctx context.Context, version string) context.Context {
	return context.WithValue(ctx, versionKey, version)
}

// VersionFromCtx returns application version stored in ctx.
func VersionFromCtx(ctx context.Context) string {
	v, _ := ctx.Value(versionKey).(string)
	return v
}

// CtxWithBuildTime returns a copy of ctx carrying build time.
func CtxWithBuildTime(ctx context.Context, buildTime string) context.Context {
	return context.WithValue(ctx, buildTimeKey, buildTime)
}

// BuildTimeFromCtx returns build time stored in ctx.
func BuildTimeFromCtx(ctx context.Context) string {
	v, _ := ctx.Value(buildTimeKey).(string)
	return v
}
