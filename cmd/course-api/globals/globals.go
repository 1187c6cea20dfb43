package globals

import (
	"context"

	"course-api/lib/telemetry"
	"course-api/services/courseapi"
)

type key struct{}

type Value struct {
	Service   courseapi.Service
	Telemetry telemetry.Telemetry
	Close     func()
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key{}).(*Value)
}
