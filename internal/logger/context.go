package logger

import (
	"context"
	"log/slog"
)

type fieldsKey struct{}

// ctxFields — поля корреляции, которые попадают в каждую запись из ctx
type ctxFields struct {
	requestID     string
	userID        string
	correlationID string
}

func fieldsFrom(ctx context.Context) ctxFields {
	if ctx == nil {
		return ctxFields{}
	}
	f, _ := ctx.Value(fieldsKey{}).(ctxFields)
	return f
}

func withFields(ctx context.Context, update func(*ctxFields)) context.Context {
	f := fieldsFrom(ctx)
	update(&f)
	return context.WithValue(ctx, fieldsKey{}, f)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withFields(ctx, func(f *ctxFields) { f.requestID = requestID })
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return withFields(ctx, func(f *ctxFields) { f.userID = userID })
}

// WithCorrelationID — id внешнего события из брокера
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return withFields(ctx, func(f *ctxFields) { f.correlationID = correlationID })
}

func GetRequestID(ctx context.Context) string {
	return fieldsFrom(ctx).requestID
}

func (f ctxFields) attrs() []any {
	var out []any
	if f.requestID != "" {
		out = append(out, "request_id", f.requestID)
	}
	if f.userID != "" {
		out = append(out, "user_id", f.userID)
	}
	if f.correlationID != "" {
		out = append(out, "correlation_id", f.correlationID)
	}
	return out
}

// FromContext — глобальный логгер с полями корреляции из ctx
func FromContext(ctx context.Context) *slog.Logger {
	log := GetLogger()
	if attrs := fieldsFrom(ctx).attrs(); len(attrs) > 0 {
		log = log.With(attrs...)
	}
	return log
}

func CtxDebug(ctx context.Context, msg string, args ...any) { FromContext(ctx).Debug(msg, args...) }
func CtxInfo(ctx context.Context, msg string, args ...any)  { FromContext(ctx).Info(msg, args...) }
func CtxWarn(ctx context.Context, msg string, args ...any)  { FromContext(ctx).Warn(msg, args...) }
func CtxError(ctx context.Context, msg string, args ...any) { FromContext(ctx).Error(msg, args...) }

// CtxWithError — Error с полем error первым
func CtxWithError(ctx context.Context, msg string, err error, args ...any) {
	FromContext(ctx).Error(msg, append([]any{"error", err.Error()}, args...)...)
}
