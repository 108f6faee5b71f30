package logger

import (
	"context"
	"log/slog"
	"sort"
)

// Fields 注入到上下文中的日志字段
type Fields map[string]interface{}

type fieldsKey struct{}

// InjectFields 将字段注入上下文，之后所有 *Context 日志方法都会自动携带
func InjectFields(ctx context.Context, fields Fields) context.Context {
	if len(fields) == 0 {
		return ctx
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// 同名字段以后注入的为准
	existing, _ := ctx.Value(fieldsKey{}).([]slog.Attr)
	attrs := make([]slog.Attr, 0, len(existing)+len(keys))
	for _, a := range existing {
		if _, replaced := fields[a.Key]; !replaced {
			attrs = append(attrs, a)
		}
	}
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	return context.WithValue(ctx, fieldsKey{}, attrs)
}

// FieldsFromContext 读取上下文中注入的字段
func FieldsFromContext(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(fieldsKey{}).([]slog.Attr)
	return attrs
}

// contextHandler 在输出前追加上下文字段
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := FieldsFromContext(ctx); len(attrs) > 0 {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{Handler: h.Handler.WithGroup(name)}
}
