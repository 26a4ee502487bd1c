package api

import (
	"context"

	"carwash/internal/staff"
)

type ctxKey string

const ctxKeyStaff ctxKey = "staff"

func WithStaff(ctx context.Context, m *staff.Member) context.Context {
	return context.WithValue(ctx, ctxKeyStaff, m)
}

func StaffFromContext(ctx context.Context) *staff.Member {
	v := ctx.Value(ctxKeyStaff)
	if v == nil {
		return nil
	}
	m, _ := v.(*staff.Member)
	return m
}
