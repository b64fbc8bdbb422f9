package auth

import (
	"context"

	"github.com/google/uuid"
)

// TenantContext holds the authenticated contact and the tenant
// organization every query is scoped to
type TenantContext struct {
	ContactID      uuid.UUID
	OrganizationID uuid.UUID
	Email          string
}

type contextKey string

const tenantContextKey contextKey = "tenantContext"

// WithTenantContext adds tenant context to the context
func WithTenantContext(ctx context.Context, tenant *TenantContext) context.Context {
	return context.WithValue(ctx, tenantContextKey, tenant)
}

// FromContext extracts tenant context from the context
func FromContext(ctx context.Context) (*TenantContext, bool) {
	tenant, ok := ctx.Value(tenantContextKey).(*TenantContext)
	return tenant, ok
}

// MustFromContext extracts tenant context or panics
func MustFromContext(ctx context.Context) *TenantContext {
	tenant, ok := FromContext(ctx)
	if !ok {
		panic("tenant context not found in context")
	}
	return tenant
}
