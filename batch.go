// ABOUTME: Sequential per-tenant fan-out with fault isolation.
// ABOUTME: A failing tenant becomes a logged warning; the remaining tenants still run.

package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// partnerAPI is the slice of Session the report builders depend on.
type partnerAPI interface {
	Tenants(ctx context.Context) ([]Tenant, error)
	Endpoints(ctx context.Context, t Tenant) ([]Endpoint, error)
	HealthCheck(ctx context.Context, t Tenant) (*HealthCheck, error)
}

var _ partnerAPI = (*Session)(nil)

// TenantWarning records a tenant whose data was left out of a report.
type TenantWarning struct {
	Tenant Tenant
	Op     string
	Err    error
}

func (w TenantWarning) Error() string {
	return fmt.Sprintf("failed to get %s for tenant %s: %v", w.Op, w.Tenant.Name, w.Err)
}

func (w TenantWarning) Unwrap() error {
	return w.Err
}

type batch[T any] struct {
	Rows     []T
	Warnings []TenantWarning
}

// progressFunc is told which tenant is about to be queried. n counts from 1.
type progressFunc func(n, total int, t Tenant)

// eachTenant calls fetch for every tenant in order. Tenants without an id or
// API host cannot be addressed and are skipped without a warning. Only
// cancellation of ctx ends the loop early.
func eachTenant[T any](ctx context.Context, tenants []Tenant, op string, log *zap.Logger, progress progressFunc, fetch func(context.Context, Tenant) ([]T, error)) (batch[T], error) {
	var b batch[T]

	for i, t := range tenants {
		if t.ID == "" || t.APIHost == "" {
			continue
		}
		if progress != nil {
			progress(i+1, len(tenants), t)
		}

		rows, err := fetch(ctx, t)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return b, ctxErr
			}
			b.Warnings = append(b.Warnings, TenantWarning{Tenant: t, Op: op, Err: err})
			log.Warn("tenant skipped",
				zap.String("tenant", t.Name),
				zap.String("tenant_id", t.ID),
				zap.String("op", op),
				zap.Error(err),
			)
			continue
		}

		b.Rows = append(b.Rows, rows...)
	}

	return b, nil
}
