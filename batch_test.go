package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCollectHealthIsolatesTenantFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := NewMockpartnerAPI(ctrl)

	host := "https://api-eu02.central.sophos.com"
	one := Tenant{ID: "t-1", Name: "Tenant One", APIHost: host}
	two := Tenant{ID: "t-2", Name: "Tenant Two", APIHost: host}
	three := Tenant{ID: "t-3", Name: "Tenant Three", APIHost: host}

	api.EXPECT().Tenants(gomock.Any()).Return([]Tenant{one, two, three}, nil)
	api.EXPECT().HealthCheck(gomock.Any(), one).Return(parseHealth(t, `{"networkDevice": {"firewall": {"a": {"score": 90}}}}`), nil)
	api.EXPECT().HealthCheck(gomock.Any(), two).Return(nil, errors.New("connection reset by peer"))
	api.EXPECT().HealthCheck(gomock.Any(), three).Return(parseHealth(t, `{
		"endpoint": {"protection": {"computer": {"score": 70, "total": 2}}}
	}`), nil)

	core, logs := observer.New(zap.InfoLevel)

	b, err := collectHealth(context.Background(), api, zap.New(core), nil)
	require.NoError(t, err)

	require.Len(t, b.Rows, 2)
	assert.Equal(t, "Tenant One", b.Rows[0].TenantName)
	assert.Equal(t, "90.0", b.Rows[0].Overall.String())
	assert.Equal(t, "Tenant Three", b.Rows[1].TenantName)
	assert.Equal(t, "70.0", b.Rows[1].Protection.String())

	require.Len(t, b.Warnings, 1)
	assert.Equal(t, "t-2", b.Warnings[0].Tenant.ID)
	assert.Equal(t, "health check", b.Warnings[0].Op)
	assert.EqualError(t, b.Warnings[0], "failed to get health check for tenant Tenant Two: connection reset by peer")

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "Tenant Two", warnings[0].ContextMap()["tenant"])
	assert.Equal(t, "t-2", warnings[0].ContextMap()["tenant_id"])
}

func TestEachTenantSkipsUnaddressableTenantsSilently(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	tenants := []Tenant{
		{ID: "", Name: "No ID", APIHost: "https://h"},
		{ID: "t-1", Name: "No Host"},
		{ID: "t-2", Name: "Ok", APIHost: "https://h"},
	}

	var called []string
	b, err := eachTenant(context.Background(), tenants, "endpoints", zap.New(core), nil, func(_ context.Context, t Tenant) ([]string, error) {
		called = append(called, t.Name)
		return []string{t.ID}, nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Ok"}, called)
	assert.Equal(t, []string{"t-2"}, b.Rows)
	assert.Empty(t, b.Warnings)
	assert.Zero(t, logs.Len())
}

func TestEachTenantStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	tenants := []Tenant{
		{ID: "t-1", Name: "One", APIHost: "https://h"},
		{ID: "t-2", Name: "Two", APIHost: "https://h"},
	}

	calls := 0
	_, err := eachTenant(ctx, tenants, "endpoints", zap.NewNop(), nil, func(ctx context.Context, t Tenant) ([]int, error) {
		calls++
		cancel()
		return nil, ctx.Err()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestEachTenantReportsProgress(t *testing.T) {
	tenants := []Tenant{
		{ID: "t-1", Name: "One", APIHost: "https://h"},
		{ID: "t-2", Name: "Skipped"},
		{ID: "t-3", Name: "Three", APIHost: "https://h"},
	}

	type step struct{ n, total int }
	var steps []step
	_, err := eachTenant(context.Background(), tenants, "endpoints", zap.NewNop(),
		func(n, total int, _ Tenant) { steps = append(steps, step{n, total}) },
		func(context.Context, Tenant) ([]int, error) { return nil, nil },
	)
	require.NoError(t, err)
	assert.Equal(t, []step{{1, 3}, {3, 3}}, steps)
}
