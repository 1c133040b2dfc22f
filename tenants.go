// ABOUTME: Tenant listing for the partner account.
// ABOUTME: Sorts tenants by name and flattens them into tenant report rows.

package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// notAvailable stands in for any value the API left out.
const notAvailable = "N/A"

var tenantFields = []string{"tenant_name", "tenant_id", "data_region", "api_host", "status"}

type TenantRow struct {
	Name       string
	ID         string
	DataRegion string
	APIHost    string
	Status     string
}

func (r TenantRow) record() []string {
	return []string{r.Name, r.ID, r.DataRegion, r.APIHost, r.Status}
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// listTenants fetches every tenant under the partner, sorted by name.
func listTenants(ctx context.Context, api partnerAPI) ([]Tenant, error) {
	tenants, err := api.Tenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching tenants: %w", err)
	}

	sort.SliceStable(tenants, func(i, j int) bool {
		return lessFold(
			[]string{tenants[i].Name, tenants[i].ID},
			[]string{tenants[j].Name, tenants[j].ID},
		)
	})
	return tenants, nil
}

func tenantRows(tenants []Tenant) []TenantRow {
	rows := make([]TenantRow, 0, len(tenants))
	for _, t := range tenants {
		rows = append(rows, TenantRow{
			Name:       orNA(t.Name),
			ID:         orNA(t.ID),
			DataRegion: orNA(t.DataRegion),
			APIHost:    orNA(t.APIHost),
			Status:     orNA(t.Status),
		})
	}
	return rows
}

// lessFold compares two keys field by field, ignoring case first and
// falling back to exact bytes so equal-folding keys still order the same way
// every run.
func lessFold(a, b []string) bool {
	for i := range a {
		la, lb := strings.ToLower(a[i]), strings.ToLower(b[i])
		if la != lb {
			return la < lb
		}
	}
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
