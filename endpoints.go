// ABOUTME: Endpoint inventory across every tenant of the partner.
// ABOUTME: Flattens endpoints into report rows and trims last-seen timestamps to dates.

package main

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"
)

var endpointFields = []string{"tenant_id", "tenant_name", "hostname", "os_name", "os_build", "last_seen_date"}

type EndpointRow struct {
	TenantID     string
	TenantName   string
	Hostname     string
	OSName       string
	OSBuild      string
	LastSeenDate string
}

func (r EndpointRow) record() []string {
	return []string{r.TenantID, r.TenantName, r.Hostname, r.OSName, r.OSBuild, r.LastSeenDate}
}

// flexString decodes a JSON string or number into its text form.
// Build numbers come back as either depending on the OS.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05"}

// lastSeenDate returns the date portion of an ISO-8601 timestamp. Anything
// that does not parse is returned untouched.
func lastSeenDate(v string) string {
	if v == "" {
		return notAvailable
	}
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return v[:len("2006-01-02")]
		}
	}
	return v
}

func endpointRows(t Tenant, endpoints []Endpoint) []EndpointRow {
	rows := make([]EndpointRow, 0, len(endpoints))
	for _, e := range endpoints {
		rows = append(rows, EndpointRow{
			TenantID:     t.ID,
			TenantName:   orNA(t.Name),
			Hostname:     orNA(e.Hostname),
			OSName:       orNA(e.OS.Name),
			OSBuild:      orNA(string(e.OS.Build)),
			LastSeenDate: lastSeenDate(e.LastSeenAt),
		})
	}
	return rows
}

func sortEndpointRows(rows []EndpointRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return lessFold(
			[]string{rows[i].TenantName, rows[i].Hostname, rows[i].TenantID},
			[]string{rows[j].TenantName, rows[j].Hostname, rows[j].TenantID},
		)
	})
}

// collectEndpoints lists the tenants and then walks each tenant's endpoint
// inventory in turn. Only the tenant list is required to succeed.
func collectEndpoints(ctx context.Context, api partnerAPI, log *zap.Logger, progress progressFunc) (batch[EndpointRow], error) {
	tenants, err := listTenants(ctx, api)
	if err != nil {
		return batch[EndpointRow]{}, err
	}

	b, err := eachTenant(ctx, tenants, "endpoints", log, progress, func(ctx context.Context, t Tenant) ([]EndpointRow, error) {
		endpoints, err := api.Endpoints(ctx, t)
		if err != nil {
			return nil, err
		}
		return endpointRows(t, endpoints), nil
	})
	if err != nil {
		return b, err
	}

	sortEndpointRows(b.Rows)
	return b, nil
}
