// ABOUTME: Account health check scoring for every tenant of the partner.
// ABOUTME: Reduces each tenant's health-check document to six averaged scores.

package main

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"go.uber.org/zap"
)

var healthFields = []string{
	"tenant_name", "tenant_id", "overall_score", "protection_score",
	"policy_score", "exclusions_score", "tamper_protection_score", "firewall_score",
}

// HealthCheck is the subset of the account health check document that feeds
// the scores. Every field is optional.
type HealthCheck struct {
	Endpoint      healthEndpoint `json:"endpoint"`
	NetworkDevice networkDevice  `json:"networkDevice"`
}

type healthEndpoint struct {
	Protection       sides            `json:"protection"`
	Policy           policyChecks     `json:"policy"`
	Exclusions       exclusions       `json:"exclusions"`
	TamperProtection tamperProtection `json:"tamperProtection"`
}

type sides struct {
	Computer scoreEntry `json:"computer"`
	Server   scoreEntry `json:"server"`
}

type policyChecks struct {
	Computer checkSet `json:"computer"`
	Server   checkSet `json:"server"`
}

type exclusions struct {
	Policy sides      `json:"policy"`
	Global scoreEntry `json:"global"`
}

type tamperProtection struct {
	Computer     scoreEntry `json:"computer"`
	Server       scoreEntry `json:"server"`
	GlobalDetail scoreEntry `json:"globalDetail"`
}

type networkDevice struct {
	Firewall checkSet `json:"firewall"`
}

type scoreEntry struct {
	Score *float64 `json:"score"`
	Total *float64 `json:"total"`
}

// counted is the score of a per-device-kind entry. A total of zero means no
// devices of that kind exist, so the score does not count.
func (e scoreEntry) counted() Score {
	if e.Total == nil || *e.Total <= 0 {
		return noData
	}
	return e.present()
}

func (e scoreEntry) present() Score {
	if e.Score == nil {
		return noData
	}
	return scoreOf(*e.Score)
}

// checkSet is a map of named checks, each expected to carry a score.
type checkSet map[string]json.RawMessage

// mean averages the score of every check that has one. Checks are visited in
// name order so the float sum is the same on every run.
func (c checkSet) mean() Score {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	scores := make([]Score, 0, len(names))
	for _, name := range names {
		var e scoreEntry
		if err := json.Unmarshal(c[name], &e); err != nil {
			continue
		}
		scores = append(scores, e.present())
	}
	return mean(scores...)
}

// Score is a 0-100 health score, or no data.
type Score struct {
	value float64
	valid bool
}

var noData Score

func scoreOf(v float64) Score {
	return Score{value: v, valid: true}
}

func (s Score) Valid() bool {
	return s.valid
}

// Value is the score rounded to one decimal place.
func (s Score) Value() float64 {
	return math.Round(s.value*10) / 10
}

func (s Score) String() string {
	if !s.valid {
		return notAvailable
	}
	return strconv.FormatFloat(s.Value(), 'f', 1, 64)
}

// mean averages the scores that have data, unrounded.
func mean(scores ...Score) Score {
	var sum float64
	n := 0
	for _, s := range scores {
		if !s.valid {
			continue
		}
		sum += s.value
		n++
	}
	if n == 0 {
		return noData
	}
	return scoreOf(sum / float64(n))
}

type HealthScores struct {
	Overall          Score
	Protection       Score
	Policy           Score
	Exclusions       Score
	TamperProtection Score
	Firewall         Score
}

func aggregateHealth(doc *HealthCheck) HealthScores {
	if doc == nil {
		doc = &HealthCheck{}
	}
	ep := doc.Endpoint

	s := HealthScores{
		Protection: mean(ep.Protection.Computer.counted(), ep.Protection.Server.counted()),
		Firewall:   doc.NetworkDevice.Firewall.mean(),
	}

	// Policy, exclusions and tamper protection only apply to protected devices.
	if s.Protection.Valid() {
		s.Policy = mean(ep.Policy.Computer.mean(), ep.Policy.Server.mean())
		s.Exclusions = mean(
			ep.Exclusions.Policy.Computer.counted(),
			ep.Exclusions.Policy.Server.counted(),
			ep.Exclusions.Global.present(),
		)
		s.TamperProtection = mean(
			ep.TamperProtection.Computer.counted(),
			ep.TamperProtection.Server.counted(),
			ep.TamperProtection.GlobalDetail.present(),
		)
	}

	s.Overall = mean(s.Protection, s.Policy, s.Exclusions, s.TamperProtection, s.Firewall)
	return s
}

type HealthRow struct {
	TenantName string
	TenantID   string
	HealthScores
}

func (r HealthRow) record() []string {
	return []string{
		r.TenantName, r.TenantID,
		r.Overall.String(), r.Protection.String(), r.Policy.String(),
		r.Exclusions.String(), r.TamperProtection.String(), r.Firewall.String(),
	}
}

// collectHealth scores every tenant's health check. Tenants whose document
// cannot be fetched or decoded are left out with a warning.
func collectHealth(ctx context.Context, api partnerAPI, log *zap.Logger, progress progressFunc) (batch[HealthRow], error) {
	tenants, err := listTenants(ctx, api)
	if err != nil {
		return batch[HealthRow]{}, err
	}

	b, err := eachTenant(ctx, tenants, "health check", log, progress, func(ctx context.Context, t Tenant) ([]HealthRow, error) {
		doc, err := api.HealthCheck(ctx, t)
		if err != nil {
			return nil, err
		}
		return []HealthRow{{
			TenantName:   orNA(t.Name),
			TenantID:     t.ID,
			HealthScores: aggregateHealth(doc),
		}}, nil
	})
	if err != nil {
		return b, err
	}

	sort.SliceStable(b.Rows, func(i, j int) bool {
		return lessFold(
			[]string{b.Rows[i].TenantName, b.Rows[i].TenantID},
			[]string{b.Rows[j].TenantName, b.Rows[j].TenantID},
		)
	})
	return b, nil
}
