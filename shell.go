// ABOUTME: Interactive menu and report actions.
// ABOUTME: Each action fetches its data, prints a summary table, and exports the rows to CSV.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"go.uber.org/zap"
)

type shell struct {
	api partnerAPI
	cfg *Config
	log *zap.Logger
	out io.Writer
	now func() time.Time

	// newProgress is nil when no spinner should be shown.
	newProgress func() *progress
}

type menuItem struct {
	key   string
	label string
	run   func(*shell, context.Context) error
}

var menuItems = []menuItem{
	{key: "1", label: "List All Tenants", run: (*shell).listTenants},
	{key: "2", label: "List All Endpoints", run: (*shell).listEndpoints},
	{key: "3", label: "Show Account Health for All Tenants", run: (*shell).showHealth},
	{key: "4", label: "Exit"},
}

const defaultChoice = "4"

// run shows the menu until the user exits, stdin closes, or ctx is
// cancelled. Action errors are printed and the menu comes back.
func (s *shell) run(ctx context.Context, lines *lineReader) error {
	for {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, renderMenu(menuItems))

		item, err := s.choose(ctx, lines)
		if err != nil {
			return err
		}
		if item.run == nil {
			colorBanner.Fprintln(s.out, "\nGoodbye!")
			return nil
		}

		if err := item.run(s, ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			colorError.Fprintf(s.out, "Error: %v\n", err)
		}
	}
}

func (s *shell) choose(ctx context.Context, lines *lineReader) (menuItem, error) {
	keys := make([]string, len(menuItems))
	for i, item := range menuItems {
		keys[i] = item.key
	}

	for {
		fmt.Fprintf(s.out, "Select an option [%s] (%s): ", strings.Join(keys, "/"), defaultChoice)

		line, err := lines.readLine(ctx)
		if err == io.EOF {
			fmt.Fprintln(s.out)
			line = defaultChoice
		} else if err != nil {
			return menuItem{}, err
		}

		choice := strings.TrimSpace(line)
		if choice == "" {
			choice = defaultChoice
		}
		for _, item := range menuItems {
			if item.key == choice {
				return item, nil
			}
		}
		colorError.Fprintln(s.out, "Please select one of the available options")
	}
}

func (s *shell) startProgress(msg string) *progress {
	if s.newProgress == nil {
		return nil
	}
	p := s.newProgress()
	p.start(msg)
	return p
}

func (s *shell) listTenants(ctx context.Context) error {
	colorInfo.Fprintln(s.out, "\nFetching tenants...")

	p := s.startProgress("fetching tenants...")
	tenants, err := listTenants(ctx, s.api)
	p.stop()
	if err != nil {
		return err
	}

	if len(tenants) == 0 {
		colorError.Fprintln(s.out, "No tenants found.")
		return nil
	}

	rows := tenantRows(tenants)
	width := nameWidth()

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{truncateString(r.Name, width), r.ID, r.DataRegion, r.Status})
	}
	if err := s.renderTable("Sophos Tenants", []string{"Tenant Name", "Tenant ID", "Data Region", "Status"}, cells, nil); err != nil {
		return err
	}
	colorSuccess.Fprintf(s.out, "\nTotal tenants: %d\n", len(rows))

	return s.export("sophos_tenants", func(dir string, now time.Time) (string, error) {
		return exportCSV(dir, "sophos_tenants", tenantFields, rows, now)
	})
}

func (s *shell) listEndpoints(ctx context.Context) error {
	colorInfo.Fprintln(s.out, "\nFetching endpoints from all tenants...")
	colorDim.Fprintln(s.out, "This may take a moment...")

	p := s.startProgress("fetching tenants...")
	b, err := collectEndpoints(ctx, s.api, s.log, p.tenant)
	p.stop()
	if err != nil {
		return err
	}
	s.reportSkipped(b.Warnings)

	if len(b.Rows) == 0 {
		colorError.Fprintln(s.out, "No endpoints found.")
		return nil
	}

	width := nameWidth()
	cells := make([][]string, 0, len(b.Rows))
	for _, r := range b.Rows {
		cells = append(cells, []string{
			truncateString(r.TenantName, width),
			truncateString(r.Hostname, width),
			r.OSName,
			r.OSBuild,
			r.LastSeenDate,
		})
	}
	if err := s.renderTable("Sophos Endpoints", []string{"Tenant Name", "Hostname", "OS", "OS Version", "Last Seen"}, cells, nil); err != nil {
		return err
	}
	colorSuccess.Fprintf(s.out, "\nTotal endpoints: %d\n", len(b.Rows))

	return s.export("sophos_endpoints", func(dir string, now time.Time) (string, error) {
		return exportCSV(dir, "sophos_endpoints", endpointFields, b.Rows, now)
	})
}

func (s *shell) showHealth(ctx context.Context) error {
	colorInfo.Fprintln(s.out, "\nFetching account health from all tenants...")
	colorDim.Fprintln(s.out, "This may take a moment...")

	p := s.startProgress("fetching tenants...")
	b, err := collectHealth(ctx, s.api, s.log, p.tenant)
	p.stop()
	if err != nil {
		return err
	}
	s.reportSkipped(b.Warnings)

	if len(b.Rows) == 0 {
		colorError.Fprintln(s.out, "No health data found.")
		return nil
	}

	width := nameWidth()
	cells := make([][]string, 0, len(b.Rows))
	for _, r := range b.Rows {
		cells = append(cells, []string{
			truncateString(r.TenantName, width),
			colorScore(r.Overall),
			colorScore(r.Protection),
			colorScore(r.Policy),
			colorScore(r.Exclusions),
			colorScore(r.TamperProtection),
			colorScore(r.Firewall),
		})
	}
	align := []tw.Align{tw.AlignLeft, tw.AlignCenter, tw.AlignCenter, tw.AlignCenter, tw.AlignCenter, tw.AlignCenter, tw.AlignCenter}
	header := []string{"Tenant Name", "Overall Score", "Protection", "Policy", "Exclusions", "Tamper Protection", "Firewall"}
	if err := s.renderTable("Tenant Account Health", header, cells, align); err != nil {
		return err
	}
	colorSuccess.Fprintf(s.out, "\nTotal tenants checked: %d\n", len(b.Rows))

	return s.export("sophos_tenant_health", func(dir string, now time.Time) (string, error) {
		return exportCSV(dir, "sophos_tenant_health", healthFields, b.Rows, now)
	})
}

func (s *shell) export(report string, write func(dir string, now time.Time) (string, error)) error {
	path, err := write(s.cfg.OutputDir, s.now())
	if err != nil {
		return err
	}
	s.log.Debug("report exported", zap.String("report", report), zap.String("path", path))
	colorSuccess.Fprintf(s.out, "Data exported to: %s\n", path)
	return nil
}

// reportSkipped summarizes tenants left out of a report. Each one has
// already been logged with its cause.
func (s *shell) reportSkipped(warnings []TenantWarning) {
	if len(warnings) == 0 {
		return
	}
	names := make([]string, len(warnings))
	for i, w := range warnings {
		names[i] = orNA(w.Tenant.Name)
	}
	colorInfo.Fprintf(s.out, "Warning: %d tenant(s) skipped: %s\n", len(warnings), strings.Join(names, ", "))
}

func (s *shell) renderTable(title string, header []string, rows [][]string, align []tw.Align) error {
	fmt.Fprintln(s.out)
	colorBanner.Fprintln(s.out, title)

	table := tablewriter.NewWriter(s.out)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Formatting.AutoWrap = tw.WrapTruncate
		if align != nil {
			cfg.Row.Alignment.PerColumn = align
		}
	})
	table.Header(cellsOf(header)...)

	for _, r := range rows {
		if err := table.Append(cellsOf(r)...); err != nil {
			return err
		}
	}
	return table.Render()
}

func cellsOf(row []string) []any {
	cells := make([]any, len(row))
	for i, c := range row {
		cells[i] = c
	}
	return cells
}

// lineReader reads stdin on its own goroutine so a blocked prompt can still
// notice an interrupt.
type lineReader struct {
	lines chan lineResult
}

type lineResult struct {
	text string
	err  error
}

func newLineReader(r io.Reader) *lineReader {
	lr := &lineReader{lines: make(chan lineResult)}
	go func() {
		defer close(lr.lines)
		br := bufio.NewReader(r)
		for {
			text, err := br.ReadString('\n')
			if text != "" {
				lr.lines <- lineResult{text: text}
			}
			if err != nil {
				lr.lines <- lineResult{err: err}
				return
			}
		}
	}()
	return lr
}

func (lr *lineReader) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-lr.lines:
		if !ok {
			return "", io.EOF
		}
		return res.text, res.err
	}
}
