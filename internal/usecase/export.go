package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/V4T54L/dealer-portal/internal/csvexport"
	"github.com/V4T54L/dealer-portal/internal/domain"
)

// Export views.
const (
	ExportSearch     = "search"
	ExportNotVisited = "not-visited"
	ExportRepDeals   = "rep-deals"
	ExportRoute      = "route"
)

const csvContentType = "text/csv; charset=utf-8"

// ExportRequest selects a view and its parameters.
type ExportRequest struct {
	View   string
	Filter DealerFilter // search
	Scope  string       // not-visited, rep-deals
	Sort   string       // not-visited
	Date   string       // route
}

// ExportUseCase renders the scoped views as CSV tables.
type ExportUseCase struct {
	search *SearchUseCase
	report *ReportUseCase
	route  *RouteUseCase
	sink   domain.ExportSink
	logger *slog.Logger
	now    func() time.Time
}

// NewExportUseCase wires the views. sink may be nil when publishing is
// not configured.
func NewExportUseCase(search *SearchUseCase, report *ReportUseCase, route *RouteUseCase, sink domain.ExportSink, logger *slog.Logger) *ExportUseCase {
	return &ExportUseCase{
		search: search,
		report: report,
		route:  route,
		sink:   sink,
		logger: logger,
		now:    time.Now,
	}
}

// Table builds the CSV table for req on behalf of actor.
func (uc *ExportUseCase) Table(actor domain.User, req ExportRequest) (csvexport.Table, error) {
	switch req.View {
	case ExportSearch:
		return searchTable(uc.search.Filtered(actor, req.Filter)), nil
	case ExportNotVisited:
		rep, err := uc.report.Build(actor, req.Scope, req.Sort)
		if err != nil {
			return csvexport.Table{}, err
		}
		return notVisitedTable(rep.NotVisited), nil
	case ExportRepDeals:
		rep, err := uc.report.Build(actor, req.Scope, "")
		if err != nil {
			return csvexport.Table{}, err
		}
		return repDealsTable(rep.SendingDeals.ByRep), nil
	case ExportRoute:
		stops, err := uc.route.Stops(actor, req.Date)
		if err != nil {
			return csvexport.Table{}, err
		}
		return routeTable(stops), nil
	}
	return csvexport.Table{}, fmt.Errorf("%w: unknown export view %q", domain.ErrValidation, req.View)
}

// Render encodes the view with a BOM so spreadsheets pick up UTF-8.
func (uc *ExportUseCase) Render(actor domain.User, req ExportRequest) ([]byte, error) {
	t, err := uc.Table(actor, req)
	if err != nil {
		return nil, err
	}
	return csvexport.Encode(t, csvexport.Options{BOM: true}), nil
}

// Publish renders the view and stores it in the export sink, returning
// the stored location.
func (uc *ExportUseCase) Publish(ctx context.Context, actor domain.User, req ExportRequest) (string, error) {
	if uc.sink == nil {
		return "", fmt.Errorf("%w: export storage is not configured", domain.ErrValidation)
	}
	body, err := uc.Render(actor, req)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("exports/%s/%s-%s.csv", req.View, actor.Username, uc.now().UTC().Format("20060102T150405Z"))
	location, err := uc.sink.Put(ctx, key, csvContentType, body)
	if err != nil {
		return "", fmt.Errorf("failed to publish export: %w", err)
	}
	uc.logger.Info("export published", "view", req.View, "location", location, "by", actor.Username)
	return location, nil
}

// Filename suggests a download name for the view.
func Filename(req ExportRequest) string {
	if req.View == ExportRoute && req.Date != "" {
		return "route-" + req.Date + ".csv"
	}
	return req.View + ".csv"
}

func searchTable(rows []DealerRow) csvexport.Table {
	t := csvexport.Table{Header: []string{"Name", "City", "State", "Region", "Type", "Status", "Rep(s)", "Last Visited", "Sending Deals"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Name, r.City, r.State, r.Region, r.Type, string(r.Status), r.Reps,
			formatDate(r.LastVisited), r.SendingDeals.String(),
		})
	}
	return t
}

func notVisitedTable(rows []OverdueDealer) csvexport.Table {
	t := csvexport.Table{Header: []string{"Name", "City", "State", "Region", "Rep(s)", "Last Visited", "Days Since"}}
	for _, r := range rows {
		days := "never"
		if r.DaysSince != nil {
			days = strconv.Itoa(*r.DaysSince)
		}
		t.Rows = append(t.Rows, []string{
			r.Dealer.Name, r.Dealer.City, r.Dealer.State, r.Dealer.Region, r.Reps,
			formatDate(r.Dealer.LastVisited), days,
		})
	}
	return t
}

func repDealsTable(rows []RepDealsRow) csvexport.Table {
	t := csvexport.Table{Header: []string{"Rep", "Yes", "No", "Unknown"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Name, strconv.Itoa(r.Yes), strconv.Itoa(r.No), strconv.Itoa(r.Unknown),
		})
	}
	return t
}

func routeTable(stops []PlannedStop) csvexport.Table {
	t := csvexport.Table{Header: []string{"Stop", "Dealer", "City", "State", "Region"}}
	for i, s := range stops {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1), s.DealerName, s.City, s.State, s.Region,
		})
	}
	return t
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(domain.DateLayout)
}
