package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"hrm/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type dashboardTestEnv struct {
	svc      *dashboardService
	quotas   *fakeQuotaRepo
	requests *fakeRequestRepo
}

func newDashboardTestEnv() *dashboardTestEnv {
	quotas := newFakeQuotaRepo()
	requests := newFakeRequestRepo()
	svc := NewDashboardService(quotas, requests).(*dashboardService)
	return &dashboardTestEnv{svc: svc, quotas: quotas, requests: requests}
}

func (env *dashboardTestEnv) seedQuota(t *testing.T, employeeID uuid.UUID, year, month int, allowed string) {
	t.Helper()
	if err := env.quotas.Upsert(context.Background(), &model.LeaveQuota{
		EmployeeID:  employeeID,
		Year:        year,
		Month:       month,
		AllowedDays: decimal.RequireFromString(allowed),
	}); err != nil {
		t.Fatalf("seed quota: %v", err)
	}
}

func (env *dashboardTestEnv) seedRequest(t *testing.T, employeeID uuid.UUID, kind, status string, start, end time.Time) {
	t.Helper()
	req := &model.TimeOffRequest{
		EmployeeID: employeeID,
		Kind:       kind,
		StartDate:  start,
		EndDate:    end,
		Status:     status,
	}
	if kind == model.RequestKindLeave {
		subtype := model.LeaveSubtypeFullDay
		req.LeaveSubtype = &subtype
	}
	if err := env.requests.Create(context.Background(), req); err != nil {
		t.Fatalf("seed request: %v", err)
	}
}

func hasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestDashboardUsageAndRemaining(t *testing.T) {
	env := newDashboardTestEnv()
	employee := uuid.New()
	asOf := date(2025, 3, 5)

	env.seedQuota(t, employee, 2025, 3, "10")
	env.seedRequest(t, employee, model.RequestKindLeave, model.RequestStatusApproved,
		date(2025, 3, 3), date(2025, 3, 4))

	resp, err := env.svc.GetDashboard(context.Background(), employee, &asOf)
	if err != nil {
		t.Fatalf("GetDashboard() error: %v", err)
	}
	if !resp.QuotaConfigured {
		t.Error("quota reported unconfigured")
	}
	if resp.UsedDays != "2" || resp.RemainingDays != "8" {
		t.Errorf("used/remaining = %s/%s, want 2/8", resp.UsedDays, resp.RemainingDays)
	}
	if resp.UsagePercent != "20" {
		t.Errorf("usage percent = %s, want 20", resp.UsagePercent)
	}
	if len(resp.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", resp.Warnings)
	}
}

func TestDashboardWarnings(t *testing.T) {
	asOf := date(2025, 3, 5)

	t.Run("unconfigured quota", func(t *testing.T) {
		env := newDashboardTestEnv()
		employee := uuid.New()

		resp, err := env.svc.GetDashboard(context.Background(), employee, &asOf)
		if err != nil {
			t.Fatalf("GetDashboard() error: %v", err)
		}
		if resp.QuotaConfigured {
			t.Error("quota reported configured")
		}
		if !hasWarning(resp.Warnings, "not configured") {
			t.Errorf("warnings = %v, want a not-configured warning", resp.Warnings)
		}
	})

	t.Run("near quota", func(t *testing.T) {
		env := newDashboardTestEnv()
		employee := uuid.New()
		env.seedQuota(t, employee, 2025, 3, "10")
		// 8 of 10 days used: exactly on the 80% threshold.
		env.seedRequest(t, employee, model.RequestKindLeave, model.RequestStatusApproved,
			date(2025, 3, 3), date(2025, 3, 10))

		resp, err := env.svc.GetDashboard(context.Background(), employee, &asOf)
		if err != nil {
			t.Fatalf("GetDashboard() error: %v", err)
		}
		if !hasWarning(resp.Warnings, "near quota") {
			t.Errorf("warnings = %v, want a near-quota warning", resp.Warnings)
		}
		if hasWarning(resp.Warnings, "over quota") {
			t.Errorf("warnings = %v, over-quota warning not expected at 80%%", resp.Warnings)
		}
	})

	t.Run("over quota", func(t *testing.T) {
		env := newDashboardTestEnv()
		employee := uuid.New()
		env.seedQuota(t, employee, 2025, 3, "5")
		env.seedRequest(t, employee, model.RequestKindLeave, model.RequestStatusApproved,
			date(2025, 3, 3), date(2025, 3, 7))

		resp, err := env.svc.GetDashboard(context.Background(), employee, &asOf)
		if err != nil {
			t.Fatalf("GetDashboard() error: %v", err)
		}
		if !hasWarning(resp.Warnings, "over quota") {
			t.Errorf("warnings = %v, want an over-quota warning", resp.Warnings)
		}
	})
}

func TestDashboardUpcoming(t *testing.T) {
	env := newDashboardTestEnv()
	employee := uuid.New()
	asOf := date(2025, 3, 5)
	env.seedQuota(t, employee, 2025, 3, "20")

	// Before the as-of date: excluded.
	env.seedRequest(t, employee, model.RequestKindLeave, model.RequestStatusApproved,
		date(2025, 3, 1), date(2025, 3, 2))
	// Terminal states: excluded.
	env.seedRequest(t, employee, model.RequestKindLeave, model.RequestStatusRejected,
		date(2025, 3, 20), date(2025, 3, 21))
	env.seedRequest(t, employee, model.RequestKindLeave, model.RequestStatusCancelled,
		date(2025, 3, 22), date(2025, 3, 23))
	// Someone else's request: excluded.
	env.seedRequest(t, uuid.New(), model.RequestKindLeave, model.RequestStatusPending,
		date(2025, 3, 10), date(2025, 3, 11))
	// These two are upcoming, seeded out of order.
	env.seedRequest(t, employee, model.RequestKindBusinessTrip, model.RequestStatusPending,
		date(2025, 3, 18), date(2025, 3, 19))
	env.seedRequest(t, employee, model.RequestKindLeave, model.RequestStatusApproved,
		date(2025, 3, 10), date(2025, 3, 11))

	resp, err := env.svc.GetDashboard(context.Background(), employee, &asOf)
	if err != nil {
		t.Fatalf("GetDashboard() error: %v", err)
	}
	if len(resp.Upcoming) != 2 {
		t.Fatalf("upcoming = %d entries, want 2: %+v", len(resp.Upcoming), resp.Upcoming)
	}
	if resp.Upcoming[0].StartDate != "2025-03-10" || resp.Upcoming[1].StartDate != "2025-03-18" {
		t.Errorf("upcoming not sorted by start date: %s, %s",
			resp.Upcoming[0].StartDate, resp.Upcoming[1].StartDate)
	}
}

// A request starting today must count as upcoming even though the default
// as-of carries wall-clock time past midnight.
func TestDashboardDefaultAsOfIsCalendarDay(t *testing.T) {
	env := newDashboardTestEnv()
	employee := uuid.New()
	env.svc.now = func() time.Time {
		return time.Date(2025, 3, 5, 14, 30, 0, 0, time.UTC)
	}

	env.seedQuota(t, employee, 2025, 3, "10")
	env.seedRequest(t, employee, model.RequestKindLeave, model.RequestStatusApproved,
		date(2025, 3, 5), date(2025, 3, 6))

	resp, err := env.svc.GetDashboard(context.Background(), employee, nil)
	if err != nil {
		t.Fatalf("GetDashboard() error: %v", err)
	}
	if resp.AsOf != "2025-03-05" {
		t.Errorf("as_of = %s, want 2025-03-05", resp.AsOf)
	}
	if len(resp.Upcoming) != 1 {
		t.Fatalf("upcoming = %d entries, want 1: %+v", len(resp.Upcoming), resp.Upcoming)
	}
	if resp.Upcoming[0].StartDate != "2025-03-05" {
		t.Errorf("upcoming start = %s, want 2025-03-05", resp.Upcoming[0].StartDate)
	}
}

func TestDashboardZeroAllowance(t *testing.T) {
	env := newDashboardTestEnv()
	employee := uuid.New()
	asOf := date(2025, 3, 5)
	env.seedQuota(t, employee, 2025, 3, "0")

	resp, err := env.svc.GetDashboard(context.Background(), employee, &asOf)
	if err != nil {
		t.Fatalf("GetDashboard() error: %v", err)
	}
	// No division by zero and no percentage-based warnings on a zero allowance.
	if resp.UsagePercent != "0" {
		t.Errorf("usage percent = %s, want 0", resp.UsagePercent)
	}
	if hasWarning(resp.Warnings, "quota:") {
		t.Errorf("warnings = %v, want none", resp.Warnings)
	}
}
