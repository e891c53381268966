package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hrm/internal/apperror"
	"hrm/internal/repository"
	"hrm/pkg/daycount"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Warning thresholds as usage percentages of the monthly allowance.
var (
	overQuotaPercent = decimal.NewFromInt(100)
	nearQuotaPercent = decimal.NewFromInt(80)
)

type DashboardResponse struct {
	EmployeeID      string            `json:"employee_id"`
	AsOf            string            `json:"as_of"`
	Year            int               `json:"year"`
	Month           int               `json:"month"`
	QuotaConfigured bool              `json:"quota_configured"`
	AllowedDays     string            `json:"allowed_days"`
	UsedDays        string            `json:"used_days"`
	RemainingDays   string            `json:"remaining_days"`
	UsagePercent    string            `json:"usage_percent"`
	Upcoming        []RequestResponse `json:"upcoming"`
	Warnings        []string          `json:"warnings"`
}

// DashboardService joins the current month's quota, usage to date and upcoming
// requests into one employee summary. Purely a read; never mutates state, and
// tolerates staleness with respect to concurrently approved requests.
type DashboardService interface {
	GetDashboard(ctx context.Context, employeeID uuid.UUID, asOf *time.Time) (DashboardResponse, error)
}

type dashboardService struct {
	quotas   repository.QuotaRepository
	requests repository.RequestRepository
	now      func() time.Time
}

func NewDashboardService(quotas repository.QuotaRepository, requests repository.RequestRepository) DashboardService {
	return &dashboardService{
		quotas:   quotas,
		requests: requests,
		now:      time.Now,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context, employeeID uuid.UUID, asOf *time.Time) (DashboardResponse, error) {
	at := s.now()
	if asOf != nil {
		at = *asOf
	}
	// Calendar-day semantics: requests store dates at midnight, so the clock
	// time of a default "now" must not push today's requests out of range.
	at = time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	year, month := at.Year(), at.Month()

	configured := true
	allowed := decimal.Zero
	quota, err := s.quotas.FindByPeriod(ctx, employeeID, year, int(month))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return DashboardResponse{}, apperror.Wrap(apperror.CodeInternal, err, "failed to load quota")
		}
		configured = false
	} else {
		allowed = quota.AllowedDays
	}

	used, err := computeUsedDays(ctx, s.requests, employeeID, year, month)
	if err != nil {
		return DashboardResponse{}, err
	}

	upcoming, err := s.requests.ListUpcoming(ctx, employeeID, at)
	if err != nil {
		return DashboardResponse{}, apperror.Wrap(apperror.CodeInternal, err, "failed to load upcoming requests")
	}

	resp := DashboardResponse{
		EmployeeID:      employeeID.String(),
		AsOf:            at.Format(daycount.DateFormat),
		Year:            year,
		Month:           int(month),
		QuotaConfigured: configured,
		AllowedDays:     allowed.String(),
		UsedDays:        used.String(),
		RemainingDays:   allowed.Sub(used).String(),
		Upcoming:        make([]RequestResponse, 0, len(upcoming)),
		Warnings:        []string{},
	}
	for i := range upcoming {
		resp.Upcoming = append(resp.Upcoming, toRequestResponse(&upcoming[i]))
	}

	percent := decimal.Zero
	if allowed.IsPositive() {
		percent = used.Div(allowed).Mul(decimal.NewFromInt(100)).Round(1)
	}
	resp.UsagePercent = percent.String()

	if !configured {
		resp.Warnings = append(resp.Warnings,
			fmt.Sprintf("leave quota for %04d-%02d is not configured", year, int(month)))
	}
	switch {
	case allowed.IsPositive() && percent.GreaterThanOrEqual(overQuotaPercent):
		resp.Warnings = append(resp.Warnings,
			fmt.Sprintf("over quota: used %s of %s allowed days", used.String(), allowed.String()))
	case allowed.IsPositive() && percent.GreaterThanOrEqual(nearQuotaPercent):
		resp.Warnings = append(resp.Warnings,
			fmt.Sprintf("near quota: used %s of %s allowed days", used.String(), allowed.String()))
	}

	return resp, nil
}
