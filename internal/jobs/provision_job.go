package jobs

import (
	"context"
	"time"

	"hrm/internal/service"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// StartMonthlyProvisioning schedules a job that seeds next month's quota rows
// for every employee from a default allowance. It reuses the bulk provisioner,
// so already-edited rows are simply overwritten with the default and per-row
// failures are logged, not fatal.
//
// Runs at 02:00 on the 25th of each month, provisioning the following month.
func StartMonthlyProvisioning(quotaService service.QuotaService, defaultDays decimal.Decimal, log zerolog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc("0 2 25 * *", func() {
		next := time.Now().AddDate(0, 1, 0)
		req := service.BulkUpsertQuotaDTO{
			Year:        next.Year(),
			Month:       int(next.Month()),
			AllowedDays: defaultDays,
			Note:        "auto-provisioned default",
		}

		result, err := quotaService.BulkUpsertQuota(context.Background(), uuid.Nil, req)
		if err != nil {
			log.Error().Err(err).Msg("monthly quota provisioning failed")
			return
		}
		log.Info().
			Int("year", req.Year).
			Int("month", req.Month).
			Int("updated", result.UpdatedCount).
			Int("failed", len(result.Errors)).
			Msg("monthly quota provisioning finished")
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
