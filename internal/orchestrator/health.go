package orchestrator

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/openadops/internal/analytics"
)

// HealthReport summarizes one delivery health sweep.
type HealthReport struct {
	SLABreaches  int       `json:"sla_breaches"`
	ZeroDelivery int       `json:"zero_delivery_campaigns"`
	UnderPacing  int       `json:"under_pacing"`
	OverPacing   int       `json:"over_pacing"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// RunHealthCheck sweeps delivery health: SLA breaches, active campaigns
// with zero delivery on the most recent day, and campaigns pacing outside
// the healthy band. Each finding raises its alert. Analytics being down
// skips the delivery checks rather than failing the sweep, so the SLA
// portion still runs on every tick.
func (o *Orchestrator) RunHealthCheck(ctx context.Context) HealthReport {
	report := HealthReport{GeneratedAt: nowFn()}
	report.SLABreaches = o.sweepSLA(ctx)

	if o.Analytics != nil {
		zero, err := o.Analytics.ZeroDeliveryCampaigns(ctx, o.Store)
		switch {
		case errors.Is(err, analytics.ErrUnavailable):
			o.Logger.Debug("zero delivery check skipped, analytics unavailable")
		case err != nil:
			o.Logger.Warn("zero delivery check failed", zap.Error(err))
		case len(zero) > 0:
			report.ZeroDelivery = len(zero)
			o.Logger.Warn("zero delivery campaigns found", zap.Int("count", len(zero)))
			if o.Alerts != nil {
				if err := o.Alerts.SendZeroDeliveryAlert(ctx, zero); err != nil {
					o.Logger.Warn("zero delivery alert not sent", zap.Error(err))
				}
			}
		}
	}

	if o.Pacer != nil {
		under, over, err := o.Pacer.PacingSummary(ctx)
		switch {
		case errors.Is(err, analytics.ErrUnavailable):
			o.Logger.Debug("pacing check skipped, analytics unavailable")
		case err != nil:
			o.Logger.Warn("pacing check failed", zap.Error(err))
		default:
			report.UnderPacing = len(under)
			report.OverPacing = len(over)
			if len(under)+len(over) > 0 {
				o.Logger.Warn("campaigns pacing outside healthy band",
					zap.Int("under", len(under)), zap.Int("over", len(over)))
				if o.Alerts != nil {
					if err := o.Alerts.SendPacingAlert(ctx, len(under), len(over)); err != nil {
						o.Logger.Warn("pacing alert not sent", zap.Error(err))
					}
				}
			}
		}
	}

	return report
}
