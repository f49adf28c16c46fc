package db

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/patrickwarner/openadops/internal/models"
)

// Init loads the operational working set from Postgres into the data store.
// Tickets referencing unknown campaigns are kept and logged: the routing
// engine falls back to ticket fields when campaign context is missing, so a
// dangling reference is an ops data-quality problem rather than a fatal one.
func Init(pg *Postgres, store models.OpsDataStore) error {
	campaigns, err := pg.LoadCampaigns()
	if err != nil {
		return fmt.Errorf("load campaigns: %w", err)
	}
	campaignIDs := make(map[string]struct{}, len(campaigns))
	for _, c := range campaigns {
		campaignIDs[c.ID] = struct{}{}
	}

	tickets, err := pg.LoadTickets()
	if err != nil {
		return fmt.Errorf("load tickets: %w", err)
	}
	for _, t := range tickets {
		if t.CampaignID == "" {
			continue
		}
		if _, ok := campaignIDs[t.CampaignID]; !ok {
			zap.L().Warn("Ticket references unknown campaign",
				zap.String("ticket_id", t.ID),
				zap.String("campaign_id", t.CampaignID))
		}
	}

	users, err := pg.LoadUsers()
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	if err := store.ReloadAll(tickets, campaigns, users); err != nil {
		return fmt.Errorf("reload data store: %w", err)
	}

	checks, err := pg.LoadQAChecks()
	if err != nil {
		return fmt.Errorf("load qa checks: %w", err)
	}
	if err := store.SetQAChecks(checks); err != nil {
		return fmt.Errorf("hydrate qa log: %w", err)
	}

	zap.L().Info("Loaded operational data",
		zap.Int("tickets", len(tickets)),
		zap.Int("campaigns", len(campaigns)),
		zap.Int("users", len(users)),
		zap.Int("qa_checks", len(checks)))
	return nil
}

// Reload refreshes the working set and the QA log from Postgres. The QA log
// is replaced wholesale rather than appended: pipeline runs write each check
// row to Postgres before the in-memory copy, so the system of record already
// holds everything appended since the last tick.
func Reload(pg *Postgres, store models.OpsDataStore) error {
	campaigns, err := pg.LoadCampaigns()
	if err != nil {
		return fmt.Errorf("load campaigns: %w", err)
	}
	tickets, err := pg.LoadTickets()
	if err != nil {
		return fmt.Errorf("load tickets: %w", err)
	}
	users, err := pg.LoadUsers()
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	if err := store.ReloadAll(tickets, campaigns, users); err != nil {
		return fmt.Errorf("reload data store: %w", err)
	}
	checks, err := pg.LoadQAChecks()
	if err != nil {
		return fmt.Errorf("load qa checks: %w", err)
	}
	if err := store.SetQAChecks(checks); err != nil {
		return fmt.Errorf("reload qa log: %w", err)
	}
	return nil
}
