package orchestrator

import (
	"context"

	"go.uber.org/zap"

	"github.com/patrickwarner/openadops/internal/models"
	"github.com/patrickwarner/openadops/internal/reference"
)

// AssignUnassigned routes every unassigned ticket to the least loaded user
// holding the role its ticket type routes to, and returns how many tickets
// were assigned. Load counts open tickets only; ties keep store order, so
// repeated sweeps over the same data assign deterministically.
func (o *Orchestrator) AssignUnassigned(ctx context.Context) int {
	unassigned := o.Store.UnassignedTickets()
	if len(unassigned) == 0 {
		return 0
	}

	open := openTicketCounts(o.Store.GetAllTickets())
	assigned := 0
	for _, t := range unassigned {
		select {
		case <-ctx.Done():
			return assigned
		default:
		}

		role := reference.RoleFor(t.RequestType)
		candidates := o.Store.UsersByRole(role)
		if len(candidates) == 0 {
			o.Logger.Warn("no users hold role", zap.String("role", role), zap.String("ticket_id", t.ID))
			continue
		}

		pick := candidates[0]
		for _, u := range candidates[1:] {
			if open[u.Name] < open[pick.Name] {
				pick = u
			}
		}

		if err := o.Store.UpdateTicketAssignee(t.ID, pick.Name, role); err != nil {
			o.Logger.Warn("assignment not applied", zap.String("ticket_id", t.ID), zap.Error(err))
			continue
		}
		if o.Records != nil {
			if err := o.Records.UpdateTicketAssignee(t.ID, pick.Name, role); err != nil {
				o.Logger.Warn("assignment not persisted", zap.String("ticket_id", t.ID), zap.Error(err))
			}
		}
		open[pick.Name]++
		assigned++
		o.Metrics.IncrementTicketsAssigned()
		o.Logger.Info("ticket assigned",
			zap.String("ticket_id", t.ID),
			zap.String("assignee", pick.Name),
			zap.String("role", role))
	}
	return assigned
}

// openTicketCounts tallies tickets per assignee. Completed and Live tickets
// are finished work and do not count toward load.
func openTicketCounts(tickets []models.Ticket) map[string]int {
	counts := make(map[string]int)
	for _, t := range tickets {
		if !t.Assigned() || t.Stage == models.StageCompleted || t.Stage == models.StageLive {
			continue
		}
		counts[t.Assignee]++
	}
	return counts
}
