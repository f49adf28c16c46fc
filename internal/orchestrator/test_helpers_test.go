package orchestrator

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/patrickwarner/openadops/internal/models"
	"github.com/patrickwarner/openadops/internal/observability"
	"github.com/patrickwarner/openadops/internal/platforms"
	"github.com/patrickwarner/openadops/internal/trafficking"
)

// recordingAlerter captures every alert the orchestrator raises. When err is
// set it is returned after recording, exercising the fire-and-log paths.
type recordingAlerter struct {
	qaTickets   []models.Ticket
	qaFailures  [][]models.QAResult
	slaBatches  [][]models.Ticket
	zeroBatches [][]models.Campaign
	pacingCalls []pacingAlertCall
	err         error
}

type pacingAlertCall struct {
	Under, Over int
}

func (a *recordingAlerter) SendQAFailureAlert(ctx context.Context, ticket models.Ticket, failures []models.QAResult) error {
	a.qaTickets = append(a.qaTickets, ticket)
	a.qaFailures = append(a.qaFailures, failures)
	return a.err
}

func (a *recordingAlerter) SendSLABreachAlert(ctx context.Context, tickets []models.Ticket) error {
	a.slaBatches = append(a.slaBatches, tickets)
	return a.err
}

func (a *recordingAlerter) SendZeroDeliveryAlert(ctx context.Context, campaigns []models.Campaign) error {
	a.zeroBatches = append(a.zeroBatches, campaigns)
	return a.err
}

func (a *recordingAlerter) SendPacingAlert(ctx context.Context, underpacing, overpacing int) error {
	a.pacingCalls = append(a.pacingCalls, pacingAlertCall{Under: underpacing, Over: overpacing})
	return a.err
}

type stageWrite struct {
	ID, Stage, Notes string
}

type assigneeWrite struct {
	ID, Assignee, Role string
}

// recordingRecords captures system-of-record writes.
type recordingRecords struct {
	stages    []stageWrite
	assignees []assigneeWrite
	qaRows    []models.QACheck
	err       error
}

func (r *recordingRecords) UpdateTicketStage(id, stage, notes string) error {
	if r.err != nil {
		return r.err
	}
	r.stages = append(r.stages, stageWrite{ID: id, Stage: stage, Notes: notes})
	return nil
}

func (r *recordingRecords) UpdateTicketAssignee(id, assignee, role string) error {
	if r.err != nil {
		return r.err
	}
	r.assignees = append(r.assignees, assigneeWrite{ID: id, Assignee: assignee, Role: role})
	return nil
}

func (r *recordingRecords) InsertQACheck(q models.QACheck) error {
	if r.err != nil {
		return r.err
	}
	r.qaRows = append(r.qaRows, q)
	return nil
}

// fakeDeployer stands in for a buying platform client.
type fakeDeployer struct {
	id      string
	err     error
	names   []string
	budgets []float64
}

func (d *fakeDeployer) CreateCampaign(ctx context.Context, name string, budgetUSD float64) (string, error) {
	d.names = append(d.names, name)
	d.budgets = append(d.budgets, budgetUSD)
	if d.err != nil {
		return "", d.err
	}
	return d.id, nil
}

// cleanCampaign returns a campaign that passes every QA check.
func cleanCampaign() models.Campaign {
	return models.Campaign{
		ID:              "CMP-0001",
		Name:            "DIS_Moana2_US_Acq",
		TitleName:       "Moana 2",
		BrandCode:       "DIS",
		Objective:       "Acq",
		TargetingGeo:    "US",
		Language:        "ENG",
		ChannelMapped:   "ProgDisplay",
		Platform:        "DV360",
		BudgetUSD:       5000,
		StartDate:       "2026-02-01",
		EndDate:         "2026-03-01",
		Status:          models.CampaignActive,
		ImpressionsGoal: 1000000,
		AudienceDetail:  "Streaming Intenders",
	}
}

// pendingTicket returns an assigned ticket in the Trafficking stage, which
// is what the pipeline work queue picks up.
func pendingTicket(id, reqType, platform string) models.Ticket {
	return models.Ticket{
		ID:           id,
		CampaignID:   "CMP-0001",
		RequestType:  reqType,
		Stage:        models.StageTrafficking,
		Platform:     platform,
		Urgency:      models.UrgencyMedium,
		Assignee:     "Dana Cruz",
		AssigneeRole: models.RoleTrafficker,
	}
}

// newTestOrchestrator seeds a store and wires an orchestrator with recording
// fakes for alerts and the system of record.
func newTestOrchestrator(t *testing.T, tickets []models.Ticket, campaigns []models.Campaign, users []models.User) (*Orchestrator, *models.InMemoryOpsDataStore, *recordingAlerter, *recordingRecords) {
	t.Helper()
	store := models.NewInMemoryOpsDataStore()
	if err := store.ReloadAll(tickets, campaigns, users); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	alerts := &recordingAlerter{}
	records := &recordingRecords{}
	o := New(store, trafficking.NewEngine(""), observability.NewNoOpRegistry(), zaptest.NewLogger(t))
	o.Alerts = alerts
	o.Records = records
	return o, store, alerts, records
}

type shellCall struct {
	Name  string
	Start string
	End   string
}

type placementCall struct {
	CampaignID string
	Name       string
	Site       string
}

// fakeAdServer records shell and placement calls, returning shellID for
// every shell unless shellErr is set.
type fakeAdServer struct {
	shellID    string
	shellErr   error
	shells     []shellCall
	placements []placementCall
}

func (f *fakeAdServer) CreateCampaignShell(_ context.Context, name, startDate, endDate string) (string, error) {
	f.shells = append(f.shells, shellCall{Name: name, Start: startDate, End: endDate})
	if f.shellErr != nil {
		return "", f.shellErr
	}
	return f.shellID, nil
}

func (f *fakeAdServer) CreatePlacement(_ context.Context, campaignID, placementName, siteID string) (*platforms.TrackingTags, error) {
	f.placements = append(f.placements, placementCall{CampaignID: campaignID, Name: placementName, Site: siteID})
	return &platforms.TrackingTags{CampaignID: campaignID, PlacementID: "PLC-1"}, nil
}

type trackerCall struct {
	Campaign    string
	Network     string
	Site        string
	Destination string
}

// fakeTracker records attribution link requests.
type fakeTracker struct {
	calls []trackerCall
	err   error
}

func (f *fakeTracker) CreateTracker(_ context.Context, campaignName, networkName, siteID, destinationURL string) (*platforms.TrackerURLs, error) {
	f.calls = append(f.calls, trackerCall{Campaign: campaignName, Network: networkName, Site: siteID, Destination: destinationURL})
	if f.err != nil {
		return nil, f.err
	}
	return &platforms.TrackerURLs{TrackerID: "KCHV-1"}, nil
}
