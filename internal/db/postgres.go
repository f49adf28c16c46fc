package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/lib/pq" // registers the postgres driver wrapped by otelsql
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/patrickwarner/openadops/internal/models"
	"github.com/patrickwarner/openadops/internal/reference"
)

// Postgres wraps a postgres DB connection.
type Postgres struct {
	DB *sql.DB
}

// schemaSQL sets up the necessary tables if they don't exist. Text fields
// default to empty rather than NULL so rows scan directly into the models.
const schemaSQL = `CREATE TABLE IF NOT EXISTS users (
    name TEXT PRIMARY KEY,
    email TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT '',
    team TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS campaigns (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    title_id TEXT NOT NULL DEFAULT '',
    title_name TEXT NOT NULL DEFAULT '',
    brand TEXT NOT NULL DEFAULT '',
    brand_code TEXT NOT NULL DEFAULT '',
    objective TEXT NOT NULL DEFAULT '',
    targeting_geo TEXT NOT NULL DEFAULT '',
    country TEXT NOT NULL DEFAULT '',
    language TEXT NOT NULL DEFAULT '',
    geo_cluster TEXT NOT NULL DEFAULT '',
    region TEXT NOT NULL DEFAULT '',
    channel TEXT NOT NULL DEFAULT '',
    channel_mapped TEXT NOT NULL DEFAULT '',
    platform TEXT NOT NULL DEFAULT '',
    budget_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
    start_date TEXT NOT NULL DEFAULT '',
    end_date TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'Pending Launch',
    impressions_goal BIGINT NOT NULL DEFAULT 0,
    audience_tactic TEXT NOT NULL DEFAULT '',
    audience_detailed TEXT NOT NULL DEFAULT '',
    landing_page TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS tickets (
    id TEXT PRIMARY KEY,
    campaign_id TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    request_type TEXT NOT NULL DEFAULT '',
    routed_to_role TEXT NOT NULL DEFAULT '',
    eve_eligible BOOLEAN NOT NULL DEFAULT FALSE,
    urgency TEXT NOT NULL DEFAULT '',
    stage TEXT NOT NULL DEFAULT 'New',
    platform TEXT NOT NULL DEFAULT '',
    targeting_geo TEXT NOT NULL DEFAULT '',
    brand TEXT NOT NULL DEFAULT '',
    requested_by TEXT NOT NULL DEFAULT '',
    created_date TIMESTAMP NULL,
    due_date TIMESTAMP NULL,
    assignee TEXT NOT NULL DEFAULT '',
    assignee_role TEXT NOT NULL DEFAULT '',
    sla_hours INT NOT NULL DEFAULT 0,
    notes TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS qa_checks (
    id TEXT PRIMARY KEY,
    ticket_id TEXT NOT NULL,
    check_name TEXT NOT NULL,
    result TEXT NOT NULL,
    check_details TEXT NOT NULL DEFAULT '',
    checked_by TEXT NOT NULL DEFAULT '',
    checked_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Indexes for the pipeline's hot queries
CREATE INDEX IF NOT EXISTS idx_tickets_stage ON tickets (stage);
CREATE INDEX IF NOT EXISTS idx_tickets_assignee ON tickets (assignee);
CREATE INDEX IF NOT EXISTS idx_tickets_campaign_id ON tickets (campaign_id);
CREATE INDEX IF NOT EXISTS idx_tickets_due_date ON tickets (due_date);
CREATE INDEX IF NOT EXISTS idx_campaigns_status ON campaigns (status);
CREATE INDEX IF NOT EXISTS idx_qa_checks_ticket_id ON qa_checks (ticket_id);
`

// InitPostgres connects to Postgres with connection pooling configuration.
func InitPostgres(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*Postgres, error) {
	// Register the otelsql wrapper for postgres
	driverName, err := otelsql.Register("postgres",
		otelsql.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.connection_string", dsn),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	// Configure connection pooling for production use
	db.SetMaxOpenConns(maxOpenConns)       // Maximum number of open connections
	db.SetMaxIdleConns(maxIdleConns)       // Maximum number of idle connections
	db.SetConnMaxLifetime(connMaxLifetime) // Maximum lifetime of a connection
	db.SetConnMaxIdleTime(connMaxIdleTime) // Maximum idle time before closing connection

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	p := &Postgres{DB: db}
	if err := p.ensureSchema(); err != nil {
		return nil, err
	}
	if err := p.ensureUsers(); err != nil {
		return nil, err
	}
	zap.L().Info("Connected to Postgres with connection pooling",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns),
		zap.Duration("conn_max_lifetime", connMaxLifetime))
	return p, nil
}

// Close terminates the Postgres connection.
func (p *Postgres) Close() {
	if p != nil && p.DB != nil {
		if err := p.DB.Close(); err != nil {
			zap.L().Error("postgres close", zap.Error(err))
		}
	}
}

// ensureSchema creates the required tables if they do not exist.
func (p *Postgres) ensureSchema() error {
	ctx := context.Background()
	if _, err := p.DB.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// ensureUsers seeds the user roles glossary if the table is empty.
func (p *Postgres) ensureUsers() error {
	ctx := context.Background()
	var count int
	if err := p.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, u := range reference.Users {
		if _, err := p.DB.ExecContext(ctx, `INSERT INTO users (name, email, role, team) VALUES ($1,$2,$3,$4)`, u.Name, u.Email, u.Role, u.Team); err != nil {
			return fmt.Errorf("insert user %s: %w", u.Name, err)
		}
	}
	return nil
}

// LoadCampaigns retrieves all campaigns from the database.
func (p *Postgres) LoadCampaigns() ([]models.Campaign, error) {
	rows, err := p.DB.QueryContext(context.Background(), `SELECT id, name, title_id, title_name, brand, brand_code, objective, targeting_geo, country, language, geo_cluster, region, channel, channel_mapped, platform, budget_usd, start_date, end_date, status, impressions_goal, audience_tactic, audience_detailed, landing_page FROM campaigns`)
	if err != nil {
		return nil, fmt.Errorf("query campaigns: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var cs []models.Campaign
	for rows.Next() {
		var c models.Campaign
		if err := rows.Scan(&c.ID, &c.Name, &c.TitleID, &c.TitleName, &c.Brand, &c.BrandCode, &c.Objective, &c.TargetingGeo, &c.Country, &c.Language, &c.GeoCluster, &c.Region, &c.Channel, &c.ChannelMapped, &c.Platform, &c.BudgetUSD, &c.StartDate, &c.EndDate, &c.Status, &c.ImpressionsGoal, &c.AudienceTactic, &c.AudienceDetail, &c.LandingPage); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		cs = append(cs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return cs, nil
}

// LoadTickets retrieves all tickets from the database.
func (p *Postgres) LoadTickets() ([]models.Ticket, error) {
	rows, err := p.DB.QueryContext(context.Background(), `SELECT id, campaign_id, title, request_type, routed_to_role, eve_eligible, urgency, stage, platform, targeting_geo, brand, requested_by, created_date, due_date, assignee, assignee_role, sla_hours, notes FROM tickets`)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ts []models.Ticket
	for rows.Next() {
		var t models.Ticket
		var created, due sql.NullTime
		if err := rows.Scan(&t.ID, &t.CampaignID, &t.Title, &t.RequestType, &t.RoutedToRole, &t.EVEEligible, &t.Urgency, &t.Stage, &t.Platform, &t.TargetingGeo, &t.Brand, &t.RequestedBy, &created, &due, &t.Assignee, &t.AssigneeRole, &t.SLAHours, &t.Notes); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		if created.Valid {
			t.CreatedDate = created.Time
		}
		if due.Valid {
			t.DueDate = due.Time
		}
		ts = append(ts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return ts, nil
}

// LoadUsers retrieves the user roles glossary from the database.
func (p *Postgres) LoadUsers() ([]models.User, error) {
	rows, err := p.DB.QueryContext(context.Background(), `SELECT name, email, role, team FROM users`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var us []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Name, &u.Email, &u.Role, &u.Team); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		us = append(us, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return us, nil
}

// LoadQAChecks retrieves the QA check log from the database.
func (p *Postgres) LoadQAChecks() ([]models.QACheck, error) {
	rows, err := p.DB.QueryContext(context.Background(), `SELECT id, ticket_id, check_name, result, check_details, checked_by, checked_at FROM qa_checks ORDER BY checked_at`)
	if err != nil {
		return nil, fmt.Errorf("query qa checks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var qs []models.QACheck
	for rows.Next() {
		var q models.QACheck
		if err := rows.Scan(&q.ID, &q.TicketID, &q.Check, &q.Result, &q.Details, &q.CheckedBy, &q.CheckedAt); err != nil {
			return nil, fmt.Errorf("scan qa check: %w", err)
		}
		qs = append(qs, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return qs, nil
}

// InsertCampaign inserts a new campaign record.
func (p *Postgres) InsertCampaign(c models.Campaign) error {
	_, err := p.DB.ExecContext(context.Background(), `INSERT INTO campaigns (
        id, name, title_id, title_name, brand, brand_code, objective,
        targeting_geo, country, language, geo_cluster, region, channel,
        channel_mapped, platform, budget_usd, start_date, end_date, status,
        impressions_goal, audience_tactic, audience_detailed, landing_page) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23
    )`,
		c.ID, c.Name, c.TitleID, c.TitleName, c.Brand, c.BrandCode, c.Objective,
		c.TargetingGeo, c.Country, c.Language, c.GeoCluster, c.Region, c.Channel,
		c.ChannelMapped, c.Platform, c.BudgetUSD, c.StartDate, c.EndDate, c.Status,
		c.ImpressionsGoal, c.AudienceTactic, c.AudienceDetail, c.LandingPage)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

// UpdateCampaign updates an existing campaign.
func (p *Postgres) UpdateCampaign(c models.Campaign) error {
	_, err := p.DB.ExecContext(context.Background(), `UPDATE campaigns SET
        name=$1, title_id=$2, title_name=$3, brand=$4, brand_code=$5,
        objective=$6, targeting_geo=$7, country=$8, language=$9, geo_cluster=$10,
        region=$11, channel=$12, channel_mapped=$13, platform=$14, budget_usd=$15,
        start_date=$16, end_date=$17, status=$18, impressions_goal=$19,
        audience_tactic=$20, audience_detailed=$21, landing_page=$22 WHERE id=$23`,
		c.Name, c.TitleID, c.TitleName, c.Brand, c.BrandCode, c.Objective,
		c.TargetingGeo, c.Country, c.Language, c.GeoCluster, c.Region, c.Channel,
		c.ChannelMapped, c.Platform, c.BudgetUSD, c.StartDate, c.EndDate, c.Status,
		c.ImpressionsGoal, c.AudienceTactic, c.AudienceDetail, c.LandingPage, c.ID)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return nil
}

// DeleteCampaign removes a campaign by ID, first deleting related entities.
func (p *Postgres) DeleteCampaign(id string) error {
	// First delete QA checks for tickets on this campaign
	_, err := p.DB.ExecContext(context.Background(), `DELETE FROM qa_checks WHERE ticket_id IN (SELECT id FROM tickets WHERE campaign_id=$1)`, id)
	if err != nil {
		return fmt.Errorf("delete qa checks for campaign: %w", err)
	}

	// Then delete tickets referencing this campaign
	_, err = p.DB.ExecContext(context.Background(), `DELETE FROM tickets WHERE campaign_id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete tickets for campaign: %w", err)
	}

	// Finally delete the campaign
	_, err = p.DB.ExecContext(context.Background(), `DELETE FROM campaigns WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	return nil
}

// InsertTicket inserts a new ticket record.
func (p *Postgres) InsertTicket(t models.Ticket) error {
	_, err := p.DB.ExecContext(context.Background(), `INSERT INTO tickets (
        id, campaign_id, title, request_type, routed_to_role, eve_eligible,
        urgency, stage, platform, targeting_geo, brand, requested_by,
        created_date, due_date, assignee, assignee_role, sla_hours, notes) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18
    )`,
		t.ID, t.CampaignID, t.Title, t.RequestType, t.RoutedToRole, t.EVEEligible,
		t.Urgency, t.Stage, t.Platform, t.TargetingGeo, t.Brand, t.RequestedBy,
		nullTime(t.CreatedDate), nullTime(t.DueDate), t.Assignee, t.AssigneeRole, t.SLAHours, t.Notes)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// UpdateTicket updates an existing ticket.
func (p *Postgres) UpdateTicket(t models.Ticket) error {
	_, err := p.DB.ExecContext(context.Background(), `UPDATE tickets SET
        campaign_id=$1, title=$2, request_type=$3, routed_to_role=$4,
        eve_eligible=$5, urgency=$6, stage=$7, platform=$8, targeting_geo=$9,
        brand=$10, requested_by=$11, created_date=$12, due_date=$13,
        assignee=$14, assignee_role=$15, sla_hours=$16, notes=$17 WHERE id=$18`,
		t.CampaignID, t.Title, t.RequestType, t.RoutedToRole, t.EVEEligible,
		t.Urgency, t.Stage, t.Platform, t.TargetingGeo, t.Brand, t.RequestedBy,
		nullTime(t.CreatedDate), nullTime(t.DueDate), t.Assignee, t.AssigneeRole,
		t.SLAHours, t.Notes, t.ID)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	return nil
}

// UpdateTicketStage moves a ticket to a new stage. Notes are replaced only
// when non-empty so a stage move alone keeps the existing annotation.
func (p *Postgres) UpdateTicketStage(id, stage, notes string) error {
	_, err := p.DB.ExecContext(context.Background(), `UPDATE tickets SET stage=$1, notes = CASE WHEN $2 = '' THEN notes ELSE $2 END WHERE id=$3`, stage, notes, id)
	if err != nil {
		return fmt.Errorf("update ticket stage: %w", err)
	}
	return nil
}

// UpdateTicketAssignee assigns a ticket to a user.
func (p *Postgres) UpdateTicketAssignee(id, assignee, role string) error {
	_, err := p.DB.ExecContext(context.Background(), `UPDATE tickets SET assignee=$1, assignee_role=$2 WHERE id=$3`, assignee, role, id)
	if err != nil {
		return fmt.Errorf("update ticket assignee: %w", err)
	}
	return nil
}

// DeleteTicket removes a ticket by ID, first deleting its QA checks.
func (p *Postgres) DeleteTicket(id string) error {
	_, err := p.DB.ExecContext(context.Background(), `DELETE FROM qa_checks WHERE ticket_id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete qa checks for ticket: %w", err)
	}

	_, err = p.DB.ExecContext(context.Background(), `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	return nil
}

// InsertUser inserts a user record.
func (p *Postgres) InsertUser(u models.User) error {
	_, err := p.DB.ExecContext(context.Background(), `INSERT INTO users (name, email, role, team) VALUES ($1,$2,$3,$4)`, u.Name, u.Email, u.Role, u.Team)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// InsertQACheck appends a QA check record to the log.
func (p *Postgres) InsertQACheck(q models.QACheck) error {
	_, err := p.DB.ExecContext(context.Background(), `INSERT INTO qa_checks (id, ticket_id, check_name, result, check_details, checked_by, checked_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		q.ID, q.TicketID, q.Check, q.Result, q.Details, q.CheckedBy, q.CheckedAt)
	if err != nil {
		return fmt.Errorf("insert qa check: %w", err)
	}
	return nil
}

// nullTime converts a zero time to NULL for storage.
func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
