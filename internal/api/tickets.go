package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/patrickwarner/openadops/internal/middleware"
	"github.com/patrickwarner/openadops/internal/models"
	"github.com/patrickwarner/openadops/internal/reference"
)

// helper function to write JSON response
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// ===== Tickets =====

func (s *Server) ListTickets(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "data store unavailable", http.StatusInternalServerError)
		return
	}
	if stage := r.URL.Query().Get("stage"); stage != "" {
		writeJSON(w, s.Store.TicketsByStage(stage))
		return
	}
	writeJSON(w, s.Store.GetAllTickets())
}

func (s *Server) GetTicketHandler(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "data store unavailable", http.StatusInternalServerError)
		return
	}
	id := mux.Vars(r)["id"]
	t := s.Store.GetTicket(id)
	if t == nil {
		http.Error(w, "ticket not found", http.StatusNotFound)
		return
	}
	writeJSON(w, t)
}

func (s *Server) CreateTicket(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "data store unavailable", http.StatusInternalServerError)
		return
	}
	var t models.Ticket
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if t.RequestType == "" {
		http.Error(w, "request_type is required", http.StatusBadRequest)
		return
	}

	// Fill intake defaults; the reference tables are authoritative for
	// routing and SLA, not the caller.
	if t.ID == "" {
		u := uuid.New()
		t.ID = fmt.Sprintf("TKT-%X", u[:4])
	}
	if t.Stage == "" {
		t.Stage = models.StageNew
	}
	if t.Urgency == "" {
		t.Urgency = models.UrgencyMedium
	}
	if t.CreatedDate.IsZero() {
		t.CreatedDate = time.Now().UTC()
	}
	t.RoutedToRole = reference.RoleFor(t.RequestType)
	if tt := reference.TicketTypeByName(t.RequestType); tt != nil {
		t.EVEEligible = tt.EVEEligible
	}
	if t.SLAHours == 0 {
		t.SLAHours = reference.SLAHoursFor(t.RequestType, t.Urgency)
	}
	if t.DueDate.IsZero() {
		t.DueDate = t.CreatedDate.Add(time.Duration(t.SLAHours) * time.Hour)
	}

	logger := middleware.LoggerFromRequest(r, s.Logger)

	// First persist to PostgreSQL so the system of record rejects bad rows
	if s.PG != nil {
		if err := s.PG.InsertTicket(t); err != nil {
			logger.Error("insert ticket to postgres", zap.Error(err))
			http.Error(w, "failed to persist ticket", http.StatusInternalServerError)
			return
		}
	}

	// Then insert into data store
	if err := s.Store.InsertTicket(&t); err != nil {
		logger.Error("insert ticket to data store", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.notifyUpdate("ticket", "create", t.ID)
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, t)
}

// AssignRequest is the body for POST /api/tickets/{id}/assign.
type AssignRequest struct {
	Assignee string `json:"assignee"`
	Role     string `json:"role"`
}

func (s *Server) AssignTicket(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "data store unavailable", http.StatusInternalServerError)
		return
	}
	id := mux.Vars(r)["id"]
	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Assignee == "" {
		http.Error(w, "assignee is required", http.StatusBadRequest)
		return
	}

	t := s.Store.GetTicket(id)
	if t == nil {
		http.Error(w, "ticket not found", http.StatusNotFound)
		return
	}

	role := req.Role
	if role == "" {
		if u := s.Store.GetUser(req.Assignee); u != nil {
			role = u.Role
		} else {
			role = reference.RoleFor(t.RequestType)
		}
	}

	logger := middleware.LoggerFromRequest(r, s.Logger)

	// Update in data store
	if err := s.Store.UpdateTicketAssignee(id, req.Assignee, role); err != nil {
		if err == models.ErrNotFound {
			http.Error(w, "ticket not found", http.StatusNotFound)
			return
		}
		logger.Error("assign ticket in data store", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Also update in PostgreSQL
	if s.PG != nil {
		if err := s.PG.UpdateTicketAssignee(id, req.Assignee, role); err != nil {
			logger.Error("assign ticket in postgres", zap.Error(err))
			// Don't fail the request, data store is the source of truth
		}
	}

	s.Metrics.IncrementTicketsAssigned()
	s.notifyUpdate("ticket", "assign", id)
	writeJSON(w, s.Store.GetTicket(id))
}

func (s *Server) TicketQAChecks(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "data store unavailable", http.StatusInternalServerError)
		return
	}
	id := mux.Vars(r)["id"]
	if s.Store.GetTicket(id) == nil {
		http.Error(w, "ticket not found", http.StatusNotFound)
		return
	}
	rows := s.Store.QAChecksForTicket(id)
	if rows == nil {
		rows = []models.QACheck{}
	}
	writeJSON(w, rows)
}
