package http

import (
	"log/slog"
	"net/http"

	"tradebook/internal/core"
	applog "tradebook/internal/log"
)

// handleJournal serves the monthly journal view: the summary, per-day
// rollups, setups and watchlist pairs for one month.
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	month, err := parseMonthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if view, found := s.journalCache.Get(month); found {
		slog.DebugContext(r.Context(), "Journal cache hit", "month", month)
		writeJSON(w, http.StatusOK, view)
		return
	}

	view, err := s.svc.MonthlyJournal(r.Context(), month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.journalCache.Set(month, view)
	writeJSON(w, http.StatusOK, view)
}

// handleCalendarGrid serves the calendar grid for the month containing
// the date parameter, plus the mobile day card for that exact date.
func (s *Server) handleCalendarGrid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	reference, err := parseDateParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := core.FormatISODate(reference)
	if view, found := s.calendarCache.Get(key); found {
		slog.DebugContext(r.Context(), "Calendar cache hit", "date", key)
		writeJSON(w, http.StatusOK, view)
		return
	}

	view, err := s.svc.Calendar(r.Context(), reference)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.calendarCache.Set(key, view)
	writeJSON(w, http.StatusOK, view)
}

type addTradeRequest struct {
	Date        string                 `json:"date"`
	Pair        string                 `json:"pair"`
	Net         float64                `json:"net"`
	Trades      int                    `json:"trades"`
	RR          *float64               `json:"rr,omitempty"`
	Direction   string                 `json:"direction"`
	Session     string                 `json:"session,omitempty"`
	ClosedBy    string                 `json:"closedBy"`
	RiskPercent *float64               `json:"riskPercent,omitempty"`
	Emotion     string                 `json:"emotion,omitempty"`
	WithPlan    bool                   `json:"withPlan"`
	Description string                 `json:"description,omitempty"`
	SetupID     string                 `json:"setupId,omitempty"`
	Attachments []core.TradeAttachment `json:"attachments,omitempty"`
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req addTradeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec := core.TradeRecord{
		Date:        sanitizeInput(req.Date),
		Pair:        sanitizeInput(req.Pair),
		Net:         req.Net,
		Trades:      req.Trades,
		RR:          req.RR,
		Direction:   core.Direction(sanitizeInput(req.Direction)),
		Session:     sanitizeInput(req.Session),
		ClosedBy:    core.CloseReason(sanitizeInput(req.ClosedBy)),
		RiskPercent: req.RiskPercent,
		Emotion:     sanitizeInput(req.Emotion),
		WithPlan:    req.WithPlan,
		Description: sanitizeInput(req.Description),
		SetupID:     sanitizeInput(req.SetupID),
		Attachments: req.Attachments,
	}

	created, err := s.svc.AddTrade(r.Context(), rec)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogTradeRecorded(r.Context(), created.ID, created.Date, created.Pair, created.Net, created.Trades)

	s.invalidateMonth(created.Month)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleTradeByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	id, err := pathID(r, "/api/trades/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.svc.GetTrade(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
