package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/evcraddock/gatepass/internal/lobby"
	"github.com/evcraddock/gatepass/internal/notify"
	"github.com/evcraddock/gatepass/internal/visit"
)

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	apiJSON(w, map[string]string{"error": msg}, code)
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// filterFromQuery reads start, end, status, employee and visit_type.
func filterFromQuery(r *http.Request) (visit.ReportFilter, error) {
	q := r.URL.Query()
	f := visit.ReportFilter{
		Status:   q.Get("status"),
		Employee: q.Get("employee"),
		Type:     q.Get("visit_type"),
	}
	var err error
	if s := q.Get("start"); s != "" {
		if f.Start, err = time.ParseInLocation("2006-01-02", s, time.Local); err != nil {
			return f, err
		}
	}
	if s := q.Get("end"); s != "" {
		if f.End, err = time.ParseInLocation("2006-01-02", s, time.Local); err != nil {
			return f, err
		}
	}
	return f, nil
}

type visitorsResponse struct {
	Visitors  []*visit.Visit `json:"visitors"`
	Stats     visit.Stats    `json:"stats"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}

func (s *Server) handleVisitors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	f, err := filterFromQuery(r)
	if err != nil {
		apiError(w, "invalid date (use YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	visits := f.Apply(s.cache.List())
	if visits == nil {
		visits = []*visit.Visit{}
	}
	resp := visitorsResponse{Visitors: visits, Stats: visit.ComputeStats(visits)}
	if updated := s.cache.Updated(); !updated.IsZero() {
		resp.UpdatedAt = &updated
	}
	apiJSON(w, resp, http.StatusOK)
}

type analyticsResponse struct {
	visit.Analytics
	TopHosts    []visit.Count `json:"topHosts"`
	TopPurposes []visit.Count `json:"topPurposes"`
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	f, err := filterFromQuery(r)
	if err != nil {
		apiError(w, "invalid date (use YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	visits := f.Apply(s.cache.List())
	apiJSON(w, analyticsResponse{
		Analytics:   visit.ComputeAnalytics(visits),
		TopHosts:    visit.TopHosts(visits, 5),
		TopPurposes: visit.TopPurposes(visits, 5),
	}, http.StatusOK)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	f, err := filterFromQuery(r)
	if err != nil {
		apiError(w, "invalid date (use YYYY-MM-DD)", http.StatusBadRequest)
		return
	}
	apiJSON(w, visit.BuildReport(f.Apply(s.cache.List())), http.StatusOK)
}

type notificationsResponse struct {
	Notifications []notify.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
	Badge         string                `json:"badge"`
	LandingPath   string                `json:"landing_path,omitempty"`
}

func (s *Server) notificationsResponse(ns []notify.Notification) notificationsResponse {
	if ns == nil {
		ns = []notify.Notification{}
	}
	unread := notify.UnreadCount(ns)
	return notificationsResponse{
		Notifications: ns,
		Unread:        unread,
		Badge:         notify.Badge(unread),
		LandingPath:   notify.LandingPath(s.center.User()),
	}
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	apiJSON(w, s.notificationsResponse(s.center.List(s.cache.List())), http.StatusOK)
}

// handleNotificationRoute routes /api/notifications/{id}/read and
// /api/notifications/read-all.
func (s *Server) handleNotificationRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/notifications/")

	if path == "read-all" {
		ns, err := s.center.MarkAllRead(s.cache.List())
		if err != nil {
			s.logger.Error().Err(err).Msg("marking all notifications read")
			apiError(w, "failed to mark notifications read", http.StatusInternalServerError)
			return
		}
		apiJSON(w, s.notificationsResponse(ns), http.StatusOK)
		return
	}

	id, ok := strings.CutSuffix(path, "/read")
	if !ok || id == "" || strings.Contains(id, "/") {
		apiError(w, "not found", http.StatusNotFound)
		return
	}
	if err := s.center.MarkRead(id); err != nil {
		s.logger.Error().Err(err).Str("id", id).Msg("marking notification read")
		apiError(w, "failed to mark notification read", http.StatusInternalServerError)
		return
	}
	apiJSON(w, s.notificationsResponse(s.center.List(s.cache.List())), http.StatusOK)
}

type bulkRequest struct {
	IDs         []int64 `json:"ids"`
	AllEligible bool    `json:"all_eligible"`
}

type bulkResponse struct {
	Action    lobby.Action     `json:"action"`
	Succeeded []int64          `json:"succeeded"`
	Failed    map[int64]string `json:"failed"`
}

// handleBulk serves POST /api/bulk/{action}.
func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.bulk == nil {
		apiError(w, "bulk actions are only available to lobby attendants", http.StatusForbidden)
		return
	}

	action, err := lobby.ParseAction(strings.TrimPrefix(r.URL.Path, "/api/bulk/"))
	if err != nil {
		apiError(w, err.Error(), http.StatusNotFound)
		return
	}

	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	ids := req.IDs
	if req.AllEligible {
		ids = lobby.EligibleIDs(action, s.cache.List(), s.now())
	}
	if len(ids) == 0 {
		apiError(w, "no visits selected", http.StatusBadRequest)
		return
	}

	res, err := s.bulk.Run(r.Context(), action, ids)
	if err != nil {
		s.logger.Warn().Err(err).Msg("bulk action interrupted")
	}

	resp := bulkResponse{Action: action, Succeeded: res.Succeeded, Failed: make(map[int64]string, len(res.Failed))}
	if resp.Succeeded == nil {
		resp.Succeeded = []int64{}
	}
	for id, ferr := range res.Failed {
		resp.Failed[id] = ferr.Error()
	}
	apiJSON(w, resp, http.StatusOK)
}
