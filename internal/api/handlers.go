package api

import (
	"net/http"
	"strconv"

	"github.com/dmitrymomot/dispatch/pkg/notify"
)

const (
	defaultRecent = 20
	maxRecent     = 500
)

// Accepted is the body of every enqueue response.
type Accepted struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type stockAlertBody struct {
	Items      []notify.StockItem `json:"items" validate:"required,min=1,dive"`
	Recipients []string           `json:"recipients" validate:"omitempty,dive,email"`
}

type productionAlertBody struct {
	OrderRef   string                     `json:"order_ref" validate:"required"`
	Type       notify.ProductionAlertType `json:"type" validate:"required,oneof=delay error info"`
	Message    string                     `json:"message" validate:"required"`
	Recipients []string                   `json:"recipients" validate:"omitempty,dive,email"`
}

type systemAlertBody struct {
	Type        string          `json:"type" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Severity    notify.Severity `json:"severity" validate:"required,oneof=info warning critical"`
	Recipients  []string        `json:"recipients" validate:"omitempty,dive,email"`
}

type bulkBody struct {
	Requests []notify.Request `json:"requests" validate:"required,min=1"`
}

func accepted(w http.ResponseWriter, id string) error {
	return writeJSON(w, http.StatusAccepted, Accepted{ID: id, Status: "queued"})
}

func (s *server) stockAlert(w http.ResponseWriter, r *http.Request) error {
	if s.alerts == nil {
		return unavailable("alerts")
	}
	var body stockAlertBody
	if err := decode(w, r, &body); err != nil {
		return err
	}
	id, err := s.alerts.StockAlert(r.Context(), body.Items, body.Recipients...)
	if err != nil {
		return err
	}
	return accepted(w, id)
}

func (s *server) productionAlert(w http.ResponseWriter, r *http.Request) error {
	if s.alerts == nil {
		return unavailable("alerts")
	}
	var body productionAlertBody
	if err := decode(w, r, &body); err != nil {
		return err
	}
	id, err := s.alerts.ProductionAlert(r.Context(), body.OrderRef, body.Type, body.Message, body.Recipients...)
	if err != nil {
		return err
	}
	return accepted(w, id)
}

func (s *server) systemAlert(w http.ResponseWriter, r *http.Request) error {
	if s.alerts == nil {
		return unavailable("alerts")
	}
	var body systemAlertBody
	if err := decode(w, r, &body); err != nil {
		return err
	}
	id, err := s.alerts.SystemAlert(r.Context(), body.Type, body.Description, body.Severity, body.Recipients...)
	if err != nil {
		return err
	}
	return accepted(w, id)
}

func (s *server) enqueue(w http.ResponseWriter, r *http.Request) error {
	if s.queue == nil {
		return unavailable("queue")
	}
	var req notify.Request
	if err := decode(w, r, &req); err != nil {
		return err
	}
	if err := check(validate.Var(req.Recipients, "required,min=1,dive,email")); err != nil {
		return err
	}
	id, err := s.queue.Enqueue(r.Context(), req)
	if err != nil {
		return err
	}
	return accepted(w, id)
}

func (s *server) sendBulk(w http.ResponseWriter, r *http.Request) error {
	if s.bulk == nil {
		return unavailable("bulk")
	}
	var body bulkBody
	if err := decode(w, r, &body); err != nil {
		return err
	}
	if s.cfg.MaxBulk > 0 && len(body.Requests) > s.cfg.MaxBulk {
		return unprocessable("too many requests in one batch, limit is "+strconv.Itoa(s.cfg.MaxBulk), nil, nil)
	}
	return writeJSON(w, http.StatusOK, s.bulk.Send(r.Context(), body.Requests))
}

type recentResponse struct {
	Deliveries []notify.Delivery `json:"deliveries"`
}

func (s *server) recent(w http.ResponseWriter, r *http.Request) error {
	if s.history == nil {
		return unavailable("history")
	}
	n := defaultRecent
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return badRequest("limit must be a positive integer", err)
		}
		n = min(v, maxRecent)
	}
	list, err := s.history.Recent(r.Context(), n)
	if err != nil {
		return err
	}
	if list == nil {
		list = []notify.Delivery{}
	}
	return writeJSON(w, http.StatusOK, recentResponse{Deliveries: list})
}

func (s *server) queueStats(w http.ResponseWriter, _ *http.Request) error {
	if s.stats == nil {
		return unavailable("queue")
	}
	return writeJSON(w, http.StatusOK, s.stats.Stats())
}
