package google

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/klokku/timeline/internal/rest"
	"github.com/klokku/timeline/internal/utils"
	"github.com/klokku/timeline/pkg/lane"
	"github.com/klokku/timeline/pkg/timeline"
	"github.com/klokku/timeline/pkg/user"
	log "github.com/sirupsen/logrus"
)

// defaultImportDays is the length of the imported range when the request does
// not name one.
const defaultImportDays = 90

type CalendarItemDto struct {
	Id      string `json:"id"`
	Summary string `json:"summary"`
}

type ImportResultDto struct {
	Imported int `json:"imported"`
}

type Handler struct {
	service  Service
	importer *Importer
	clock    utils.Clock
}

func NewHandler(s Service, importer *Importer, clock utils.Clock) *Handler {
	return &Handler{service: s, importer: importer, clock: clock}
}

func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	calendars, err := h.service.ListCalendars(r.Context())
	if err != nil {
		writeGoogleError(w, err)
		return
	}

	calendarItems := make([]CalendarItemDto, 0, len(calendars))
	for _, c := range calendars {
		calendarItems = append(calendarItems, toCalendarItemDto(c))
	}
	writeJSON(w, http.StatusOK, calendarItems)
}

// ImportFromGoogle godoc
// @Summary Import events of a Google calendar into the timeline
// @Tags Timeline
// @Produce json
// @Param calendarId query string true "Google calendar id"
// @Param from query string false "First day (YYYY-MM-DD), defaults to today"
// @Param to query string false "Last day (YYYY-MM-DD), defaults to 90 days after from"
// @Success 200 {object} ImportResultDto
// @Failure 400 {object} rest.ErrorResponse
// @Failure 403 {string} string "Not authenticated with Google"
// @Router /api/timeline/import-from-google [post]
// @Security XUserId
func (h *Handler) ImportFromGoogle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	calendarId := query.Get("calendarId")
	if calendarId == "" {
		rest.WriteError(w, http.StatusBadRequest, "calendarId is required", "")
		return
	}

	from := lane.DateOf(h.clock.Now())
	if s := query.Get("from"); s != "" {
		parsed, err := lane.ParseDate(s)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid from (date) format", "'from' must be in YYYY-MM-DD format")
			return
		}
		from = parsed
	}
	to := from.AddDays(defaultImportDays - 1)
	if s := query.Get("to"); s != "" {
		parsed, err := lane.ParseDate(s)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid to (date) format", "'to' must be in YYYY-MM-DD format")
			return
		}
		to = parsed
	}
	imported, err := h.importer.Import(r.Context(), calendarId, from, to)
	if err != nil {
		writeGoogleError(w, err)
		return
	}
	log.Debugf("Imported %d events from Google calendar %s", len(imported), calendarId)
	writeJSON(w, http.StatusOK, ImportResultDto{Imported: len(imported)})
}

func writeGoogleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, user.ErrNoUser):
		w.WriteHeader(http.StatusForbidden)
	case timeline.IsClientError(err):
		rest.WriteError(w, http.StatusBadRequest, "Invalid request", err.Error())
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func toCalendarItemDto(ci CalendarItem) CalendarItemDto {
	return CalendarItemDto{
		Id:      ci.ID,
		Summary: ci.Summary,
	}
}
