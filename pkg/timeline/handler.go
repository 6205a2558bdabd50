package timeline

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/klokku/timeline/internal/rest"
	"github.com/klokku/timeline/pkg/lane"
	"github.com/klokku/timeline/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	timeline *Service
	renderer *CsvTimelineRendererImpl
}

type EventDTO struct {
	UID        string    `json:"uid"`
	Name       string    `json:"name"`
	Start      lane.Date `json:"start"`
	End        lane.Date `json:"end"`
	Notes      string    `json:"notes"`
	Source     string    `json:"source,omitempty"`
	ExternalId string    `json:"externalId,omitempty"`
}

type TimelineDTO struct {
	From      lane.Date      `json:"from"`
	To        lane.Date      `json:"to"`
	Start     lane.Date      `json:"start"`
	End       lane.Date      `json:"end"`
	TotalDays int            `json:"totalDays"`
	Depth     int            `json:"depth"`
	Lanes     []LaneDTO      `json:"lanes"`
	Scale     []ScaleMarkDTO `json:"scale"`
}

type LaneDTO struct {
	Index int            `json:"index"`
	Items []PlacementDTO `json:"items"`
}

type PlacementDTO struct {
	Event    EventDTO `json:"event"`
	Offset   int      `json:"offset"`
	Duration int      `json:"duration"`
}

type ScaleMarkDTO struct {
	Date      lane.Date `json:"date"`
	Month     string    `json:"month"`
	DayOfWeek string    `json:"dayOfWeek"`
	Day       string    `json:"day"`
	Offset    int       `json:"offset"`
}

func NewHandler(s *Service) *Handler {
	return &Handler{timeline: s, renderer: NewCsvTimelineRenderer()}
}

// GetTimeline godoc
// @Summary Get events of a date range arranged in lanes
// @Tags Timeline
// @Produce json,text/csv
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day (YYYY-MM-DD)"
// @Success 200 {object} TimelineDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/timeline [get]
// @Security XUserId
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}
	log.Debugf("Getting timeline %s..%s", from, to)

	t, err := h.timeline.GetTimeline(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/csv") {
		csvTimeline, err := h.renderer.RenderTimeline(t)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=timeline.csv")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(csvTimeline)); err != nil {
			log.Errorf("failed to write timeline csv: %v", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, timelineToDTO(t))
}

// GetEvents godoc
// @Summary List events overlapping a date range
// @Tags Timeline
// @Produce json
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day (YYYY-MM-DD)"
// @Success 200 {array} EventDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/timeline/event [get]
// @Security XUserId
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}

	events, err := h.timeline.GetEvents(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsToDTOs(events))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventUid, ok := parseEventUid(w, r)
	if !ok {
		return
	}

	event, err := h.timeline.GetEvent(r.Context(), eventUid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventToDTO(event))
}

// CreateEvent godoc
// @Summary Create a timeline event
// @Tags Timeline
// @Accept json
// @Produce json
// @Param event body EventDTO true "Event"
// @Success 201 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/timeline/event [post]
// @Security XUserId
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var eventDTO EventDTO
	if err := json.NewDecoder(r.Body).Decode(&eventDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	event := dtoToEvent(eventDTO)
	event.Source = SourceManual
	event.ExternalId = ""
	created, err := h.timeline.AddEvent(r.Context(), event)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, eventToDTO(created))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventUid, ok := parseEventUid(w, r)
	if !ok {
		return
	}
	var eventDTO EventDTO
	if err := json.NewDecoder(r.Body).Decode(&eventDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	event := dtoToEvent(eventDTO)
	event.UID = eventUid
	event.Source = ""
	modified, err := h.timeline.ModifyEvent(r.Context(), event)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventToDTO(modified))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventUid, ok := parseEventUid(w, r)
	if !ok {
		return
	}

	if err := h.timeline.DeleteEvent(r.Context(), eventUid); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportEvents godoc
// @Summary Import events from a YAML or CSV event file
// @Tags Timeline
// @Accept application/yaml,text/csv
// @Produce json
// @Success 201 {array} EventDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 415 {object} rest.ErrorResponse
// @Router /api/timeline/event/import [post]
// @Security XUserId
func (h *Handler) ImportEvents(w http.ResponseWriter, r *http.Request) {
	format, err := FormatFromContentType(r.Header.Get("Content-Type"))
	if err != nil {
		rest.WriteError(w, http.StatusUnsupportedMediaType, "Unsupported event file format",
			"Content-Type must be application/yaml or text/csv")
		return
	}

	events, err := ParseEventFile(r.Body, format)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event file", err.Error())
		return
	}

	imported, err := h.timeline.ImportEvents(r.Context(), events)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	log.Debugf("Imported %d events from %s file", len(imported), format)
	writeJSON(w, http.StatusCreated, eventsToDTOs(imported))
}

func parseRange(w http.ResponseWriter, r *http.Request) (lane.Date, lane.Date, bool) {
	from, err := lane.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid from (date) format", "'from' must be in YYYY-MM-DD format")
		return lane.Date{}, lane.Date{}, false
	}
	to, err := lane.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid to (date) format", "'to' must be in YYYY-MM-DD format")
		return lane.Date{}, lane.Date{}, false
	}
	return from, to, true
}

func parseEventUid(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	eventUid, err := uuid.Parse(mux.Vars(r)["eventUid"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event uid", err.Error())
		return uuid.Nil, false
	}
	return eventUid, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case IsClientError(err):
		rest.WriteError(w, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, "Event not found", "")
	case errors.Is(err, user.ErrNoUser):
		w.WriteHeader(http.StatusForbidden)
	default:
		log.Errorf("timeline request failed: %v", err)
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

func eventToDTO(e Event) EventDTO {
	return EventDTO{
		UID:        e.UID.String(),
		Name:       e.Name,
		Start:      e.Start,
		End:        e.End,
		Notes:      e.Notes,
		Source:     string(e.Source),
		ExternalId: e.ExternalId,
	}
}

func eventsToDTOs(events []Event) []EventDTO {
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}
	return dtos
}

func dtoToEvent(dto EventDTO) Event {
	uid, _ := uuid.Parse(dto.UID)
	return Event{
		UID:        uid,
		Name:       dto.Name,
		Start:      dto.Start,
		End:        dto.End,
		Notes:      dto.Notes,
		Source:     Source(dto.Source),
		ExternalId: dto.ExternalId,
	}
}

func timelineToDTO(t Timeline) TimelineDTO {
	lanes := make([]LaneDTO, 0, len(t.Lanes))
	for _, l := range t.Lanes {
		items := make([]PlacementDTO, 0, len(l.Items))
		for _, item := range l.Items {
			items = append(items, PlacementDTO{
				Event:    eventToDTO(item.Event),
				Offset:   item.Offset,
				Duration: item.Duration,
			})
		}
		lanes = append(lanes, LaneDTO{Index: l.Index, Items: items})
	}
	scale := make([]ScaleMarkDTO, 0, len(t.Scale))
	for _, m := range t.Scale {
		scale = append(scale, ScaleMarkDTO(m))
	}
	return TimelineDTO{
		From:      t.From,
		To:        t.To,
		Start:     t.Start,
		End:       t.End,
		TotalDays: t.TotalDays,
		Depth:     t.Depth,
		Lanes:     lanes,
		Scale:     scale,
	}
}
