package timeline

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/klokku/timeline/internal/event_bus"
	"github.com/klokku/timeline/internal/rest"
	"github.com/klokku/timeline/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withUser is a middleware that puts the user in the request context
func withUser(u user.User, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(user.WithUser(r.Context(), u)))
	})
}

func setupHandlerTest(t *testing.T) http.Handler {
	t.Helper()
	service := NewService(NewRepositoryStub(), event_bus.NewEventBus(), testTimelineConfig)
	handler := NewHandler(service)

	router := mux.NewRouter()
	router.HandleFunc("/api/timeline", handler.GetTimeline).Methods("GET")
	router.HandleFunc("/api/timeline/event", handler.GetEvents).Methods("GET")
	router.HandleFunc("/api/timeline/event", handler.CreateEvent).Methods("POST")
	router.HandleFunc("/api/timeline/event/import", handler.ImportEvents).Methods("POST")
	router.HandleFunc("/api/timeline/event/{eventUid}", handler.GetEvent).Methods("GET")
	router.HandleFunc("/api/timeline/event/{eventUid}", handler.UpdateEvent).Methods("PUT")
	router.HandleFunc("/api/timeline/event/{eventUid}", handler.DeleteEvent).Methods("DELETE")
	return withUser(user.User{Id: 1, Uid: "user-1"}, router)
}

func doRequest(t *testing.T, h http.Handler, method, url string, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createEvent(t *testing.T, h http.Handler, dto EventDTO) EventDTO {
	t.Helper()
	body, err := json.Marshal(dto)
	require.NoError(t, err)
	w := doRequest(t, h, http.MethodPost, "/api/timeline/event", string(body), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created EventDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	return created
}

func TestHandler_CreateEvent(t *testing.T) {
	t.Run("should create event", func(t *testing.T) {
		h := setupHandlerTest(t)

		created := createEvent(t, h, EventDTO{Name: "Kickoff", Start: june(20), End: june(21), Notes: "n"})

		assert.NotEmpty(t, created.UID)
		assert.Equal(t, "Kickoff", created.Name)
		assert.Equal(t, june(20), created.Start)
		assert.Equal(t, "manual", created.Source)
	})

	t.Run("should reject inverted range", func(t *testing.T) {
		h := setupHandlerTest(t)

		w := doRequest(t, h, http.MethodPost, "/api/timeline/event",
			`{"name":"Bad","start":"2024-06-21","end":"2024-06-20"}`, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var errResp rest.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
		assert.Contains(t, errResp.Details, "end date is before start date")
	})

	t.Run("should reject malformed date", func(t *testing.T) {
		h := setupHandlerTest(t)

		w := doRequest(t, h, http.MethodPost, "/api/timeline/event",
			`{"name":"Bad","start":"21.06.2024","end":"2024-06-22"}`, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_GetUpdateDeleteEvent(t *testing.T) {
	h := setupHandlerTest(t)
	created := createEvent(t, h, EventDTO{Name: "Draft", Start: june(1), End: june(2)})
	eventUrl := "/api/timeline/event/" + created.UID

	w := doRequest(t, h, http.MethodGet, eventUrl, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, h, http.MethodPut, eventUrl, `{"name":"Final","start":"2024-06-01","end":"2024-06-09"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated EventDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
	assert.Equal(t, "Final", updated.Name)
	assert.Equal(t, june(9), updated.End)

	w = doRequest(t, h, http.MethodDelete, eventUrl, "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, h, http.MethodGet, eventUrl, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, h, http.MethodDelete, "/api/timeline/event/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, h, http.MethodGet, "/api/timeline/event/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_GetTimeline(t *testing.T) {
	t.Run("should return lanes as json", func(t *testing.T) {
		// given
		h := setupHandlerTest(t)
		createEvent(t, h, EventDTO{Name: "A", Start: june(20), End: june(22)})
		createEvent(t, h, EventDTO{Name: "B", Start: june(21), End: june(23)})
		createEvent(t, h, EventDTO{Name: "C", Start: june(23), End: june(25)})

		// when
		w := doRequest(t, h, http.MethodGet, "/api/timeline?from=2024-06-01&to=2024-06-30", "", nil)

		// then
		require.Equal(t, http.StatusOK, w.Code)
		var result TimelineDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		assert.Equal(t, 2, result.Depth)
		assert.Equal(t, 6, result.TotalDays)
		require.Len(t, result.Lanes, 2)
		assert.Equal(t, []string{"A", "C"}, placementNames(result.Lanes[0]))
		assert.Equal(t, []string{"B"}, placementNames(result.Lanes[1]))
		assert.Equal(t, "JUN", result.Scale[0].Month)
		assert.Equal(t, "THU", result.Scale[0].DayOfWeek)
	})

	t.Run("should return csv when asked for", func(t *testing.T) {
		h := setupHandlerTest(t)
		createEvent(t, h, EventDTO{Name: "A", Start: june(20), End: june(22)})

		w := doRequest(t, h, http.MethodGet, "/api/timeline?from=2024-06-01&to=2024-06-30", "",
			map[string]string{"Accept": "text/csv"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
		assert.Equal(t, "lane,name,start,end,offset,duration\n0,A,2024-06-20,2024-06-22,0,3\n", w.Body.String())
	})

	testCases := []struct {
		name  string
		query string
	}{
		{"invalid from", "from=invalid&to=2024-06-30"},
		{"invalid to", "from=2024-06-01&to=2024-13-01"},
		{"inverted range", "from=2024-06-30&to=2024-06-01"},
		{"too long range", "from=2020-01-01&to=2024-06-01"},
	}
	for _, tc := range testCases {
		t.Run("should reject "+tc.name, func(t *testing.T) {
			h := setupHandlerTest(t)

			w := doRequest(t, h, http.MethodGet, "/api/timeline?"+tc.query, "", nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandler_GetEvents(t *testing.T) {
	h := setupHandlerTest(t)
	createEvent(t, h, EventDTO{Name: "June", Start: june(20), End: june(22)})
	createEvent(t, h, EventDTO{Name: "July", Start: july(2), End: july(3)})

	w := doRequest(t, h, http.MethodGet, "/api/timeline/event?from=2024-06-01&to=2024-06-30", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var events []EventDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&events))
	require.Len(t, events, 1)
	assert.Equal(t, "June", events[0].Name)
}

func TestHandler_ImportEvents(t *testing.T) {
	t.Run("should import csv file", func(t *testing.T) {
		h := setupHandlerTest(t)
		body := "id,name,start,end\na,A,2024-06-20,2024-06-22\nb,B,2024-06-21,2024-06-21\n"

		w := doRequest(t, h, http.MethodPost, "/api/timeline/event/import", body,
			map[string]string{"Content-Type": "text/csv"})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var imported []EventDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&imported))
		assert.Len(t, imported, 2)
		assert.Equal(t, "a", imported[0].ExternalId)
	})

	t.Run("should import yaml file", func(t *testing.T) {
		h := setupHandlerTest(t)
		body := "events:\n  - id: a\n    name: A\n    start: 2024-06-20\n    end: 2024-06-22\n"

		w := doRequest(t, h, http.MethodPost, "/api/timeline/event/import", body,
			map[string]string{"Content-Type": "application/yaml"})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("should reject unknown content type", func(t *testing.T) {
		h := setupHandlerTest(t)

		w := doRequest(t, h, http.MethodPost, "/api/timeline/event/import", "[]",
			map[string]string{"Content-Type": "application/json"})

		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("should reject file with inverted event", func(t *testing.T) {
		h := setupHandlerTest(t)
		body := "id,name,start,end\na,A,2024-06-22,2024-06-20\n"

		w := doRequest(t, h, http.MethodPost, "/api/timeline/event/import", body,
			map[string]string{"Content-Type": "text/csv"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_ForbiddenWithoutUser(t *testing.T) {
	service := NewService(NewRepositoryStub(), event_bus.NewEventBus(), testTimelineConfig)
	handler := NewHandler(service)
	req := httptest.NewRequest(http.MethodPost, "/api/timeline/event",
		bytes.NewBufferString(`{"name":"A","start":"2024-06-20","end":"2024-06-20"}`))
	w := httptest.NewRecorder()

	handler.CreateEvent(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func placementNames(l LaneDTO) []string {
	names := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		names = append(names, item.Event.Name)
	}
	return names
}
