package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"milk-backend/models"
	"milk-backend/realtime"
)

func validReservation() map[string]interface{} {
	return map[string]interface{}{
		"name":   "Jan Nowak",
		"phone":  "600100200",
		"date":   "2026-11-05",
		"time":   "19:30",
		"guests": 4,
		"room":   "Ogród",
	}
}

func TestCreateReservationBroadcasts(t *testing.T) {
	events := &recordingPublisher{}
	router := setupReservationRouter(freshStore(), events)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/rezerwacje", validReservation()))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["source"] != models.ReservationSourceIndex {
		t.Errorf("expected source index, got %v", resp["source"])
	}
	if resp["guests"] != float64(4) {
		t.Errorf("expected 4 guests, got %v", resp["guests"])
	}

	names := events.names()
	if len(names) != 1 || names[0] != realtime.EventReservationNew {
		t.Fatalf("expected one %s event, got %v", realtime.EventReservationNew, names)
	}
	sent, ok := events.events[0].Data.(models.Reservation)
	if !ok || sent.ID != resp["id"] {
		t.Errorf("expected the new reservation as payload, got %v", events.events[0].Data)
	}
}

func TestCreateReservationSource(t *testing.T) {
	router := setupReservationRouter(freshStore(), nil)

	body := validReservation()
	body["milkId"] = "u1"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/rezerwacje", body))
	if parseResponse(w)["source"] != models.ReservationSourceApp {
		t.Errorf("expected source app, got %v", parseResponse(w)["source"])
	}

	body["source"] = "telefon"
	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/rezerwacje", body))
	if parseResponse(w)["source"] != "telefon" {
		t.Errorf("expected explicit source, got %v", parseResponse(w)["source"])
	}
}

func TestCreateReservationValidation(t *testing.T) {
	events := &recordingPublisher{}
	router := setupReservationRouter(freshStore(), events)

	for _, field := range []string{"name", "phone", "date", "time", "guests", "room"} {
		body := validReservation()
		delete(body, field)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, jsonRequest("POST", "/api/rezerwacje", body))
		if w.Code != http.StatusBadRequest {
			t.Errorf("missing %s: expected status 400, got %d: %s", field, w.Code, w.Body.String())
		}
	}

	body := validReservation()
	body["guests"] = 0
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/rezerwacje", body))
	if w.Code != http.StatusBadRequest {
		t.Errorf("zero guests: expected status 400, got %d", w.Code)
	}

	if len(events.names()) != 0 {
		t.Errorf("expected no events for rejected reservations, got %v", events.names())
	}
}

func TestCreateReservationPublishFailureStillSucceeds(t *testing.T) {
	events := &recordingPublisher{err: errors.New("broker down")}
	router := setupReservationRouter(freshStore(), events)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/rezerwacje", validReservation()))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateReservation(t *testing.T) {
	store := freshStore()
	reservation := seedReservation(store, "Ola", "")
	events := &recordingPublisher{}
	router := setupReservationRouter(store, events)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("PUT", "/api/rezerwacje/"+reservation.ID, map[string]interface{}{"time": "20:00", "guests": "6"}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["time"] != "20:00" || resp["guests"] != float64(6) || resp["name"] != "Ola" {
		t.Errorf("unexpected reservation %v", resp)
	}
	if resp["updatedAt"] == nil {
		t.Error("expected updatedAt to be set")
	}

	names := events.names()
	if len(names) != 1 || names[0] != realtime.EventReservationsChanged {
		t.Fatalf("expected one %s event, got %v", realtime.EventReservationsChanged, names)
	}
}

func TestUpdateReservationNotFound(t *testing.T) {
	events := &recordingPublisher{}
	router := setupReservationRouter(freshStore(), events)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("PUT", "/api/rezerwacje/missing", map[string]interface{}{"time": "20:00"}))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", w.Code, w.Body.String())
	}
	if len(events.names()) != 0 {
		t.Errorf("expected no events, got %v", events.names())
	}
}

func TestDeleteReservation(t *testing.T) {
	store := freshStore()
	reservation := seedReservation(store, "Ola", "")
	events := &recordingPublisher{}
	router := setupReservationRouter(store, events)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/rezerwacje/"+reservation.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/rezerwacje/"+reservation.ID, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d: %s", w.Code, w.Body.String())
	}

	if names := events.names(); len(names) != 1 || names[0] != realtime.EventReservationsChanged {
		t.Errorf("expected one %s event, got %v", realtime.EventReservationsChanged, names)
	}
}

func TestListReservationsByMilkID(t *testing.T) {
	store := freshStore()
	seedReservation(store, "Ola", "u1")
	tick()
	seedReservation(store, "Piotr", "")
	router := setupReservationRouter(store, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/rezerwacje", nil))
	all := parseResponseArray(w)
	if len(all) != 2 {
		t.Fatalf("expected 2 reservations, got %d", len(all))
	}
	if all[0].(map[string]interface{})["name"] != "Piotr" {
		t.Errorf("expected newest first, got %v", all[0])
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/rezerwacje?milkId=u1", nil))
	if mine := parseResponseArray(w); len(mine) != 1 {
		t.Errorf("expected 1 reservation for u1, got %d", len(mine))
	}
}

func TestHappyEmpty(t *testing.T) {
	router := setupReservationRouter(freshStore(), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/happy", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["text"] != "" || resp["updatedAt"] != nil {
		t.Errorf("expected empty announcement, got %v", resp)
	}
}

func TestHappyLatestWins(t *testing.T) {
	events := &recordingPublisher{}
	router := setupReservationRouter(freshStore(), events)

	for _, text := range []string{"Happy hours 15-17", "Dziś -20% na shake"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, jsonRequest("POST", "/api/happy", map[string]string{"text": text}))
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		tick()
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/happy", nil))
	resp := parseResponse(w)
	if resp["text"] != "Dziś -20% na shake" {
		t.Errorf("expected newest text, got %v", resp["text"])
	}
	if resp["updatedAt"] == nil {
		t.Error("expected updatedAt")
	}

	if len(events.events) != 2 || events.events[1].Name != realtime.EventHappyUpdate || events.events[1].Data != "Dziś -20% na shake" {
		t.Errorf("expected happy:update with the text, got %v", events.events)
	}
}
