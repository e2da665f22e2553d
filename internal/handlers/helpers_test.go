package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/holthoefer/qmflow/internal/store"
)

func TestRespondJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	respondJSON(rr, http.StatusCreated, map[string]string{"characteristic": "bore diameter"})

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["success"] != true {
		t.Error("Expected success=true")
	}
	if body["timestamp"] == nil {
		t.Error("Expected timestamp in envelope")
	}
	data, ok := body["data"].(map[string]any)
	if !ok || data["characteristic"] != "bore diameter" {
		t.Errorf("Unexpected data payload: %v", body["data"])
	}
}

func TestRespondJSONError(t *testing.T) {
	rr := httptest.NewRecorder()
	respondJSONError(rr, http.StatusNotFound, "Not Found", "incident not found")

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["success"] != false {
		t.Error("Expected success=false")
	}
	if body["error"] != "Not Found" {
		t.Errorf("Expected error type, got %v", body["error"])
	}
	if body["message"] != "incident not found" {
		t.Errorf("Expected message, got %v", body["message"])
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := sanitizeErrorMessage(long)
	if len(got) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("Expected 200 chars plus ellipsis, got %d chars", len(got))
	}

	if got := sanitizeErrorMessage("spindle fault"); got != "spindle fault" {
		t.Errorf("Short messages must pass through, got %q", got)
	}
}

func TestParsePathID(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		wantOK bool
	}{
		{name: "valid uuid", id: "5e0f2a8e-3f64-4e21-9d0c-8b7f3a1c2d4e", wantOK: true},
		{name: "garbage", id: "station-4", wantOK: false},
		{name: "empty", id: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/x/"+tt.id, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.id})
			rr := httptest.NewRecorder()

			_, ok := parsePathID(rr, req)
			if ok != tt.wantOK {
				t.Errorf("Expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !tt.wantOK && rr.Code != http.StatusBadRequest {
				t.Errorf("Expected 400 on parse failure, got %d", rr.Code)
			}
		})
	}
}

func TestRespondStoreError(t *testing.T) {
	rr := httptest.NewRecorder()
	respondStoreError(rr, store.ErrNotFound, "Workstation")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing record, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Workstation not found") {
		t.Errorf("Expected entity name in message, got %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	respondStoreError(rr, errors.New("connection reset"), "Workstation")
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 for store failure, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "connection reset") {
		t.Error("Store internals must not leak to the client")
	}
}
