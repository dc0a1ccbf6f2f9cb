package transport

import (
	"encoding/json"
	"net/http"
)

// Envelope is the body shape of every JSON response.
type Envelope struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteData(w http.ResponseWriter, status int, message string, data interface{}) {
	WriteJSON(w, status, Envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// ListEnvelope always carries data, so an empty result encodes as [].
type ListEnvelope struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Data    interface{} `json:"data"`
}

func WriteList(w http.ResponseWriter, data interface{}, count int) {
	WriteJSON(w, http.StatusOK, ListEnvelope{
		Success: true,
		Count:   count,
		Data:    data,
	})
}

func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{
		Success: true,
		Message: message,
	})
}

func WriteError(w http.ResponseWriter, status int, message string, errs map[string]string) {
	WriteJSON(w, status, Envelope{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}

// WriteRaw writes an already encoded JSON body.
func WriteRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
