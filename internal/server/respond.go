package server

import (
	"encoding/json"
	"net/http"

	"picvoice/internal/logging"
	"picvoice/internal/services"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps a classified error to its HTTP status and logs
// server-side failures.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", logging.Error(err))
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) methodNotAllowed(w http.ResponseWriter) {
	s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// discardTemp clears the account temp directory after a failed request
// so rejected multipart staging leaves nothing behind.
func (s *Server) discardTemp(email string) {
	if err := s.library.CleanupTemp(email); err != nil {
		s.logger.Warn("cleanup temp directory", logging.String("email", email), logging.Error(err))
	}
}
