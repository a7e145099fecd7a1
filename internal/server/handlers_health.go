package server

import (
	"net/http"

	"picvoice/internal/deps"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}

	health, err := s.store.CheckHealth(r.Context())
	if err != nil {
		health.Error = err.Error()
	}

	statuses := deps.CheckBinaries(s.requirements())
	payload := HealthPayload{Status: "ok", Database: health}
	for _, status := range statuses {
		payload.Dependencies = append(payload.Dependencies, DependencyPayload{
			Name:      status.Name,
			Command:   status.Command,
			Available: status.Available,
			Detail:    status.Detail,
		})
	}
	if !health.DatabaseReadable || !health.IntegrityCheck || len(health.MissingTables) > 0 {
		payload.Status = "degraded"
	}
	if len(deps.MissingRequired(statuses)) > 0 {
		payload.Status = "degraded"
	}

	code := http.StatusOK
	if payload.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, payload)
}
