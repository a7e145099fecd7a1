package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"picvoice/internal/services"
)

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTags(w, r)
	case http.MethodPost:
		s.createTag(w, r)
	default:
		s.methodNotAllowed(w)
	}
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	user, err := s.user(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	tags, err := s.store.ListTags(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "list tags", "", err))
		return
	}
	payload := make([]TagPayload, 0, len(tags))
	for _, tag := range tags {
		payload = append(payload, tagPayload(tag))
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) createTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "decode request: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.writeError(w, http.StatusBadRequest, "tag name is required")
		return
	}
	user, err := s.user(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	tag, err := s.store.InsertTag(r.Context(), user.ID, strings.TrimSpace(req.Name), req.Color, req.Category)
	if err != nil {
		// Unique constraint on (user, name).
		s.writeError(w, http.StatusConflict, "create tag: "+err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, tagPayload(tag))
}

func (s *Server) handleTagItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		s.methodNotAllowed(w)
		return
	}
	idStr := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/tags/"), "/")
	if idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	tagID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid tag id")
		return
	}
	deleted, err := s.store.DeleteTag(r.Context(), tagID)
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "delete tag", "", err))
		return
	}
	if !deleted {
		s.writeError(w, http.StatusNotFound, "tag not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// handleImageTags serves GET /api/images/{id}/tags and attach/detach on
// /api/images/{id}/tags/{tagID}.
func (s *Server) handleImageTags(w http.ResponseWriter, r *http.Request, imageID int64, rest []string) {
	if len(rest) == 0 || rest[0] == "" {
		if r.Method != http.MethodGet {
			s.methodNotAllowed(w)
			return
		}
		tags, err := s.store.ListImageTags(r.Context(), imageID)
		if err != nil {
			s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "list image tags", "", err))
			return
		}
		payload := make([]TagPayload, 0, len(tags))
		for _, tag := range tags {
			payload = append(payload, tagPayload(tag))
		}
		s.writeJSON(w, http.StatusOK, payload)
		return
	}
	if len(rest) != 1 {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	tagID, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid tag id")
		return
	}

	switch r.Method {
	case http.MethodPost:
		img, err := s.store.GetImageByID(r.Context(), imageID)
		if err != nil {
			s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "load image", "", err))
			return
		}
		if img == nil || img.Deleted {
			s.writeError(w, http.StatusNotFound, "image not found")
			return
		}
		tag, err := s.store.GetTagByID(r.Context(), tagID)
		if err != nil {
			s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "load tag", "", err))
			return
		}
		if tag == nil {
			s.writeError(w, http.StatusNotFound, "tag not found")
			return
		}
		if err := s.store.AddImageTag(r.Context(), imageID, tagID); err != nil {
			s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "attach tag", "", err))
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"attached": true})
	case http.MethodDelete:
		removed, err := s.store.RemoveImageTag(r.Context(), imageID, tagID)
		if err != nil {
			s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "detach tag", "", err))
			return
		}
		if !removed {
			s.writeError(w, http.StatusNotFound, "tag not attached")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"detached": true})
	default:
		s.methodNotAllowed(w)
	}
}
