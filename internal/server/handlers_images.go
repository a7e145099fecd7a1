package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"picvoice/internal/library"
	"picvoice/internal/logging"
	"picvoice/internal/services"
	"picvoice/internal/store"
)

// uploadFieldName is the multipart field carrying image files.
const uploadFieldName = "images"

func (s *Server) user(ctx context.Context) (*store.User, error) {
	user, err := s.store.GetOrCreateUser(ctx, s.cfg.Account.Email)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "server", "resolve user", "", err)
	}
	return user, nil
}

// handleUploadImages stores a batch of images under one fresh session.
func (s *Server) handleUploadImages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes()); err != nil {
		s.writeError(w, http.StatusBadRequest, "parse multipart form: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File[uploadFieldName]
	if len(files) == 0 {
		s.writeError(w, http.StatusBadRequest, "no image files provided")
		return
	}

	user, err := s.user(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	email := s.cfg.Account.Email
	sessionID := uuid.NewString()
	var images []ImagePayload
	for _, header := range files {
		if !library.IsImageName(header.Filename) {
			s.writeError(w, http.StatusBadRequest, "unsupported image file "+header.Filename)
			return
		}
		part, err := header.Open()
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "read upload "+header.Filename+": "+err.Error())
			return
		}
		data, rerr := io.ReadAll(part)
		_ = part.Close()
		if rerr != nil {
			s.writeError(w, http.StatusBadRequest, "read upload "+header.Filename+": "+rerr.Error())
			return
		}

		staged, err := s.library.StageTemp(email, header.Filename, data)
		if err != nil {
			s.discardTemp(email)
			s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "stage upload", header.Filename, err))
			return
		}
		stored, _, err := s.library.SaveUpload(email, staged, header.Filename)
		if err != nil {
			s.discardTemp(email)
			s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "store upload", header.Filename, err))
			return
		}
		img, err := s.store.InsertImage(r.Context(), store.ImageParams{
			UserID:       user.ID,
			Filename:     stored,
			OriginalName: header.Filename,
			SessionID:    sessionID,
		})
		if err != nil {
			s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "record upload", header.Filename, err))
			return
		}
		images = append(images, imagePayload(img, nil))
	}

	s.logger.Info("images uploaded",
		logging.String("session_id", sessionID),
		logging.Int("count", len(images)))
	s.writeJSON(w, http.StatusCreated, UploadResponse{SessionID: sessionID, Images: images})
}

func (s *Server) handleAllImages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	user, err := s.user(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	filter := store.ImageFilter{SessionID: strings.TrimSpace(r.URL.Query().Get("session"))}
	if value := r.URL.Query().Get("favorite"); value != "" {
		favorite := value == "1" || strings.EqualFold(value, "true")
		filter.Favorite = &favorite
	}
	if value := strings.TrimSpace(r.URL.Query().Get("tag")); value != "" {
		tagID, perr := strconv.ParseInt(value, 10, 64)
		if perr != nil {
			s.writeError(w, http.StatusBadRequest, "invalid tag id")
			return
		}
		filter.TagID = tagID
	}
	s.listImages(w, r, user.ID, filter)
}

// handleSessionImages lists the most recent upload session.
func (s *Server) handleSessionImages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	user, err := s.user(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	sessionID, err := s.store.CurrentSessionID(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "resolve session", "", err))
		return
	}
	if sessionID == "" {
		s.writeJSON(w, http.StatusOK, []ImagePayload{})
		return
	}
	s.listImages(w, r, user.ID, store.ImageFilter{SessionID: sessionID})
}

func (s *Server) listImages(w http.ResponseWriter, r *http.Request, userID int64, filter store.ImageFilter) {
	images, err := s.store.ListImages(r.Context(), userID, filter)
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "list images", "", err))
		return
	}
	payload := make([]ImagePayload, 0, len(images))
	for _, img := range images {
		tags, terr := s.store.ListImageTags(r.Context(), img.ID)
		if terr != nil {
			s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "list image tags", "", terr))
			return
		}
		payload = append(payload, imagePayload(img, tags))
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	user, err := s.user(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	sessions, err := s.store.ListSessions(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "list sessions", "", err))
		return
	}
	payload := make([]SessionPayload, 0, len(sessions))
	for _, session := range sessions {
		payload = append(payload, sessionPayload(session))
	}
	s.writeJSON(w, http.StatusOK, payload)
}

// handleImagesReady flips the reviewed flag on a set of images.
func (s *Server) handleImagesReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}
	var req ReadyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "decode request: "+err.Error())
		return
	}
	if len(req.ImageIDs) == 0 {
		s.writeError(w, http.StatusBadRequest, "imageIds is required")
		return
	}
	updated, err := s.store.SetReady(r.Context(), req.ImageIDs, req.Ready)
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "set ready", "", err))
		return
	}
	s.writeJSON(w, http.StatusOK, ReadyResponse{Updated: updated})
}

// handleImageAction routes /api/images/{id}/favorite, /rotate, and the
// per-image tag attachments.
func (s *Server) handleImageAction(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/images/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) < 2 || parts[0] == "" {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	imageID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	switch {
	case len(parts) == 2 && parts[1] == "favorite":
		s.toggleFavorite(w, r, imageID)
	case len(parts) == 2 && parts[1] == "rotate":
		s.rotateImage(w, r, imageID)
	case parts[1] == "tags":
		s.handleImageTags(w, r, imageID, parts[2:])
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) toggleFavorite(w http.ResponseWriter, r *http.Request, imageID int64) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}
	img, err := s.store.ToggleFavorite(r.Context(), imageID)
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "toggle favorite", "", err))
		return
	}
	if img == nil {
		s.writeError(w, http.StatusNotFound, "image not found")
		return
	}
	s.writeJSON(w, http.StatusOK, imagePayload(img, nil))
}

// rotateImage advances the stored rotation one quarter turn clockwise.
func (s *Server) rotateImage(w http.ResponseWriter, r *http.Request, imageID int64) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}
	img, err := s.store.GetImageByID(r.Context(), imageID)
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "load image", "", err))
		return
	}
	if img == nil || img.Deleted {
		s.writeError(w, http.StatusNotFound, "image not found")
		return
	}
	next := (img.Rotation + store.RotationStep) % 360
	if _, err := s.store.SetRotation(r.Context(), imageID, next); err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "rotate image", "", err))
		return
	}
	img.Rotation = next
	s.writeJSON(w, http.StatusOK, imagePayload(img, nil))
}

// handleImageDelete removes an image and everything hanging off it: the
// annotation rows and their audio files, the stored upload, and finally
// the listing entry.
func (s *Server) handleImageDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		s.methodNotAllowed(w)
		return
	}
	idStr := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/image/"), "/")
	if idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	imageID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	img, err := s.store.GetImageByID(r.Context(), imageID)
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "load image", "", err))
		return
	}
	if img == nil || img.Deleted {
		s.writeError(w, http.StatusNotFound, "image not found")
		return
	}

	email := s.cfg.Account.Email
	annotations, err := s.store.ListAnnotationsByImageID(r.Context(), imageID)
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "list annotations", "", err))
		return
	}
	for _, ann := range annotations {
		if err := s.library.RemoveOutput(email, ann.AudioFilename); err != nil {
			s.logger.Warn("remove annotation audio failed",
				logging.String("file", ann.AudioFilename), logging.Error(err))
		}
		if _, err := s.store.DeleteAnnotation(r.Context(), ann.ID); err != nil {
			s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "delete annotation", "", err))
			return
		}
	}
	if err := s.library.RemoveUpload(email, img.Filename); err != nil {
		s.logger.Warn("remove upload failed",
			logging.String("file", img.Filename), logging.Error(err))
	}
	if _, err := s.store.SoftDeleteImage(r.Context(), imageID); err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "delete image", "", err))
		return
	}

	s.logger.Info("image deleted",
		logging.Int64("image_id", imageID),
		logging.Int("annotations", len(annotations)))
	s.writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "annotations": len(annotations)})
}
