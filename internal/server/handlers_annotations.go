package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"picvoice/internal/annotate"
	"picvoice/internal/logging"
	"picvoice/internal/services"
	"picvoice/internal/store"
)

// handleAnnotate accepts one image and one audio recording and hands
// them to the orchestrator.
func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
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

	email := s.cfg.Account.Email
	imagePath, imageType, imageName, err := s.stagePart(r, "image")
	if err != nil {
		s.discardTemp(email)
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	audioPath, audioType, _, err := s.stagePart(r, "audio")
	if err != nil {
		s.discardTemp(email)
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := annotate.Request{
		Email:            email,
		ImagePath:        imagePath,
		ImageContentType: imageType,
		ImageName:        imageName,
		AudioPath:        audioPath,
		AudioContentType: audioType,
		Name:             strings.TrimSpace(r.FormValue("name")),
		Kind:             annotate.OutputKind(strings.TrimSpace(r.FormValue("output"))),
	}
	result, err := s.orch.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	payload := map[string]any{
		"output":    result.OutputName,
		"outputUrl": "/outputs/" + result.OutputName,
	}
	if result.Annotation != nil {
		payload["annotation"] = annotationPayload(result.Annotation)
	}
	s.logger.Info("annotation created", logging.String("output", result.OutputName))
	s.writeJSON(w, http.StatusCreated, payload)
}

// stagePart copies one multipart file into the account temp directory
// and reports its staged path, declared content type, and client name.
func (s *Server) stagePart(r *http.Request, field string) (string, string, string, error) {
	part, header, err := r.FormFile(field)
	if err != nil {
		return "", "", "", services.Wrap(services.ErrValidation, "server", "read part", field+" is required", nil)
	}
	defer func() { _ = part.Close() }()

	data, err := io.ReadAll(part)
	if err != nil {
		return "", "", "", services.Wrap(services.ErrValidation, "server", "read part", field, err)
	}
	path, err := s.library.StageTemp(s.cfg.Account.Email, header.Filename, data)
	if err != nil {
		return "", "", "", services.Wrap(services.ErrStorage, "server", "stage part", field, err)
	}
	return path, header.Header.Get("Content-Type"), header.Filename, nil
}

func (s *Server) handleAnnotations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	user, err := s.user(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	image := strings.TrimSpace(r.URL.Query().Get("image"))
	var rows []*store.Annotation
	if image != "" {
		rows, err = s.store.ListImageAnnotations(r.Context(), user.ID, image)
	} else {
		rows, err = s.store.ListAnnotations(r.Context(), user.ID)
	}
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "list annotations", "", err))
		return
	}
	annotations := make([]AnnotationPayload, 0, len(rows))
	for _, ann := range rows {
		annotations = append(annotations, annotationPayload(ann))
	}
	s.writeJSON(w, http.StatusOK, annotations)
}

func (s *Server) handleAnnotationSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	user, err := s.user(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	groups, err := s.store.AnnotationSummary(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "annotation summary", "", err))
		return
	}
	summary := make([]AnnotationGroupPayload, 0, len(groups))
	for _, group := range groups {
		summary = append(summary, AnnotationGroupPayload{
			ImageFilename: group.ImageFilename,
			Count:         group.Count,
			Latest:        group.Latest,
		})
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleAnnotationDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		s.methodNotAllowed(w)
		return
	}
	idStr := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/annotation/id/"), "/")
	if idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid annotation id")
		return
	}

	ann, err := s.store.GetAnnotationByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "load annotation", "", err))
		return
	}
	if ann == nil {
		s.writeError(w, http.StatusNotFound, "annotation not found")
		return
	}
	if err := s.library.RemoveOutput(s.cfg.Account.Email, ann.AudioFilename); err != nil {
		s.logger.Warn("remove annotation audio failed",
			logging.String("file", ann.AudioFilename), logging.Error(err))
	}
	if _, err := s.store.DeleteAnnotation(r.Context(), id); err != nil {
		s.writeServiceError(w, services.Wrap(services.ErrStorage, "server", "delete annotation", "", err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
