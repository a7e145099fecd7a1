package server

import (
	"time"

	"picvoice/internal/store"
)

// ImagePayload is the JSON shape for one gallery image.
type ImagePayload struct {
	ID           int64        `json:"id"`
	Filename     string       `json:"filename"`
	OriginalName string       `json:"originalName"`
	SessionID    string       `json:"sessionId"`
	UploadedAt   time.Time    `json:"uploadedAt"`
	IsFavorite   bool         `json:"isFavorite"`
	Rotation     int          `json:"rotation"`
	Ready        bool         `json:"ready"`
	URL          string       `json:"url"`
	Tags         []TagPayload `json:"tags,omitempty"`
}

// TagPayload is the JSON shape for one tag.
type TagPayload struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Category string `json:"category"`
}

// SessionPayload summarizes one upload session.
type SessionPayload struct {
	SessionID   string    `json:"sessionId"`
	ImageCount  int       `json:"imageCount"`
	ReadyCount  int       `json:"readyCount"`
	FirstUpload time.Time `json:"firstUploadedAt"`
	LastUpload  time.Time `json:"lastUploadedAt"`
}

func sessionPayload(s store.SessionSummary) SessionPayload {
	return SessionPayload{
		SessionID:   s.SessionID,
		ImageCount:  s.ImageCount,
		ReadyCount:  s.ReadyCount,
		FirstUpload: s.FirstUpload,
		LastUpload:  s.LastUpload,
	}
}

// AnnotationPayload is the JSON shape for one recorded annotation.
type AnnotationPayload struct {
	ID            int64     `json:"id"`
	ImageID       *int64    `json:"imageId"`
	ImageFilename string    `json:"imageFilename"`
	AudioFilename string    `json:"audioFilename"`
	Name          string    `json:"name"`
	SessionID     string    `json:"sessionId"`
	CreatedAt     time.Time `json:"createdAt"`
	AudioURL      string    `json:"audioUrl"`
	ImageURL      string    `json:"imageUrl"`
}

// AnnotationGroupPayload summarizes annotations per image.
type AnnotationGroupPayload struct {
	ImageFilename string    `json:"imageFilename"`
	Count         int       `json:"count"`
	Latest        time.Time `json:"latest"`
}

// UploadResponse reports the outcome of a batch image upload.
type UploadResponse struct {
	SessionID string         `json:"sessionId"`
	Images    []ImagePayload `json:"images"`
}

// ReadyRequest marks a set of images reviewed.
type ReadyRequest struct {
	ImageIDs []int64 `json:"imageIds"`
	Ready    bool    `json:"ready"`
}

// ReadyResponse reports how many rows the ready update touched.
type ReadyResponse struct {
	Updated int64 `json:"updated"`
}

// TagRequest creates a tag.
type TagRequest struct {
	Name     string `json:"name"`
	Color    string `json:"color"`
	Category string `json:"category"`
}

// HealthPayload combines storage and encoder health.
type HealthPayload struct {
	Status       string               `json:"status"`
	Database     store.DatabaseHealth `json:"database"`
	Dependencies []DependencyPayload  `json:"dependencies"`
}

// DependencyPayload reports one external binary check.
type DependencyPayload struct {
	Name      string `json:"name"`
	Command   string `json:"command"`
	Available bool   `json:"available"`
	Detail    string `json:"detail,omitempty"`
}

func imagePayload(img *store.Image, tags []*store.Tag) ImagePayload {
	payload := ImagePayload{
		ID:           img.ID,
		Filename:     img.Filename,
		OriginalName: img.OriginalName,
		SessionID:    img.SessionID,
		UploadedAt:   img.UploadedAt,
		IsFavorite:   img.Favorite,
		Rotation:     img.Rotation,
		Ready:        img.Ready,
		URL:          "/uploads/" + img.Filename,
	}
	for _, tag := range tags {
		payload.Tags = append(payload.Tags, tagPayload(tag))
	}
	return payload
}

func tagPayload(tag *store.Tag) TagPayload {
	return TagPayload{
		ID:       tag.ID,
		Name:     tag.Name,
		Color:    tag.Color,
		Category: tag.Category,
	}
}

func annotationPayload(ann *store.Annotation) AnnotationPayload {
	return AnnotationPayload{
		ID:            ann.ID,
		ImageID:       ann.ImageID,
		ImageFilename: ann.ImageFilename,
		AudioFilename: ann.AudioFilename,
		Name:          ann.Name,
		SessionID:     ann.SessionID,
		CreatedAt:     ann.CreatedAt,
		AudioURL:      "/outputs/" + ann.AudioFilename,
		ImageURL:      "/uploads/" + ann.ImageFilename,
	}
}
