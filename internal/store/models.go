package store

import "time"

// User is the account that owns all other entities. A single default user
// is seeded when the schema is created; there is no registration flow.
type User struct {
	ID        int64
	Email     string
	CreatedAt time.Time
}

// Image is an uploaded picture. Filename is the stored name, unique on
// disk; OriginalName is the user-facing name from the upload. SessionID
// groups images uploaded in the same request.
type Image struct {
	ID           int64
	UserID       int64
	Filename     string
	OriginalName string
	SessionID    string
	UploadedAt   time.Time
	Favorite     bool
	Tag          string // legacy free-text field, superseded by Tag rows
	Deleted      bool
	Rotation     int
	Ready        bool
}

// Annotation is a recorded audio clip attached to an image. ImageID is the
// authoritative link; ImageFilename is denormalized for display and is
// what the presentation layer keys on. ImageID is nil when the image
// record was missing at annotation time.
type Annotation struct {
	ID            int64
	UserID        int64
	ImageID       *int64
	ImageFilename string
	AudioFilename string
	Name          string
	SessionID     string
	CreatedAt     time.Time
}

// Tag is a user-defined label with a display color and category.
type Tag struct {
	ID        int64
	UserID    int64
	Name      string
	Color     string
	Category  string
	CreatedAt time.Time
}

// ImageFilter narrows ListImages. Zero values mean "no constraint";
// soft-deleted images are always excluded.
type ImageFilter struct {
	SessionID string
	Favorite  *bool
	Ready     *bool
	TagID     int64
}

// SessionSummary is the derived per-session grouping: distinct session id
// with image count, upload time range, and count of ready images.
type SessionSummary struct {
	SessionID   string
	ImageCount  int
	ReadyCount  int
	FirstUpload time.Time
	LastUpload  time.Time
}

// AnnotationGroup summarizes annotations per image for grid display.
type AnnotationGroup struct {
	ImageFilename string
	Count         int
	Latest        time.Time
}

// Stats aggregates entity counts for diagnostics.
type Stats struct {
	Users       int
	Images      int
	Deleted     int
	Annotations int
	Tags        int
	Sessions    int
}

// DatabaseHealth captures diagnostic information about the database file.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TablesPresent    []string
	MissingTables    []string
	IntegrityCheck   bool
	Error            string
}

// Rotation values accepted by SetRotation.
const (
	RotationStep = 90
	RotationMax  = 270
)

// ValidRotation reports whether degrees is one of 0, 90, 180, or 270.
func ValidRotation(degrees int) bool {
	return degrees >= 0 && degrees <= RotationMax && degrees%RotationStep == 0
}

// DefaultAnnotationName is used when a recording is saved without a name.
const DefaultAnnotationName = "Annotation"
