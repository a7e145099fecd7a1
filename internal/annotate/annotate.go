package annotate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"picvoice/internal/config"
	"picvoice/internal/fileutil"
	"picvoice/internal/library"
	"picvoice/internal/logging"
	"picvoice/internal/services"
	"picvoice/internal/store"
	"picvoice/internal/textutil"
)

// OutputKind selects the encoder product.
type OutputKind string

const (
	OutputMP3 OutputKind = "mp3"
	OutputMP4 OutputKind = "mp4"
)

// Request describes one annotation encode. Image and audio have already
// been staged into the account temp directory by the caller.
type Request struct {
	Email            string
	ImagePath        string
	ImageContentType string
	ImageName        string
	AudioPath        string
	AudioContentType string
	Name             string
	Kind             OutputKind
}

// Result reports where the encoded output landed and, for audio
// outputs, the recorded annotation.
type Result struct {
	OutputName string
	OutputPath string
	Annotation *store.Annotation
}

// Orchestrator coordinates validation, encoding, and recording.
type Orchestrator struct {
	cfg     *config.Config
	store   *store.Store
	library *library.Library
	logger  *slog.Logger
}

func New(cfg *config.Config, st *store.Store, lib *library.Library, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{cfg: cfg, store: st, library: lib, logger: logging.WithComponent(logger, "annotate")}
}

// Create runs one annotation end to end. The account temp directory is
// cleaned on every exit path.
func (o *Orchestrator) Create(ctx context.Context, req Request) (*Result, error) {
	defer func() {
		if err := o.library.CleanupTemp(req.Email); err != nil {
			o.logger.Warn("temp cleanup failed", logging.String("email", req.Email), logging.Error(err))
		}
	}()

	if err := validate(req); err != nil {
		return nil, err
	}
	kind := req.Kind
	if kind == "" {
		kind = OutputMP3
	}

	outputName := outputFileName(req.ImageName, kind)
	outputPath := o.library.OutputPath(req.Email, outputName)
	if err := o.library.EnsureDirectories(req.Email); err != nil {
		return nil, services.Wrap(services.ErrStorage, "annotate", "prepare", "create output directories", err)
	}

	start := time.Now()
	switch kind {
	case OutputMP3:
		if err := o.encodeAudio(ctx, req.AudioPath, outputPath); err != nil {
			return nil, err
		}
		// The source image sits next to the audio so the pair can be
		// exported together.
		imageCopy := o.library.OutputPath(req.Email, strings.TrimSuffix(outputName, ".mp3")+strings.ToLower(filepath.Ext(req.ImageName)))
		if err := fileutil.CopyFile(req.ImagePath, imageCopy); err != nil {
			return nil, services.Wrap(services.ErrStorage, "annotate", "copy image", req.ImageName, err)
		}
	case OutputMP4:
		if err := o.encodeVideo(ctx, req.ImagePath, req.AudioPath, outputPath); err != nil {
			return nil, err
		}
	}
	o.logger.Info("annotation encoded",
		logging.String("email", req.Email),
		logging.String("output", outputName),
		logging.String("kind", string(kind)),
		logging.Duration("elapsed", time.Since(start)))

	result := &Result{OutputName: outputName, OutputPath: outputPath}
	if kind != OutputMP3 {
		return result, nil
	}

	annotation, err := o.record(ctx, req, outputName)
	if err != nil {
		return nil, err
	}
	result.Annotation = annotation
	return result, nil
}

func validate(req Request) error {
	if req.ImagePath == "" || req.AudioPath == "" {
		return services.Wrap(services.ErrValidation, "annotate", "validate", "image and audio are both required", nil)
	}
	if !strings.HasPrefix(req.ImageContentType, "image/") {
		return services.Wrap(services.ErrValidation, "annotate", "validate",
			fmt.Sprintf("unsupported image content type %q", req.ImageContentType), nil)
	}
	if !strings.HasPrefix(req.AudioContentType, "audio/") {
		return services.Wrap(services.ErrValidation, "annotate", "validate",
			fmt.Sprintf("unsupported audio content type %q", req.AudioContentType), nil)
	}
	switch req.Kind {
	case "", OutputMP3, OutputMP4:
	default:
		return services.Wrap(services.ErrValidation, "annotate", "validate",
			fmt.Sprintf("unknown output kind %q", req.Kind), nil)
	}
	return nil
}

func (o *Orchestrator) encodeAudio(ctx context.Context, audioPath, outputPath string) error {
	args := []string{
		"-i", audioPath,
		"-vn",
		"-ar", strconv.Itoa(o.cfg.Encoder.SampleRate),
		"-ac", strconv.Itoa(o.cfg.Encoder.Channels),
		"-b:a", o.cfg.Encoder.Bitrate,
		"-y",
		outputPath,
	}
	cmd := exec.CommandContext(ctx, o.cfg.EncoderBinary(), args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return services.Wrap(services.ErrExternalTool, "annotate", "encode audio",
			strings.TrimSpace(string(output)), err)
	}
	return nil
}

func (o *Orchestrator) encodeVideo(ctx context.Context, imagePath, audioPath, outputPath string) error {
	timeout := time.Duration(o.cfg.Encoder.VideoTimeout) * time.Second
	encodeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{
		"-loop", "1",
		"-i", imagePath,
		"-i", audioPath,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-b:a", o.cfg.Encoder.Bitrate,
		"-shortest",
		"-pix_fmt", "yuv420p",
		"-y",
		outputPath,
	}
	cmd := exec.CommandContext(encodeCtx, o.cfg.EncoderBinary(), args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(encodeCtx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "annotate", "encode video",
				fmt.Sprintf("encoder exceeded %s", timeout), err)
		}
		return services.Wrap(services.ErrExternalTool, "annotate", "encode video",
			strings.TrimSpace(string(output)), err)
	}
	return nil
}

func (o *Orchestrator) record(ctx context.Context, req Request, outputName string) (*store.Annotation, error) {
	user, err := o.store.GetOrCreateUser(ctx, req.Email)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "annotate", "record", "resolve user", err)
	}

	var imageID *int64
	sessionID := ""
	if image, err := o.store.GetImageByFilename(ctx, user.ID, req.ImageName); err != nil {
		return nil, services.Wrap(services.ErrStorage, "annotate", "record", "look up image", err)
	} else if image != nil {
		imageID = &image.ID
		sessionID = image.SessionID
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	annotation, err := o.store.InsertAnnotation(ctx, store.AnnotationParams{
		UserID:        user.ID,
		ImageID:       imageID,
		ImageFilename: req.ImageName,
		AudioFilename: outputName,
		Name:          req.Name,
		SessionID:     sessionID,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "annotate", "record", "insert annotation", err)
	}
	return annotation, nil
}

// outputFileName derives the encoder target name from the source image:
// the image base with spaces collapsed to underscores, a timestamp, and
// the kind's extension.
func outputFileName(imageName string, kind OutputKind) string {
	base := strings.TrimSuffix(filepath.Base(imageName), filepath.Ext(imageName))
	base = textutil.SanitizeBase(base, "annotation")
	return fmt.Sprintf("%s_%d.%s", base, time.Now().UnixMilli(), kind)
}
