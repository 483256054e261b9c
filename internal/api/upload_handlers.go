package api

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/staybook/staybook-server/internal/errors"
	"github.com/staybook/staybook-server/internal/http/response"
	"github.com/staybook/staybook-server/internal/media/uploads"
)

// uploadField is the multipart field photos arrive in.
const uploadField = "photos"

// registerUploadRoutes mounts the multipart upload and static file routes
// directly on chi; they do not fit huma's JSON operations.
func (s *Server) registerUploadRoutes() {
	s.router.Post("/upload", s.handleUpload)
	s.router.Get("/uploads/*", s.handleServeUpload)
}

// handleUpload stores every "photos" part and responds with their paths in
// request order. Nothing is kept when any part fails.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil || s.storage.Uploads == nil {
		response.Error(w, domainerrors.Internal("upload storage not configured"), s.logger)
		return
	}

	// Large multipart bodies outlast the server-wide read and write timeouts.
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Now().Add(uploadReadTimeout))
	_ = rc.SetWriteDeadline(time.Now().Add(uploadWriteTimeout))

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, domainerrors.Validationf("upload exceeds %d bytes", s.opts.MaxUploadBytes), s.logger)
			return
		}
		response.Error(w, domainerrors.Validation("expected a multipart/form-data body"), s.logger)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File[uploadField]
	if len(files) > s.opts.MaxUploadFiles {
		response.Error(w, domainerrors.ValidationWithDetails("too many files", map[string]string{
			uploadField: "must not contain more than " + strconv.Itoa(s.opts.MaxUploadFiles) + " items",
		}), s.logger)
		return
	}

	paths := make([]string, 0, len(files))
	saved := make([]*uploads.File, 0, len(files))
	for _, fh := range files {
		f, err := s.saveUpload(fh)
		if err != nil {
			for _, done := range saved {
				_ = s.storage.Uploads.Remove(done.Name)
			}
			s.logger.Error("upload failed", "filename", fh.Filename, "error", err)
			response.Error(w, domainerrors.Upstream(err, "store upload"), s.logger)
			return
		}
		saved = append(saved, f)
		paths = append(paths, f.Path)
	}

	s.logger.Info("photos uploaded", "count", len(paths))
	response.Success(w, paths, s.logger)
}

func (s *Server) saveUpload(fh *multipart.FileHeader) (*uploads.File, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return s.storage.Uploads.Save(fh.Filename, src)
}

// handleServeUpload serves a stored photo. Stored names are never reused,
// so responses are cacheable.
func (s *Server) handleServeUpload(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil || s.storage.Uploads == nil {
		response.Error(w, domainerrors.NotFound("File not found"), s.logger)
		return
	}

	name := chi.URLParam(r, "*")
	path, err := s.storage.Uploads.Path(name)
	if err != nil || !s.storage.Uploads.Exists(name) {
		response.Error(w, domainerrors.NotFound("File not found"), s.logger)
		return
	}

	w.Header().Set("Cache-Control", CacheOneWeek)
	http.ServeFile(w, r, path)
}
