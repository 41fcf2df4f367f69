package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"theme-images-manager/internal/application"
	"theme-images-manager/internal/domain"
)

const (
	uploadField     = "image"
	maxDeleteBody   = 1 << 20
	doneRemovalText = "Done removal"
)

func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	shop := domain.GetShopDomainFromContext(r.Context())

	images, err := s.assets.ListImages(r.Context(), shop)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, images)
}

// handleUpload accepts one or more files in the multipart field "image".
// 200 when every file was stored, 207 when some were, 502 when none were.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shop := domain.GetShopDomainFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.UploadMaxBytes)
	files, err := bufferUploads(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if len(files) == 0 {
		writeError(w, r, s.logger, badRequest("No files in field \"image\""))
		return
	}

	payloads, err := application.EncodeUploads(files)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	outcomes, err := s.assets.UploadImages(ctx, shop, payloads)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	names, _ := failedNames(outcomes)
	failed := len(names)
	status := http.StatusOK
	switch {
	case failed == len(outcomes):
		status = http.StatusBadGateway
	case failed > 0:
		status = http.StatusMultiStatus
	}
	s.logger.Info().
		Str("shop", shop).
		Int("files", len(outcomes)).
		Int("failed", failed).
		Msg("Uploaded images")

	writeJSON(w, status, outcomes)
}

// handleDelete removes the assets named in {"name": [...]}. It succeeds only
// when every delete succeeded.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shop := domain.GetShopDomainFromContext(ctx)

	var body struct {
		Name []string `json:"name"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDeleteBody)).Decode(&body); err != nil {
		writeError(w, r, s.logger, badRequest("Invalid request body"))
		return
	}
	if len(body.Name) == 0 {
		writeError(w, r, s.logger, badRequest("Required parameters missing: name"))
		return
	}

	outcomes, err := s.assets.DeleteImages(ctx, shop, body.Name)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if failed, remote := failedNames(outcomes); len(failed) > 0 {
		status := http.StatusBadRequest
		if remote {
			status = http.StatusBadGateway
		}
		w.WriteHeader(status)
		io.WriteString(w, "Failed to remove: "+strings.Join(failed, ", "))
		return
	}
	io.WriteString(w, doneRemovalText)
}

// bufferUploads streams every file part of the upload field to a temp file.
// On error the temp files written so far are removed.
func bufferUploads(r *http.Request) (files []application.UploadedFile, err error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, badRequest("Expected a multipart form")
	}
	defer func() {
		if err != nil {
			for _, f := range files {
				os.Remove(f.Path)
			}
			files = nil
		}
	}()

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return files, nil
		}
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return files, err
			}
			return files, badRequest("Malformed multipart form")
		}

		if part.FormName() != uploadField || part.FileName() == "" {
			part.Close()
			continue
		}

		tmp, err := os.CreateTemp("", "upload-*")
		if err != nil {
			part.Close()
			return files, err
		}
		files = append(files, application.UploadedFile{Name: part.FileName(), Path: tmp.Name()})

		_, copyErr := io.Copy(tmp, part)
		closeErr := tmp.Close()
		part.Close()
		if copyErr != nil {
			return files, copyErr
		}
		if closeErr != nil {
			return files, closeErr
		}
	}
}

// failedNames lists the names of failed items. remote is set when any of
// them failed at the shop rather than being rejected locally.
func failedNames(outcomes []domain.AssetOutcome) (failed []string, remote bool) {
	for _, o := range outcomes {
		if !o.OK() {
			failed = append(failed, o.Name)
			remote = remote || !o.Rejected
		}
	}
	return failed, remote
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
