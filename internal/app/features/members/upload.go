package members

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"github.com/lineagehub/lineagehub/internal/app/system/auth"
	"github.com/lineagehub/lineagehub/internal/app/system/httpapi"
	"github.com/lineagehub/lineagehub/internal/app/system/limits"
	"go.uber.org/zap"
)

// maxPortraitBytes caps portrait uploads, matching what the entry form
// enforces client-side.
const maxPortraitBytes = limits.MaxPortraitSize

// HandleUploadPortrait handles POST /api/uploads/members.
//
// Accepts a multipart "file" field, requires an image/* content type, and
// stores the file under members/YYYY/MM/ with a uuid prefix so repeated
// uploads of the same filename never collide. Responds with the public URL.
func (h *Handler) HandleUploadPortrait(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); !ok {
		httpapi.Unauthorized(w)
		return
	}

	// Slack beyond the file cap covers the multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, maxPortraitBytes+512*1024)
	if err := r.ParseMultipartForm(maxPortraitBytes); err != nil {
		httpapi.PayloadTooLarge(w, []string{"image must be 5 MB or smaller"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpapi.ValidationFailed(w, []string{"a file is required"})
		return
	}
	defer file.Close()

	if header.Size > maxPortraitBytes {
		httpapi.PayloadTooLarge(w, []string{"image must be 5 MB or smaller"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		httpapi.ValidationFailed(w, []string{"file must be an image"})
		return
	}

	now := time.Now().UTC()
	dateDir := fmt.Sprintf("members/%04d/%02d", now.Year(), now.Month())
	uniqueName := fmt.Sprintf("%s-%s", uuid.New().String()[:8], sanitizeFilename(header.Filename))
	path := filepath.ToSlash(filepath.Join(dateDir, uniqueName))

	opts := &storage.PutOptions{ContentType: contentType}
	if err := h.Storage.Put(r.Context(), path, file, opts); err != nil {
		h.Log.Error("portrait upload failed",
			zap.String("path", path),
			zap.Error(err))
		httpapi.Internal(w)
		return
	}

	h.Log.Info("portrait uploaded",
		zap.String("path", path),
		zap.Int64("size", header.Size),
		zap.String("content_type", contentType))

	httpapi.WriteJSON(w, http.StatusOK, map[string]string{
		"url":  h.Storage.URL(path),
		"path": path,
	})
}

// sanitizeFilename removes or replaces characters that could be
// problematic in filenames.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}

	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
