// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	// Register decoders for the accepted upload formats.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"kbpress/internal/middleware"
	"kbpress/internal/models"
	"kbpress/internal/storage"
	"kbpress/internal/store"
)

// thumbWidth is the pixel width of generated thumbnails. Height scales
// proportionally.
const thumbWidth = 320

// allowedImageTypes maps accepted sniffed MIME types to the file
// extension used for the stored object.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MediaHandler serves the admin media endpoints: image upload, listing,
// and deletion. Files live in S3-compatible storage; metadata in Postgres.
type MediaHandler struct {
	media    *store.MediaStore
	storage  *storage.Client
	maxBytes int64
}

// NewMediaHandler creates a MediaHandler. storage may be nil, in which
// case uploads answer 503 until object storage is configured.
func NewMediaHandler(media *store.MediaStore, st *storage.Client, maxBytes int64) *MediaHandler {
	return &MediaHandler{media: media, storage: st, maxBytes: maxBytes}
}

type uploadResponse struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	ThumbURL string    `json:"thumb_url,omitempty"`
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	Type     string    `json:"type"`
}

// Upload accepts a multipart form with a "file" part, verifies it is an
// image by sniffing the actual bytes, stores the original plus a
// thumbnail in the bucket, and records the metadata.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, codeInternal, "Object storage is not configured.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge, "File exceeds the upload size limit.")
			return
		}
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid multipart form.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeFieldError(w, codeValidation, "A file part is required.", "file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge, "File exceeds the upload size limit.")
			return
		}
		writeInternal(w, err)
		return
	}

	// Trust the bytes, not the client's Content-Type header.
	contentType := http.DetectContentType(data)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		writeError(w, http.StatusUnsupportedMediaType, codeUnsupportedMedia, "Only JPEG, PNG, GIF, and WebP images are accepted.")
		return
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		writeError(w, http.StatusUnsupportedMediaType, codeUnsupportedMedia, "The file is not a decodable image.")
		return
	}

	id := uuid.New()
	filename := id.String() + ext
	key := "media/" + filename

	ctx := r.Context()
	if err := h.storage.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		writeInternal(w, err)
		return
	}

	var thumbKey *string
	if thumb := makeThumbnail(img); thumb != nil {
		tk := "media/thumbs/" + id.String() + ".jpg"
		if err := h.storage.Upload(ctx, tk, "image/jpeg", bytes.NewReader(thumb), int64(len(thumb))); err != nil {
			// The original is already stored; serve it without a thumb.
			slog.Warn("thumbnail upload failed", "key", tk, "error", err)
		} else {
			thumbKey = &tk
		}
	}

	admin := middleware.AdminFromCtx(ctx)
	media, err := h.media.Create(&models.Media{
		Filename:     filename,
		OriginalName: path.Base(header.Filename),
		ContentType:  contentType,
		SizeBytes:    int64(len(data)),
		Bucket:       h.storage.Bucket(),
		S3Key:        key,
		ThumbS3Key:   thumbKey,
		UploaderID:   admin.ID,
	})
	if err != nil {
		writeInternal(w, err)
		return
	}

	resp := uploadResponse{
		ID:       media.ID,
		URL:      h.storage.FileURL(key),
		Filename: media.Filename,
		Size:     media.SizeBytes,
		Type:     media.ContentType,
	}
	if thumbKey != nil {
		resp.ThumbURL = h.storage.FileURL(*thumbKey)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// List returns uploaded media, newest first, with ?limit= and ?offset=
// pagination.
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	items, err := h.media.List(limit, offset)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if items == nil {
		items = []models.Media{}
	}

	total, err := h.media.Count()
	if err != nil {
		writeInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": total,
	})
}

// Get returns a single media record by ID.
func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	media, err := h.media.FindByID(id)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if media == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, media)
}

// Delete removes a media record and its stored objects. Bucket cleanup is
// best-effort: an orphaned object is preferable to a dangling DB row.
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	media, err := h.media.Delete(id)
	if err != nil {
		writeInternal(w, err)
		return
	}
	if media == nil {
		writeNotFound(w)
		return
	}

	if h.storage != nil {
		ctx := r.Context()
		if err := h.storage.Delete(ctx, media.S3Key); err != nil {
			slog.Warn("media object delete failed", "key", media.S3Key, "error", err)
		}
		if media.ThumbS3Key != nil {
			if err := h.storage.Delete(ctx, *media.ThumbS3Key); err != nil {
				slog.Warn("media thumb delete failed", "key", *media.ThumbS3Key, "error", err)
			}
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// makeThumbnail scales the image down to thumbWidth and encodes it as
// JPEG. Returns nil when the source is already small enough or encoding
// fails.
func makeThumbnail(src image.Image) []byte {
	bounds := src.Bounds()
	if bounds.Dx() <= thumbWidth {
		return nil
	}

	height := bounds.Dy() * thumbWidth / bounds.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, thumbWidth, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 80}); err != nil {
		slog.Warn("thumbnail encode failed", "error", err)
		return nil
	}
	return buf.Bytes()
}

// queryInt parses an integer query parameter, falling back to def on a
// missing or malformed value.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
