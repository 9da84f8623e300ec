package handlers

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/fblazt/toolbox/internal/model"
	"github.com/fblazt/toolbox/internal/tools/imageconv"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// uploadField имя поля multipart-формы с файлами.
const uploadField = "files"

func readSources(files []*multipart.FileHeader) ([]imageconv.Source, error) {
	sources := make([]imageconv.Source, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}

		contentType := fh.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}
		sources = append(sources, imageconv.Source{Name: fh.Filename, ContentType: contentType, Data: data})
	}
	return sources, nil
}

// UploadImages конвертирует пакет файлов и добавляет результаты в галерею.
func (h *Handler) UploadImages(w http.ResponseWriter, r *http.Request) {
	quality := h.Quality
	if s := r.URL.Query().Get("quality"); s != "" {
		q, err := strconv.Atoi(s)
		if err != nil {
			h.writeError(w, imageconv.ErrInvalidQuality)
			return
		}
		quality = q
	}
	if err := imageconv.ValidateQuality(quality); err != nil {
		h.writeError(w, err)
		return
	}

	if h.MaxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.Logger.Warn("Bad multipart upload", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "expected multipart form with files"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	sources, err := readSources(r.MultipartForm.File[uploadField])
	if err != nil {
		h.writeError(w, err)
		return
	}

	ws := h.workspace(w, r)
	resp, err := ws.Gallery.AddBatch(r.Context(), sources, quality)
	if err != nil {
		h.writeError(w, err)
		return
	}

	status := http.StatusOK
	switch {
	case resp.State == string(imageconv.StateFailed) && len(resp.Added) == 0:
		status = http.StatusUnprocessableEntity
	case len(resp.Added) > 0:
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

// ListImages отдаёт содержимое галереи.
func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	writeJSON(w, http.StatusOK, model.GalleryResponse{Images: ws.Gallery.List()})
}

// DownloadImage отдаёт WebP-файл по дескриптору.
func (h *Handler) DownloadImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ws := h.workspace(w, r)
	name, data, err := ws.Gallery.Open(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Content-Disposition", attachment(name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// DeleteImage удаляет изображение и освобождает дескриптор.
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ws := h.workspace(w, r)
	if err := ws.Gallery.Remove(id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearImages очищает галерею.
func (h *Handler) ClearImages(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	n := ws.Gallery.Clear()
	h.Logger.Debug("Gallery cleared", zap.Int("released", n))
	w.WriteHeader(http.StatusNoContent)
}

// ArchiveImages отдаёт все изображения одним zip-архивом.
func (h *Handler) ArchiveImages(w http.ResponseWriter, r *http.Request) {
	ws := h.workspace(w, r)
	if ws.Gallery.Len() == 0 {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "no images to download"})
		return
	}
	var buf bytes.Buffer
	if err := ws.Gallery.Archive(&buf); err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", attachment("images.zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
