package rest

import (
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/archdrive/internal/common"
	"github.com/dmitrijs2005/archdrive/internal/server/keys"
)

func (s *HTTPServer) uploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.writeError(w, r, "upload", common.InvalidInput("malformed multipart body: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, "upload", common.InvalidInput("multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	stored, err := s.files.UploadFile(r.Context(), file, header.Filename, header.Header.Get("Content-Type"), r.FormValue("folder"))
	s.recorder.ObserveOperation("upload", err)
	if err != nil {
		s.writeError(w, r, "upload", err)
		return
	}

	writeJSON(w, http.StatusCreated, stored)
}

func (s *HTTPServer) listFiles(w http.ResponseWriter, r *http.Request) {
	list, err := s.files.ListFiles(r.Context(), r.URL.Query().Get("folder"))
	s.recorder.ObserveOperation("list_files", err)
	if err != nil {
		s.writeError(w, r, "list files", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) listFolders(w http.ResponseWriter, r *http.Request) {
	list, err := s.folders.ListFolders(r.Context(), r.URL.Query().Get("parent"))
	s.recorder.ObserveOperation("list_folders", err)
	if err != nil {
		s.writeError(w, r, "list folders", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) createFolder(w http.ResponseWriter, r *http.Request) {
	folder, err := s.folders.CreateFolder(r.Context(), r.FormValue("name"), r.FormValue("parent"))
	s.recorder.ObserveOperation("create_folder", err)
	if err != nil {
		s.writeError(w, r, "create folder", err)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

func (s *HTTPServer) deleteFolder(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		s.writeError(w, r, "delete folder", common.InvalidInput("malformed folder name"))
		return
	}

	err = s.folders.DeleteFolder(r.Context(), name)
	s.recorder.ObserveOperation("delete_folder", err)
	if err != nil {
		s.writeError(w, r, "delete folder", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) deleteFile(w http.ResponseWriter, r *http.Request) {
	key, ok := s.fileNameParam(w, r)
	if !ok {
		return
	}

	err := s.files.DeleteFile(r.Context(), key)
	s.recorder.ObserveOperation("delete_file", err)
	if err != nil {
		s.writeError(w, r, "delete file", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// downloadFile sends the object as an attachment named after the original
// upload.
func (s *HTTPServer) downloadFile(w http.ResponseWriter, r *http.Request) {
	s.serveObject(w, r, "download", "attachment", func(string) string { return common.DefaultContentType })
}

// previewFile sends the object inline with a content type derived from the
// file extension.
func (s *HTTPServer) previewFile(w http.ResponseWriter, r *http.Request) {
	s.serveObject(w, r, "preview", "inline", previewContentType)
}

func (s *HTTPServer) serveObject(w http.ResponseWriter, r *http.Request, op, disposition string, contentType func(name string) string) {
	key, ok := s.fileNameParam(w, r)
	if !ok {
		return
	}

	body, info, err := s.files.DownloadFile(r.Context(), key)
	s.recorder.ObserveOperation(op, err)
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}
	defer body.Close()

	name := keys.ParseDisplayName(key)
	h := w.Header()
	h.Set("Content-Type", contentType(name))
	if cd := mime.FormatMediaType(disposition, map[string]string{"filename": name}); cd != "" {
		h.Set("Content-Disposition", cd)
	} else {
		h.Set("Content-Disposition", disposition)
	}
	if info.Size > 0 {
		h.Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		s.logger.Warn(r.Context(), op+" interrupted", "key", key, "error", err)
	}
}

func (s *HTTPServer) fileNameParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.URL.Query().Get("fileName")
	if strings.TrimSpace(key) == "" {
		s.writeError(w, r, "request", common.InvalidInput("query parameter \"fileName\" is required"))
		return "", false
	}
	return key, true
}
