package gateway

import (
	"encoding/json"
	"fmt"
	"html/template"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/pagevoice/pagevoice/pkg/logger"
	"github.com/pagevoice/pagevoice/pkg/media"
	"github.com/pagevoice/pagevoice/pkg/utils"
)

// 50 MB covers a book-sized PDF plus a couple minutes of reference audio.
const maxUploadBytes = 50 << 20

type narrateResponse struct {
	Audio string `json:"audio,omitempty"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	tmpl, err := template.ParseFS(templates, "templates/index.html")
	if err != nil {
		http.Error(w, "Failed to load template", http.StatusInternalServerError)
		return
	}

	data := struct {
		Title        string
		DefaultVoice string
	}{
		Title:        "PageVoice",
		DefaultVoice: s.cfg.Hosted.VoiceID,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		logger.ErrorCF("gateway", "Failed to execute template", map[string]any{
			"error": err.Error(),
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"hosted_ready": s.cfg.Hosted.APIKey != "",
	})
}

func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	voices, err := s.registry.ListVoices(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, voices)
}

// handleNarrate runs the PDF page to hosted speech pipeline on an
// uploaded document.
func (s *Server) handleNarrate(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.RequireHostedKey(); err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	page, err := strconv.Atoi(r.FormValue("page"))
	if err != nil || page < 1 {
		writeJSONError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}

	scope := uuid.New().String()[:8]
	defer s.uploads.ReleaseAll(scope)

	pdfPath, err := s.saveFormFile(r, "pdf", "pdf", scope)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	audio := s.pipe.PageToHostedSpeech(r.Context(), pdfPath, page, r.FormValue("voice_id"))
	if audio == "" {
		writeJSON(w, http.StatusOK, narrateResponse{Error: "narration failed, see server log"})
		return
	}

	text := s.readSidecar(page)
	writeJSON(w, http.StatusOK, narrateResponse{
		Audio: "/audio/" + filepath.Base(audio),
		Text:  text,
	})
}

// handleExtract runs extraction alone and returns the raw page text.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	page, err := strconv.Atoi(r.FormValue("page"))
	if err != nil || page < 1 {
		writeJSONError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}

	scope := uuid.New().String()[:8]
	defer s.uploads.ReleaseAll(scope)

	pdfPath, err := s.saveFormFile(r, "pdf", "pdf", scope)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	text := s.pipe.ExtractOnly(pdfPath, page)
	if text == "" {
		writeJSON(w, http.StatusOK, narrateResponse{Error: "no text extracted, see server log"})
		return
	}
	writeJSON(w, http.StatusOK, narrateResponse{Text: text})
}

// handleClone synthesizes an uploaded text file with an uploaded
// reference voice sample through the local cloning server.
func (s *Server) handleClone(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	scope := uuid.New().String()[:8]
	defer s.uploads.ReleaseAll(scope)

	textPath, err := s.saveFormFile(r, "text", "text", scope)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	refPath, err := s.saveFormFile(r, "reference", "reference", scope)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	audio := s.pipe.TextToClonedSpeech(r.Context(), textPath, refPath, r.FormValue("language"))
	if audio == "" {
		writeJSON(w, http.StatusOK, narrateResponse{Error: "cloning failed, see server log"})
		return
	}
	writeJSON(w, http.StatusOK, narrateResponse{Audio: "/audio/" + filepath.Base(audio)})
}

// saveFormFile stores one multipart file field through the upload store
// and returns its local path.
func (s *Server) saveFormFile(r *http.Request, field, kind, scope string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("missing %s upload", field)
	}
	defer file.Close()

	if err := checkUploadKind(kind, header); err != nil {
		return "", err
	}

	_, localPath, err := s.uploads.Save(file, media.UploadMeta{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Kind:        kind,
	}, scope)
	if err != nil {
		return "", err
	}
	return localPath, nil
}

func checkUploadKind(kind string, header *multipart.FileHeader) error {
	contentType := header.Header.Get("Content-Type")
	switch kind {
	case "pdf":
		if !utils.IsPDFFile(header.Filename, contentType) {
			return fmt.Errorf("%s does not look like a PDF", header.Filename)
		}
	case "reference":
		if !utils.IsAudioFile(header.Filename, contentType) {
			return fmt.Errorf("%s does not look like an audio file", header.Filename)
		}
	}
	return nil
}

func (s *Server) readSidecar(page int) string {
	data, err := os.ReadFile(s.pipe.SidecarPath(page))
	if err != nil {
		return ""
	}
	return string(data)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.ErrorCF("gateway", "Failed to encode response", map[string]any{
			"error": err.Error(),
		})
	}
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
