package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ytqa/internal/language"
	"ytqa/internal/logging"
	"ytqa/internal/pipeline"
	"ytqa/internal/services"
	"ytqa/internal/transcript"
)

const maxBodyBytes = 64 << 10

type pageData struct {
	SessionID string
	URL       string
	Question  string
	Language  string
	Segments  []transcript.Segment
	Answer    string
	Error     string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{SessionID: sessionFor(w, r)}
	s.fillTranscript(r, &data)
	s.renderPage(w, http.StatusOK, data)
}

func (s *Server) handleTranscribePage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data := pageData{SessionID: sessionFor(w, r), URL: strings.TrimSpace(r.FormValue("url"))}

	t, err := s.actions.Transcribe(r.Context(), data.SessionID, data.URL)
	if err != nil {
		data.Error = pipeline.Describe(err)
		s.fillTranscript(r, &data)
		s.renderPage(w, statusFor(err), data)
		return
	}
	data.Language = language.Describe(t.Language, t.LanguageProbability)
	data.Segments = t.Segments
	s.renderPage(w, http.StatusOK, data)
}

func (s *Server) handleAskPage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data := pageData{SessionID: sessionFor(w, r), Question: strings.TrimSpace(r.FormValue("question"))}

	reply, err := s.actions.Ask(r.Context(), data.SessionID, data.Question)
	status := http.StatusOK
	if err != nil {
		data.Error = pipeline.Describe(err)
		status = statusFor(err)
	} else {
		data.Answer = reply
	}
	s.fillTranscript(r, &data)
	s.renderPage(w, status, data)
}

type transcribeRequest struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id,omitempty"`
}

type transcribeResponse struct {
	SessionID string               `json:"session_id"`
	Language  string               `json:"language"`
	FullText  string               `json:"full_text"`
	Segments  []transcript.Segment `json:"segments"`
}

type askRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

type askResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) handleTranscribeAPI(w http.ResponseWriter, r *http.Request) {
	var req transcribeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	sessionID := apiSession(w, r, req.SessionID)
	t, err := s.actions.Transcribe(r.Context(), sessionID, strings.TrimSpace(req.URL))
	if err != nil {
		s.writeActionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, transcribeResponse{
		SessionID: sessionID,
		Language:  t.Language,
		FullText:  t.FullText,
		Segments:  t.Segments,
	})
}

func (s *Server) handleAskAPI(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	sessionID := apiSession(w, r, req.SessionID)
	reply, err := s.actions.Ask(r.Context(), sessionID, req.Question)
	if err != nil {
		s.writeActionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, askResponse{SessionID: sessionID, Answer: reply})
}

func (s *Server) handleSegmentsAPI(w http.ResponseWriter, r *http.Request) {
	sessionID := apiSession(w, r, r.URL.Query().Get("session_id"))
	t, err := s.actions.Segments(r.Context(), sessionID)
	if err != nil {
		s.writeActionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, transcribeResponse{
		SessionID: sessionID,
		Language:  t.Language,
		FullText:  t.FullText,
		Segments:  t.Segments,
	})
}

func apiSession(w http.ResponseWriter, r *http.Request, explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	return sessionFor(w, r)
}

// fillTranscript shows the session's saved transcript, if any, under the form.
func (s *Server) fillTranscript(r *http.Request, data *pageData) {
	if len(data.Segments) > 0 {
		return
	}
	t, err := s.actions.Segments(r.Context(), data.SessionID)
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			logging.WithContext(r.Context(), s.logger).Debug("saved transcript unavailable", logging.Error(err))
		}
		return
	}
	data.Language = language.Describe(t.Language, t.LanguageProbability)
	data.Segments = t.Segments
}

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("failed to render page", logging.Error(err))
	}
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error(), Kind: "ValidationError"})
		return false
	}
	return true
}

func (s *Server) writeActionError(w http.ResponseWriter, err error) {
	s.writeJSON(w, statusFor(err), errorResponse{Error: pipeline.Describe(err), Kind: services.Kind(err)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrDownload),
		errors.Is(err, services.ErrEmbedding),
		errors.Is(err, services.ErrAnswerGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
