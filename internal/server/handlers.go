package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/alnah/textflow"
)

type executeResponse struct {
	Text        string             `json:"text"`
	ContentType string             `json:"contentType"`
	Source      string             `json:"source"`
	Extension   string             `json:"extension,omitempty"`
	Container   textflow.Container `json:"container"`
	History     *textflow.History  `json:"history,omitempty"`
}

type validateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

type commandInfo struct {
	Name                string             `json:"name"`
	Title               string             `json:"title,omitempty"`
	Description         string             `json:"description,omitempty"`
	Args                []textflow.ArgSpec `json:"args"`
	AllowedContentTypes []string           `json:"allowedContentTypes"`
	Passthrough         bool               `json:"passthrough"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) handleCommands(w http.ResponseWriter, _ *http.Request) {
	cmds := s.registry.Commands()
	out := make([]commandInfo, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, commandInfo{
			Name:                c.Name,
			Title:               c.Title,
			Description:         c.Description,
			Args:                c.Args,
			AllowedContentTypes: c.AllowedContentTypes,
			Passthrough:         c.Passthrough,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	req, ok := s.readRequest(w, r)
	if !ok {
		return
	}

	p := textflow.NewPipeline(s.registry, req.Commands,
		textflow.WithLogger(s.logger.With("request_id", RequestID(r.Context()))),
		textflow.WithObservers(s.observers...),
		textflow.WithDebug(req.Debug),
	)
	doc := p.Execute(r.Context(), textflow.NewWorkingData(req.Input, req.ContentType, req.Source))

	resp := executeResponse{
		Text:        doc.Text,
		ContentType: doc.ResolvedContentType(),
		Source:      doc.Source,
		Extension:   doc.Extension,
		Container:   doc.Container,
	}
	if req.History {
		resp.History = &doc.History
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.readRequest(w, r)
	if !ok {
		return
	}

	errs := textflow.ValidateCommands(s.registry, req.Commands)
	if errs == nil {
		errs = []string{}
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: len(errs) == 0, Errors: errs})
}

// readRequest decodes the body, writing the error response itself on failure.
func (s *Server) readRequest(w http.ResponseWriter, r *http.Request) (*executeRequest, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "reading request body failed")
		return nil, false
	}

	req, err := parseRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
