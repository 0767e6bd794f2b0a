package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/zdunecki/qrwizard/pkg/design"
	"github.com/zdunecki/qrwizard/pkg/history"
	"github.com/zdunecki/qrwizard/pkg/preview"
	"github.com/zdunecki/qrwizard/pkg/qrtypes"
	"github.com/zdunecki/qrwizard/pkg/session"
	"github.com/zdunecki/qrwizard/pkg/transform"
	"github.com/zdunecki/qrwizard/pkg/wizard"
)

type errorResponse struct {
	Error   string               `json:"error"`
	Message string               `json:"message"`
	Fields  []qrtypes.FieldError `json:"fields,omitempty"`
}

type stateResponse struct {
	State     wizard.State         `json:"state"`
	Reachable map[wizard.Step]bool `json:"reachable"`
	Path      string               `json:"path"`
	Preview   preview.Snapshot     `json:"preview"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: http.StatusText(status), Message: message})
}

// writeWizardError maps wizard, registry and session errors to statuses.
func writeWizardError(w http.ResponseWriter, err error) {
	var verr *qrtypes.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   http.StatusText(http.StatusUnprocessableEntity),
			Message: verr.Error(),
			Fields:  verr.Fields,
		})
	case errors.Is(err, wizard.ErrStepBlocked):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, wizard.ErrUnknownStep), errors.Is(err, session.ErrNoArtifact):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, qrtypes.ErrUnknownType):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) state() stateResponse {
	st := s.sess.Store().State()
	reachable := make(map[wizard.Step]bool, len(wizard.Steps))
	for _, step := range wizard.Steps {
		reachable[step] = s.sess.Store().CanGoToStep(step)
	}
	return stateResponse{
		State:     st,
		Reachable: reachable,
		Path:      s.sess.History().Path(),
		Preview:   s.sess.Engine().Snapshot(),
	}
}

func (s *Server) writeState(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w)
}

func (s *Server) handleListTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Types().List())
}

func (s *Server) handleSetType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.sess.SelectType(strings.TrimSpace(req.Type)); err != nil {
		writeWizardError(w, err)
		return
	}
	s.writeState(w)
}

func (s *Server) handleSetData(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Data map[string]any `json:"data"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.sess.Store().SetQRData(req.Data)
	s.writeState(w)
}

func (s *Server) handleSetSize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Size int `json:"size"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Size <= 0 {
		writeError(w, http.StatusBadRequest, "size must be positive")
		return
	}
	s.sess.Store().SetQRSize(req.Size)
	s.writeState(w)
}

var errorCorrectionLevels = map[string]bool{"L": true, "M": true, "Q": true, "H": true}

func (s *Server) handleSetErrorCorrection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Level string `json:"level"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	level := strings.ToUpper(strings.TrimSpace(req.Level))
	if !errorCorrectionLevels[level] {
		writeError(w, http.StatusBadRequest, "level must be one of L, M, Q, H")
		return
	}
	s.sess.Store().SetErrorCorrectionLevel(level)
	s.writeState(w)
}

func (s *Server) handleSetDesign(w http.ResponseWriter, r *http.Request) {
	var cfg design.Config
	if err := decodeBody(r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.sess.Store().SetDesignerConfig(&cfg)
	s.writeState(w)
}

func (s *Server) handleUpdateDesign(w http.ResponseWriter, r *http.Request) {
	var partial design.Config
	if err := decodeBody(r, &partial); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.sess.Store().UpdateDesignerConfig(&partial)
	s.writeState(w)
}

func (s *Server) handleSetSticker(w http.ResponseWriter, r *http.Request) {
	var sc wizard.StickerConfig
	if err := decodeBody(r, &sc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.sess.Store().SetStickerConfig(&sc)
	s.writeState(w)
}

func (s *Server) handleSetMetadata(w http.ResponseWriter, r *http.Request) {
	var md wizard.Metadata
	if err := decodeBody(r, &md); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.sess.Store().SetMetadata(&md)
	s.writeState(w)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	if err := s.sess.Next(); err != nil {
		writeWizardError(w, err)
		return
	}
	s.writeState(w)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.sess.Back()
	s.writeState(w)
}

func (s *Server) handleGoTo(w http.ResponseWriter, r *http.Request) {
	step, err := wizard.ParseStep(mux.Vars(r)["step"])
	if err != nil {
		writeWizardError(w, err)
		return
	}
	if err := s.sess.GoTo(step); err != nil {
		writeWizardError(w, err)
		return
	}
	s.writeState(w)
}

// handlePopState receives the state of the history entry a browser landed
// on. A blocked step is answered with the path the browser must push back.
func (s *Server) handlePopState(w http.ResponseWriter, r *http.Request) {
	var entry *history.Entry
	if err := decodeBody(r, &entry); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.sess.Adapter().PopState(entry)
	s.writeState(w)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.sess.Store().ResetWizard()
	s.writeState(w)
}

func (s *Server) handleClearPersisted(w http.ResponseWriter, r *http.Request) {
	s.sess.Store().ClearPersistedState()
	s.writeState(w)
}

func (s *Server) handleMarkClean(w http.ResponseWriter, r *http.Request) {
	s.sess.Store().MarkClean()
	s.writeState(w)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Engine().Snapshot())
}

func (s *Server) handlePreviewSVG(w http.ResponseWriter, r *http.Request) {
	artifact, ok := s.sess.Engine().Artifact()
	if !ok {
		writeError(w, http.StatusNotFound, "no preview available")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprint(w, artifact)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.sess.Engine().Refresh()
	writeJSON(w, http.StatusAccepted, s.sess.Engine().Snapshot())
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	st := s.sess.Store().State()
	if st.CurrentStep != wizard.StepDownload {
		writeWizardError(w, fmt.Errorf("download: %w", wizard.ErrStepBlocked))
		return
	}
	if _, ok := s.sess.Engine().Artifact(); !ok {
		writeWizardError(w, session.ErrNoArtifact)
		return
	}

	name := "qr-code"
	if st.Metadata != nil && strings.TrimSpace(st.Metadata.Name) != "" {
		name = strings.TrimSpace(st.Metadata.Name)
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".svg"))
	if err := s.sess.Download(w); err != nil {
		s.log.Error("download failed", "error", err)
	}
}

func (s *Server) handleToBackend(w http.ResponseWriter, r *http.Request) {
	var cfg design.Config
	if err := decodeBody(r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, transform.ToBackend(&cfg))
}

func (s *Server) handleFromBackend(w http.ResponseWriter, r *http.Request) {
	var b transform.BackendDesignConfig
	if err := decodeBody(r, &b); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, transform.FromBackend(b))
}
