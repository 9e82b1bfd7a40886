package assessment

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"wellness-agent/internal/recommend"
)

// PDFExporter lays a completed report out as a PDF document.
type PDFExporter interface {
	Build(s Session) ([]byte, error)
}

type Handler struct {
	svc Service
	pdf PDFExporter
}

func NewHandler(svc Service, pdf PDFExporter) *Handler {
	return &Handler{svc: svc, pdf: pdf}
}

const (
	ActionStart   = "start"
	ActionChat    = "chat"
	ActionRestart = "restart"
	ActionClose   = "close"
)

type ConverseRequest struct {
	SessionID        string `json:"sessionId"`
	Message          string `json:"message"`
	Action           string `json:"action"`
	PatientID        string `json:"patientId"`
	PatientName      string `json:"patientName"`
	PatientGender    string `json:"patientGender"`
	PatientDOB       string `json:"patientDob"`
	PractitionerName string `json:"practitionerName"`
	ClinicID         string `json:"clinicId"`
	Locale           string `json:"locale"`
}

func (r ConverseRequest) patientContext() PatientContext {
	return PatientContext{
		ClinicID:         r.ClinicID,
		PatientID:        r.PatientID,
		PatientName:      r.PatientName,
		PatientGender:    r.PatientGender,
		PatientDOB:       r.PatientDOB,
		PractitionerName: r.PractitionerName,
		Locale:           r.Locale,
	}
}

type ReportResponse struct {
	SessionID            string                         `json:"sessionId"`
	ReportID             string                         `json:"reportId,omitempty"`
	Report               string                         `json:"report"`
	RecommendedTherapies []recommend.Recommendation     `json:"recommendedTherapies"`
	Supplements          []recommend.SelectedSupplement `json:"supplements"`
	CompletedAt          *time.Time                     `json:"completedAt,omitempty"`
}

func (h *Handler) Converse(w http.ResponseWriter, r *http.Request) {
	var req ConverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	action := req.Action
	if action == "" {
		action = ActionChat
		if req.SessionID == "" {
			action = ActionStart
		}
	}

	var (
		reply Reply
		err   error
	)
	switch action {
	case ActionStart:
		reply, err = h.svc.Start(r.Context(), req.patientContext())
	case ActionChat:
		if req.SessionID == "" {
			reply, err = h.svc.Start(r.Context(), req.patientContext())
			break
		}
		reply, err = h.svc.Advance(r.Context(), req.SessionID, req.Message)
	case ActionRestart:
		if req.SessionID == "" {
			reply, err = h.svc.Start(r.Context(), req.patientContext())
			break
		}
		reply, err = h.svc.Restart(r.Context(), req.SessionID)
	case ActionClose:
		reply, err = h.svc.Close(r.Context(), req.SessionID)
	default:
		err = fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Session(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	sess, err := h.completedSession(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReportResponse{
		SessionID:            sess.ID,
		ReportID:             sess.ReportID,
		Report:               sess.ReportText,
		RecommendedTherapies: sess.RecommendedTherapies,
		Supplements:          sess.Supplements,
		CompletedAt:          sess.CompletedAt,
	})
}

func (h *Handler) GetReportPDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		writeError(w, http.StatusNotImplemented, "PDF export is not configured")
		return
	}
	sess, err := h.completedSession(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	doc, err := h.pdf.Build(*sess)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"assessment_%s.pdf\"", sess.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (h *Handler) completedSession(r *http.Request) (*Session, error) {
	sess, err := h.svc.Session(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		return nil, err
	}
	if sess.ReportText == "" {
		return nil, ErrReportNotReady
	}
	return sess, nil
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, ErrReportNotReady):
		writeError(w, http.StatusConflict, "Report is not ready yet")
	case errors.Is(err, ErrVersionConflict):
		writeError(w, http.StatusConflict, "Session was updated by another request")
	case errors.Is(err, ErrInvalidAction):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Processing failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/assessment", h.Converse)
	r.Get("/assessment/{sessionID}", h.GetSession)
	r.Get("/assessment/{sessionID}/report", h.GetReport)
	r.Get("/assessment/{sessionID}/report.pdf", h.GetReportPDF)
}
