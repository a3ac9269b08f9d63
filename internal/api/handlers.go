package api

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"notify-dispatch/internal/common/errors"
	"notify-dispatch/internal/reminder"
)

// handleExecute is the natural-language entry point. Reminder commands
// are checked first; everything else goes through the intent router and
// dispatch engine.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "unreadable body")
		return
	}
	if err := validateBody("execute", body); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Text          string `json:"text"`
		ContactMethod string `json:"contactMethod"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed JSON")
		return
	}

	if s.reminders != nil {
		if rem := reminder.ExtractCommand(req.Text, time.Now()); rem != nil {
			if req.ContactMethod == "" {
				writeErrorMessage(w, http.StatusBadRequest, "reminder command requires a contactMethod")
				return
			}
			rem.ContactMethod = req.ContactMethod
			created, err := s.reminders.Create(r.Context(), rem)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]interface{}{
				"kind":     "reminder_created",
				"reminder": created,
			})
			return
		}
	}

	batch, err := s.pipeline.ProcessText(r.Context(), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleSendSMS(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "unreadable body")
		return
	}
	if err := validateBody("sendSMS", body); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Recipients []string `json:"recipients"`
		Message    string   `json:"message"`
		Enhance    *bool    `json:"enhance"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed JSON")
		return
	}

	batch, err := s.sender.SendSMSBatch(r.Context(), req.Recipients, req.Message, req.Enhance == nil || *req.Enhance)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "unreadable body")
		return
	}
	if err := validateBody("sendEmail", body); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Recipients []string `json:"recipients"`
		Subject    string   `json:"subject"`
		Message    string   `json:"message"`
		Enhance    *bool    `json:"enhance"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed JSON")
		return
	}

	batch, err := s.sender.SendEmailBatch(r.Context(), req.Recipients, req.Subject, req.Message, req.Enhance == nil || *req.Enhance)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleSendMixed(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "unreadable body")
		return
	}
	if err := validateBody("sendMixed", body); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Recipients []string `json:"recipients"`
		Subject    string   `json:"subject"`
		Message    string   `json:"message"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed JSON")
		return
	}

	batch, err := s.sender.SendMixedBatch(r.Context(), req.Recipients, req.Subject, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "unreadable body")
		return
	}
	if err := validateBody("createReminder", body); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		ServiceType   string `json:"serviceType"`
		Vehicle       string `json:"vehicle"`
		Description   string `json:"description"`
		DueDate       string `json:"dueDate"`
		ContactMethod string `json:"contactMethod"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "malformed JSON")
		return
	}

	due := reminder.ParseDueDate(req.DueDate, time.Now())

	serviceType := reminder.ServiceType(req.ServiceType)
	if serviceType == "" {
		serviceType = reminder.DetermineServiceType(req.Description)
	}

	created, err := s.reminders.Create(r.Context(), &reminder.Reminder{
		ServiceType:   serviceType,
		Vehicle:       req.Vehicle,
		Description:   req.Description,
		DueDate:       due,
		ContactMethod: req.ContactMethod,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	status := reminder.Status(r.URL.Query().Get("status"))
	reminders, err := s.reminders.List(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	if reminders == nil {
		reminders = []*reminder.Reminder{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reminders": reminders,
		"count":     len(reminders),
	})
}

func (s *Server) handleGetReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := reminderID(w, r)
	if !ok {
		return
	}
	rem, err := s.reminders.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

func (s *Server) handleCompleteReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := reminderID(w, r)
	if !ok {
		return
	}
	if err := s.reminders.Complete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "status": reminder.StatusCompleted})
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := reminderID(w, r)
	if !ok {
		return
	}
	if err := s.reminders.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func reminderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid reminder id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// writeError maps structured application errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var stdErr *errors.StandardError
	if !stderrors.As(err, &stdErr) {
		writeErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch stdErr.Code {
	case errors.ErrCodeNoRecipients, errors.ErrCodeEmptyMessage, errors.ErrCodeUnknownAction:
		status = http.StatusBadRequest
	case errors.ErrCodeNoIntentMatch:
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeReminderNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeDuplicateReminder:
		status = http.StatusConflict
	}

	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   stdErr.Message,
		"code":    stdErr.Code,
		"details": stdErr.Details,
	})
}
