package meetings

import (
	"encoding/json"
	"net/http"
	"strings"

	"rndvx/internal/api/handlers"
	"rndvx/internal/models"
	"rndvx/internal/repositories/sqlconnect"
	"rndvx/internal/services"
	"rndvx/pkg/utils"
)

func rsvpService() *services.RsvpService {
	return &services.RsvpService{DB: sqlconnect.DB, Mailer: utils.SMTPMailer{}}
}

// FUNC TO SET OR CHANGE AN RSVP
func UpsertRsvpHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if sqlconnect.DB == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	userID, ok := handlers.UserIDFromContext(r)
	if !ok {
		utils.WriteError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	meetingID, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	type rsvpRequest struct {
		Status string `json:"status"`
	}

	var req rsvpRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	if !models.ValidRsvpStatus(req.Status) {
		utils.WriteError(w, "status must be PENDING, YES, NO or MAYBE", http.StatusBadRequest)
		return
	}

	rsvp, err := rsvpService().Upsert(r.Context(), meetingID, userID, req.Status)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"rsvp":   rsvp,
	})
}

// FUNC TO LIST RSVPS FOR A MEETING
func ListRsvpsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if sqlconnect.DB == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	userID, ok := handlers.UserIDFromContext(r)
	if !ok {
		utils.WriteError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	meetingID, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	rsvps, err := rsvpService().List(r.Context(), meetingID, userID)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(rsvps),
		"rsvps":  rsvps,
	})
}

// FUNC TO WITHDRAW AN RSVP
func DeleteRsvpHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if sqlconnect.DB == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	userID, ok := handlers.UserIDFromContext(r)
	if !ok {
		utils.WriteError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	meetingID, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	if err := rsvpService().Delete(r.Context(), meetingID, userID); err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
