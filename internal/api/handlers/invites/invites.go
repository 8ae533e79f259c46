package invites

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

func inviteService() *services.InviteService {
	return &services.InviteService{DB: sqlconnect.DB, Mailer: utils.SMTPMailer{}}
}

// FUNC TO LIST INVITES FOR THE LOGGED-IN USER
func ListInvitesHandler(w http.ResponseWriter, r *http.Request) {
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

	invites, err := inviteService().List(r.Context(), userID)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"count":   len(invites),
		"invites": invites,
	})
}

// FUNC TO LOOK UP AN INVITE BY TOKEN
func GetInviteByTokenHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if sqlconnect.DB == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	token := strings.TrimSpace(r.PathValue("token"))
	if token == "" {
		utils.WriteError(w, "invalid token in path", http.StatusBadRequest)
		return
	}

	invite, err := inviteService().GetByToken(r.Context(), token)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"invite": invite,
	})
}

// FUNC TO CREATE AN INVITE
func CreateInviteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
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

	type inviteRequest struct {
		InviteeEmail string  `json:"invitee_email"`
		GroupID      *int    `json:"group_id"`
		MeetingID    *int    `json:"meeting_id"`
		ExpiresAt    *string `json:"expires_at"`
	}

	var req inviteRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.InviteeEmail = strings.ToLower(strings.TrimSpace(req.InviteeEmail))
	if req.InviteeEmail == "" || !strings.Contains(req.InviteeEmail, "@") {
		utils.WriteError(w, "a valid invitee_email is required", http.StatusBadRequest)
		return
	}
	if req.GroupID == nil && req.MeetingID == nil {
		utils.WriteError(w, "group_id or meeting_id is required", http.StatusBadRequest)
		return
	}

	input := services.CreateInviteInput{
		InviteeEmail: req.InviteeEmail,
		GroupID:      req.GroupID,
		MeetingID:    req.MeetingID,
	}
	if req.ExpiresAt != nil {
		expiresAt, err := handlers.ParseDateTime(*req.ExpiresAt)
		if err != nil {
			handlers.WriteDomainError(w, err)
			return
		}
		input.ExpiresAt = &expiresAt
	}

	invite, err := inviteService().Create(r.Context(), userID, input)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSONStatus(w, http.StatusCreated, map[string]interface{}{
		"status": "success",
		"invite": invite,
	})
}

// FUNC TO ACCEPT OR DECLINE AN INVITE
func RespondInviteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
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

	token := strings.TrimSpace(r.PathValue("token"))
	if token == "" {
		utils.WriteError(w, "invalid token in path", http.StatusBadRequest)
		return
	}

	type respondRequest struct {
		Status string `json:"status"`
	}

	var req respondRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	if req.Status != models.InviteStatusAccepted && req.Status != models.InviteStatusDeclined {
		utils.WriteError(w, "status must be ACCEPTED or DECLINED", http.StatusBadRequest)
		return
	}

	invite, err := inviteService().Respond(r.Context(), token, userID, req.Status)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"invite": invite,
	})
}

// FUNC TO REVOKE AN INVITE
func DeleteInviteHandler(w http.ResponseWriter, r *http.Request) {
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

	inviteID, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	if err := inviteService().Delete(r.Context(), inviteID, userID); err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
