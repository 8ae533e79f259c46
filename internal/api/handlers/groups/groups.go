package groups

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

func groupService() *services.GroupService {
	return &services.GroupService{DB: sqlconnect.DB}
}

// FUNC TO LIST THE LOGGED-IN USER'S GROUPS
func ListGroupsHandler(w http.ResponseWriter, r *http.Request) {
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

	groups, err := groupService().List(r.Context(), userID)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(groups),
		"groups": groups,
	})
}

// FUNC TO GET ONE GROUP WITH ITS MEMBERS
func GetGroupHandler(w http.ResponseWriter, r *http.Request) {
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

	groupID, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	group, err := groupService().Get(r.Context(), groupID, userID)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"group":  group,
	})
}

// FUNC TO CREATE A GROUP
func CreateGroupHandler(w http.ResponseWriter, r *http.Request) {
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

	type groupRequest struct {
		Name string `json:"name"`
	}

	var req groupRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		utils.WriteError(w, "name is required", http.StatusBadRequest)
		return
	}

	group, err := groupService().Create(r.Context(), userID, req.Name)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSONStatus(w, http.StatusCreated, map[string]interface{}{
		"status": "success",
		"group":  group,
	})
}

// FUNC TO RENAME A GROUP
func UpdateGroupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPatch {
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

	groupID, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	type groupRequest struct {
		Name string `json:"name"`
	}

	var req groupRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		utils.WriteError(w, "name is required", http.StatusBadRequest)
		return
	}

	group, err := groupService().Update(r.Context(), groupID, userID, req.Name)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"group":  group,
	})
}

// FUNC TO DELETE A GROUP
func DeleteGroupHandler(w http.ResponseWriter, r *http.Request) {
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

	groupID, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	if err := groupService().Delete(r.Context(), groupID, userID); err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// FUNC TO ADD A GROUP MEMBER
func AddMemberHandler(w http.ResponseWriter, r *http.Request) {
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

	groupID, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	type memberRequest struct {
		UserID int    `json:"user_id"`
		Role   string `json:"role"`
	}

	var req memberRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.UserID <= 0 {
		utils.WriteError(w, "user_id is required", http.StatusBadRequest)
		return
	}
	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))

	member, err := groupService().AddMember(r.Context(), groupID, userID, req.UserID, req.Role)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSONStatus(w, http.StatusCreated, map[string]interface{}{
		"status": "success",
		"member": member,
	})
}

// FUNC TO CHANGE A MEMBER ROLE
func UpdateMemberRoleHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPatch {
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

	groupID, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}
	memberID, err := handlers.PathID(r, "userId")
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	type roleRequest struct {
		Role string `json:"role"`
	}

	var req roleRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
	if req.Role != models.RoleAdmin && req.Role != models.RoleMember {
		utils.WriteError(w, "role must be ADMIN or MEMBER", http.StatusBadRequest)
		return
	}

	member, err := groupService().UpdateMemberRole(r.Context(), groupID, userID, memberID, req.Role)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"member": member,
	})
}

// FUNC TO REMOVE A GROUP MEMBER
func RemoveMemberHandler(w http.ResponseWriter, r *http.Request) {
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

	groupID, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}
	memberID, err := handlers.PathID(r, "userId")
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	if err := groupService().RemoveMember(r.Context(), groupID, userID, memberID); err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
