package meetings

import (
	"encoding/json"
	"net/http"

	"rndvx/internal/api/handlers"
	"rndvx/internal/repositories/sqlconnect"
	"rndvx/internal/services"
	"rndvx/pkg/utils"
)

// FUNC TO GENERATE RECURRING INSTANCES
func GenerateInstancesHandler(w http.ResponseWriter, r *http.Request) {
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

	meetingID, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	type generateRequest struct {
		Count *int `json:"count"`
	}

	count := 4
	if r.ContentLength > 0 {
		var req generateRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
			return
		}
		if req.Count != nil {
			count = *req.Count
		}
	}
	defer r.Body.Close()

	svc := &services.RecurrenceService{DB: sqlconnect.DB}
	instances, err := svc.GenerateInstances(r.Context(), meetingID, userID, count)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSONStatus(w, http.StatusCreated, map[string]interface{}{
		"status":    "success",
		"count":     len(instances),
		"instances": instances,
	})
}
