package meetings

import (
	"encoding/json"
	"net/http"
	"strings"

	"rndvx/internal/api/handlers"
	"rndvx/internal/repositories/sqlconnect"
	"rndvx/internal/services"
	"rndvx/pkg/utils"
)

// FUNC TO CAST A LOCATION VOTE
func CastVoteHandler(w http.ResponseWriter, r *http.Request) {
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

	type voteRequest struct {
		PlaceID      string   `json:"place_id"`
		PlaceName    string   `json:"place_name"`
		PlaceAddress string   `json:"place_address"`
		Lat          *float64 `json:"lat"`
		Lng          *float64 `json:"lng"`
	}

	var req voteRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.PlaceID = strings.TrimSpace(req.PlaceID)
	req.PlaceName = strings.TrimSpace(req.PlaceName)
	if req.PlaceID == "" || req.PlaceName == "" {
		utils.WriteError(w, "place_id and place_name are required", http.StatusBadRequest)
		return
	}

	svc := &services.PlacesService{DB: sqlconnect.DB}
	vote, err := svc.CastVote(r.Context(), meetingID, userID, services.CastVoteInput{
		PlaceID:      req.PlaceID,
		PlaceName:    req.PlaceName,
		PlaceAddress: req.PlaceAddress,
		Lat:          decimalPtr(req.Lat),
		Lng:          decimalPtr(req.Lng),
	})
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSONStatus(w, http.StatusCreated, map[string]interface{}{
		"status": "success",
		"vote":   vote,
	})
}

// FUNC TO TALLY LOCATION VOTES
func TallyVotesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if sqlconnect.DB == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	meetingID, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	svc := &services.PlacesService{DB: sqlconnect.DB}
	tallies, err := svc.TallyVotes(r.Context(), meetingID)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"tallies": tallies,
	})
}
