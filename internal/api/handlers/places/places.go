package places

import (
	"net/http"
	"strings"

	"rndvx/internal/api/handlers"
	"rndvx/internal/repositories/sqlconnect"
	"rndvx/internal/services"
	"rndvx/pkg/utils"
)

// FUNC TO SEARCH PLACES
func SearchPlacesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		utils.WriteError(w, "query parameter q is required", http.StatusBadRequest)
		return
	}

	svc := &services.PlacesService{DB: sqlconnect.DB}
	results := svc.Search(query)

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(results),
		"places": results,
	})
}

// FUNC TO GET PLACE DETAILS
func PlaceDetailsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	placeID := strings.TrimSpace(r.PathValue("placeId"))
	if placeID == "" {
		utils.WriteError(w, "invalid placeId in path", http.StatusBadRequest)
		return
	}

	svc := &services.PlacesService{DB: sqlconnect.DB}
	place, err := svc.Details(placeID)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"place":  place,
	})
}

// FUNC TO AUTO-PICK A PLACE FOR A MEETING
func AutoPickHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
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
	place, err := svc.AutoPick(r.Context(), meetingID)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"place":  place,
	})
}
