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

	"github.com/shopspring/decimal"
)

func meetingService() *services.MeetingService {
	return &services.MeetingService{DB: sqlconnect.DB, Mailer: utils.SMTPMailer{}}
}

type meetingRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	GroupID         *int     `json:"group_id"`
	DateTime        string   `json:"date_time"`
	DurationMinutes *int     `json:"duration_minutes"`
	QuorumThreshold *int     `json:"quorum_threshold"`
	Recurrence      *string  `json:"recurrence"`
	LocationName    string   `json:"location_name"`
	LocationAddress string   `json:"location_address"`
	LocationPlaceID string   `json:"location_place_id"`
	LocationLat     *float64 `json:"location_lat"`
	LocationLng     *float64 `json:"location_lng"`
}

func decimalPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

// FUNC TO LIST MEETINGS FOR THE LOGGED-IN USER
func ListMeetingsHandler(w http.ResponseWriter, r *http.Request) {
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

	meetings, err := meetingService().List(r.Context(), userID)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":   "success",
		"count":    len(meetings),
		"meetings": meetings,
	})
}

// FUNC TO GET ONE MEETING
func GetMeetingHandler(w http.ResponseWriter, r *http.Request) {
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

	meeting, err := meetingService().Get(r.Context(), meetingID)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"meeting": meeting,
	})
}

// FUNC TO CREATE A MEETING
func CreateMeetingHandler(w http.ResponseWriter, r *http.Request) {
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

	var req meetingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		utils.WriteError(w, "title is required", http.StatusBadRequest)
		return
	}
	if req.DateTime == "" {
		utils.WriteError(w, "date_time is required", http.StatusBadRequest)
		return
	}

	dateTime, err := handlers.ParseDateTime(req.DateTime)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	input := services.CreateMeetingInput{
		Title:           req.Title,
		Description:     req.Description,
		GroupID:         req.GroupID,
		DateTime:        dateTime,
		LocationName:    req.LocationName,
		LocationAddress: req.LocationAddress,
		LocationPlaceID: req.LocationPlaceID,
		LocationLat:     decimalPtr(req.LocationLat),
		LocationLng:     decimalPtr(req.LocationLng),
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			utils.WriteError(w, "duration_minutes must be positive", http.StatusBadRequest)
			return
		}
		input.DurationMinutes = *req.DurationMinutes
	}
	if req.QuorumThreshold != nil {
		if *req.QuorumThreshold < 1 {
			utils.WriteError(w, "quorum_threshold must be at least 1", http.StatusBadRequest)
			return
		}
		input.QuorumThreshold = *req.QuorumThreshold
	}
	if req.Recurrence != nil {
		if !models.ValidRecurrence(*req.Recurrence) {
			utils.WriteError(w, "invalid recurrence rule", http.StatusBadRequest)
			return
		}
		input.Recurrence = *req.Recurrence
	}

	meeting, err := meetingService().Create(r.Context(), userID, input)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSONStatus(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"meeting": meeting,
	})
}

// FUNC TO UPDATE A MEETING
func UpdateMeetingHandler(w http.ResponseWriter, r *http.Request) {
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

	meetingID, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	type updateRequest struct {
		Title           *string  `json:"title"`
		Description     *string  `json:"description"`
		DateTime        *string  `json:"date_time"`
		DurationMinutes *int     `json:"duration_minutes"`
		QuorumThreshold *int     `json:"quorum_threshold"`
		Recurrence      *string  `json:"recurrence"`
		LocationName    *string  `json:"location_name"`
		LocationAddress *string  `json:"location_address"`
		LocationPlaceID *string  `json:"location_place_id"`
		LocationLat     *float64 `json:"location_lat"`
		LocationLng     *float64 `json:"location_lng"`
		Status          *string  `json:"status"`
	}

	var req updateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	input := services.UpdateMeetingInput{
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		QuorumThreshold: req.QuorumThreshold,
		Recurrence:      req.Recurrence,
		LocationName:    req.LocationName,
		LocationAddress: req.LocationAddress,
		LocationPlaceID: req.LocationPlaceID,
		LocationLat:     decimalPtr(req.LocationLat),
		LocationLng:     decimalPtr(req.LocationLng),
		Status:          req.Status,
	}
	if req.DateTime != nil {
		dateTime, err := handlers.ParseDateTime(*req.DateTime)
		if err != nil {
			handlers.WriteDomainError(w, err)
			return
		}
		input.DateTime = &dateTime
	}
	if req.Recurrence != nil && !models.ValidRecurrence(*req.Recurrence) {
		utils.WriteError(w, "invalid recurrence rule", http.StatusBadRequest)
		return
	}

	meeting, err := meetingService().Update(r.Context(), meetingID, userID, input)
	if err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"meeting": meeting,
	})
}

// FUNC TO DELETE A MEETING
func DeleteMeetingHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := meetingService().Delete(r.Context(), meetingID, userID); err != nil {
		handlers.WriteDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
