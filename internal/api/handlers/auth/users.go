package auth

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"rndvx/internal/api/handlers"
	"rndvx/internal/models"
	"rndvx/internal/repositories/sqlconnect"
	"rndvx/pkg/utils"
)

// FUNC TO REGISTER USERS
func RegisterUsersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	type registerRequest struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}

	var req registerRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if req.Email == "" || req.Name == "" || req.Password == "" {
		utils.WriteError(w, "email, name and password are required", http.StatusBadRequest)
		return
	}
	if !strings.Contains(req.Email, "@") {
		utils.WriteError(w, "invalid email address", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		utils.WriteError(w, "password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	hashedPwd, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.WriteError(w, "error hashing password", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC().Format(models.DateTimeLayout)
	res, err := db.Exec(`
		INSERT INTO users (email, name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, req.Email, req.Name, hashedPwd, now, now)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") || strings.Contains(err.Error(), "UNIQUE constraint") {
			utils.WriteError(w, "email already registered", http.StatusConflict)
			return
		}
		utils.Logger.Errorf("failed to insert user: %v", err)
		utils.WriteError(w, "error signing up", http.StatusInternalServerError)
		return
	}

	id, err := res.LastInsertId()
	if err != nil {
		utils.Logger.Errorf("failed to get last insert ID: %v", err)
		utils.WriteError(w, "error signing up", http.StatusInternalServerError)
		return
	}

	tokenString, err := utils.SignToken(int(id), req.Email)
	if err != nil {
		utils.Logger.Errorf("could not create session token: %v", err)
		utils.WriteError(w, "error signing up", http.StatusInternalServerError)
		return
	}

	utils.WriteJSONStatus(w, http.StatusCreated, map[string]interface{}{
		"status": "success",
		"token":  tokenString,
		"user": map[string]interface{}{
			"id":    int(id),
			"email": req.Email,
			"name":  req.Name,
		},
	})
}

// FUNC TO LOGIN
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	type loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		utils.WriteError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	user := &models.User{}
	query := "SELECT id, email, name, password_hash FROM users WHERE email = ?"
	err := db.QueryRow(query, req.Email).Scan(&user.ID, &user.Email, &user.Name, &user.Password)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "incorrect email or password", http.StatusUnauthorized)
			return
		}
		utils.Logger.Errorf("database query error: %v", err)
		utils.WriteError(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := utils.VerifyPassword(req.Password, user.Password); err != nil {
		utils.WriteError(w, "incorrect email or password", http.StatusUnauthorized)
		return
	}

	tokenString, err := utils.SignToken(user.ID, user.Email)
	if err != nil {
		utils.Logger.Error("could not create login token")
		utils.WriteError(w, "error signing in", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"token":  tokenString,
		"user": map[string]interface{}{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

// FUNC TO GET THE LOGGED-IN USER
func MeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	userID, ok := handlers.UserIDFromContext(r)
	if !ok {
		utils.WriteError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user := &models.User{}
	query := "SELECT id, email, name, created_at, updated_at FROM users WHERE id = ?"
	err := db.QueryRow(query, userID).Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "user not found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("database query error: %v", err)
		utils.WriteError(w, "internal error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"user":   user,
	})
}

// FUNC TO UPDATE PROFILE
func UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPatch {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	userID, ok := handlers.UserIDFromContext(r)
	if !ok {
		utils.WriteError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	type updateRequest struct {
		Name     *string `json:"name"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}

	var req updateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	setClauses := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			utils.WriteError(w, "name cannot be blank", http.StatusBadRequest)
			return
		}
		setClauses = append(setClauses, "name = ?")
		args = append(args, name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !strings.Contains(email, "@") {
			utils.WriteError(w, "invalid email address", http.StatusBadRequest)
			return
		}
		setClauses = append(setClauses, "email = ?")
		args = append(args, email)
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			utils.WriteError(w, "password must be at least 8 characters", http.StatusBadRequest)
			return
		}
		hashedPwd, err := utils.HashPassword(*req.Password)
		if err != nil {
			utils.WriteError(w, "error hashing password", http.StatusInternalServerError)
			return
		}
		setClauses = append(setClauses, "password_hash = ?")
		args = append(args, hashedPwd)
	}

	if len(setClauses) == 0 {
		utils.WriteError(w, "nothing to update", http.StatusBadRequest)
		return
	}

	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(models.DateTimeLayout), userID)

	query := "UPDATE users SET " + strings.Join(setClauses, ", ") + " WHERE id = ?"
	if _, err := db.Exec(query, args...); err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") || strings.Contains(err.Error(), "UNIQUE constraint") {
			utils.WriteError(w, "email already registered", http.StatusConflict)
			return
		}
		utils.Logger.Errorf("failed to update user %d: %v", userID, err)
		utils.WriteError(w, "could not update profile", http.StatusInternalServerError)
		return
	}

	user := &models.User{}
	err := db.QueryRow("SELECT id, email, name, created_at, updated_at FROM users WHERE id = ?", userID).
		Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		utils.Logger.Errorf("failed to reload user %d: %v", userID, err)
		utils.WriteError(w, "internal error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"user":   user,
	})
}
