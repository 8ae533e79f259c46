package routers

import (
	"net/http"

	"rndvx/internal/api/handlers/auth"
)

func usersRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/users/register", auth.RegisterUsersHandler)
	mux.HandleFunc("/users/login", auth.LoginHandler)

	mux.HandleFunc("GET /users/me", auth.MeHandler)
	mux.HandleFunc("PUT /users/me", auth.UpdateProfileHandler)
	mux.HandleFunc("PATCH /users/me", auth.UpdateProfileHandler)

	return mux
}
