package routers

import (
	"net/http"

	"rndvx/internal/api/handlers/invites"
)

func invitesRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /invites/", invites.ListInvitesHandler)
	mux.HandleFunc("POST /invites/", invites.CreateInviteHandler)

	mux.HandleFunc("GET /invites/token/{token}", invites.GetInviteByTokenHandler)
	mux.HandleFunc("PUT /invites/token/{token}/respond", invites.RespondInviteHandler)

	mux.HandleFunc("DELETE /invites/{id}", invites.DeleteInviteHandler)

	return mux
}
