package routers

import (
	"net/http"

	"rndvx/internal/api/handlers/groups"
)

func groupsRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /groups/", groups.ListGroupsHandler)
	mux.HandleFunc("POST /groups/", groups.CreateGroupHandler)

	mux.HandleFunc("GET /groups/{id}", groups.GetGroupHandler)
	mux.HandleFunc("PUT /groups/{id}", groups.UpdateGroupHandler)
	mux.HandleFunc("DELETE /groups/{id}", groups.DeleteGroupHandler)

	mux.HandleFunc("POST /groups/{id}/members", groups.AddMemberHandler)
	mux.HandleFunc("PUT /groups/{id}/members/{userId}", groups.UpdateMemberRoleHandler)
	mux.HandleFunc("DELETE /groups/{id}/members/{userId}", groups.RemoveMemberHandler)

	return mux
}
