package routers

import (
	"net/http"
)

func MainRouter() *http.ServeMux {

	mux := http.NewServeMux()

	uRouter := usersRouter()
	mux.Handle("/users/", uRouter)

	gRouter := groupsRouter()
	mux.Handle("/groups/", gRouter)

	mRouter := meetingsRouter()
	mux.Handle("/meetings/", mRouter)

	iRouter := invitesRouter()
	mux.Handle("/invites/", iRouter)

	pRouter := placesRouter()
	mux.Handle("/places/", pRouter)

	return mux
}
