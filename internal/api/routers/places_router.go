package routers

import (
	"net/http"

	"rndvx/internal/api/handlers/places"
)

func placesRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /places/search", places.SearchPlacesHandler)
	mux.HandleFunc("GET /places/{placeId}", places.PlaceDetailsHandler)

	return mux
}
