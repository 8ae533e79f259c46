package routers

import (
	"net/http"

	"rndvx/internal/api/handlers/meetings"
	"rndvx/internal/api/handlers/places"
)

func meetingsRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /meetings/", meetings.ListMeetingsHandler)
	mux.HandleFunc("POST /meetings/", meetings.CreateMeetingHandler)

	mux.HandleFunc("GET /meetings/{id}", meetings.GetMeetingHandler)
	mux.HandleFunc("PUT /meetings/{id}", meetings.UpdateMeetingHandler)
	mux.HandleFunc("DELETE /meetings/{id}", meetings.DeleteMeetingHandler)

	mux.HandleFunc("PUT /meetings/{id}/rsvp", meetings.UpsertRsvpHandler)
	mux.HandleFunc("POST /meetings/{id}/rsvp", meetings.UpsertRsvpHandler)
	mux.HandleFunc("DELETE /meetings/{id}/rsvp", meetings.DeleteRsvpHandler)
	mux.HandleFunc("GET /meetings/{id}/rsvps", meetings.ListRsvpsHandler)

	mux.HandleFunc("POST /meetings/{id}/recurrence", meetings.GenerateInstancesHandler)

	mux.HandleFunc("POST /meetings/{id}/votes", meetings.CastVoteHandler)
	mux.HandleFunc("GET /meetings/{id}/votes", meetings.TallyVotesHandler)

	mux.HandleFunc("POST /meetings/{id}/auto-pick", places.AutoPickHandler)

	return mux
}
