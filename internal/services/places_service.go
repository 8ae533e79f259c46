package services

import (
	"context"
	"database/sql"
	"strings"

	"rndvx/internal/models"
	"rndvx/pkg/utils"

	"github.com/shopspring/decimal"
)

// PlacesService is a static stub behind the stable search/details/auto-pick
// contract; swap in a real place provider without touching callers.
type PlacesService struct {
	DB *sql.DB
}

var mockPlaces = []models.Place{
	{
		PlaceID: "mock-place-1",
		Name:    "The Coffee House",
		Address: "123 Main St, Springfield",
		Lat:     37.7749,
		Lng:     -122.4194,
		Types:   []string{"cafe", "food"},
	},
	{
		PlaceID: "mock-place-2",
		Name:    "Riverside Park",
		Address: "456 River Rd, Springfield",
		Lat:     37.7739,
		Lng:     -122.4312,
		Types:   []string{"park", "outdoors"},
	},
	{
		PlaceID: "mock-place-3",
		Name:    "The Board Room",
		Address: "789 Oak Ave, Springfield",
		Lat:     37.7751,
		Lng:     -122.4183,
		Types:   []string{"bar", "food"},
	},
}

// Search matches the query against name, address and type, case-insensitively.
func (s *PlacesService) Search(query string) []models.Place {
	q := strings.ToLower(query)
	results := make([]models.Place, 0)
	for _, p := range mockPlaces {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Address), q) {
			results = append(results, p)
			continue
		}
		for _, t := range p.Types {
			if strings.Contains(t, q) {
				results = append(results, p)
				break
			}
		}
	}
	return results
}

func (s *PlacesService) Details(placeID string) (models.Place, error) {
	for _, p := range mockPlaces {
		if p.PlaceID == placeID {
			return p, nil
		}
	}
	return models.Place{}, NotFound("place not found")
}

// AutoPick suggests a location for the meeting. Reserved for future scoring
// over vote tallies and member proximity; returns the first stub place.
func (s *PlacesService) AutoPick(ctx context.Context, meetingID int) (models.Place, error) {
	if _, err := fetchMeeting(ctx, s.DB, meetingID); err != nil {
		return models.Place{}, err
	}
	return mockPlaces[0], nil
}

type CastVoteInput struct {
	PlaceID      string
	PlaceName    string
	PlaceAddress string
	Lat          *decimal.Decimal
	Lng          *decimal.Decimal
}

// CastVote appends a location vote for the meeting. Votes are an append log;
// tallies group them by place.
func (s *PlacesService) CastVote(ctx context.Context, meetingID, userID int, input CastVoteInput) (models.LocationVote, error) {
	if _, err := fetchMeeting(ctx, s.DB, meetingID); err != nil {
		return models.LocationVote{}, err
	}

	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO location_votes (meeting_id, user_id, place_id, place_name, place_address, lat, lng)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, meetingID, userID, input.PlaceID, input.PlaceName, nullString(input.PlaceAddress),
		nullDecimal(input.Lat), nullDecimal(input.Lng))
	if err != nil {
		return models.LocationVote{}, utils.ErrorHandler(err, "failed to cast vote")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.LocationVote{}, utils.ErrorHandler(err, "failed to get vote id")
	}

	var v models.LocationVote
	err = s.DB.QueryRowContext(ctx, `
		SELECT id, meeting_id, user_id, place_id, place_name, place_address, lat, lng, created_at
		FROM location_votes WHERE id = ?
	`, id).Scan(&v.ID, &v.MeetingID, &v.UserID, &v.PlaceID, &v.PlaceName, &v.PlaceAddress,
		&v.Lat, &v.Lng, &v.CreatedAt)
	if err != nil {
		return models.LocationVote{}, utils.ErrorHandler(err, "failed to fetch vote")
	}
	return v, nil
}

// TallyVotes returns per-place vote counts for the meeting, most votes first.
func (s *PlacesService) TallyVotes(ctx context.Context, meetingID int) ([]models.VoteTally, error) {
	if _, err := fetchMeeting(ctx, s.DB, meetingID); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT place_id, MIN(place_name), COUNT(*) AS votes
		FROM location_votes
		WHERE meeting_id = ?
		GROUP BY place_id
		ORDER BY votes DESC, place_id ASC
	`, meetingID)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to tally votes")
	}
	defer rows.Close()

	tallies := make([]models.VoteTally, 0)
	for rows.Next() {
		var t models.VoteTally
		if err := rows.Scan(&t.PlaceID, &t.PlaceName, &t.Votes); err != nil {
			return nil, utils.ErrorHandler(err, "failed to scan tally")
		}
		tallies = append(tallies, t)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.ErrorHandler(err, "failed to iterate tallies")
	}
	return tallies, nil
}
