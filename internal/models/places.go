package models

type Place struct {
	PlaceID string   `json:"place_id"`
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
	Types   []string `json:"types,omitempty"`
}
