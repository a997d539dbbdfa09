package domain

import "time"

// Project is a published map experience: one client building plus its
// landmarks. The engine treats project records as read-only.
type Project struct {
	ID            string         `json:"id"`
	Slug          string         `json:"slug"`
	Name          string         `json:"name"`
	Building      ClientBuilding `json:"building"`
	IntroAudioURL string         `json:"intro_audio_url,omitempty"`
	MapStyleURL   string         `json:"map_style_url,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// ClientBuilding is the anchor point of a project: every route originates
// here and every cinematic frames it.
type ClientBuilding struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Location Coordinate `json:"location"`
}

// Landmark is a selectable point of interest around the client building.
type Landmark struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Location    Coordinate `json:"location"`
	Description string     `json:"description,omitempty"`
	IconURL     string     `json:"icon_url,omitempty"`
	Category    string     `json:"category,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
