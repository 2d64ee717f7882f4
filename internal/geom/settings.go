package geom

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Radius and travel-time bounds shared by the engines and the
// persistence layer's server-side re-validation.
const (
	MinRadiusKm = 0.1
	MaxRadiusKm = 100.0
	MinMinutes  = 1
	MaxMinutes  = 60
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Profile is a travel profile for isochrone computation.
type Profile string

const (
	ProfileWalking        Profile = "walking"
	ProfileCycling        Profile = "cycling"
	ProfileDriving        Profile = "driving"
	ProfileDrivingTraffic Profile = "driving-traffic"
)

// Valid reports whether the profile is one of the supported values.
func (p Profile) Valid() bool {
	switch p {
	case ProfileWalking, ProfileCycling, ProfileDriving, ProfileDrivingTraffic:
		return true
	}
	return false
}

// Color returns the fixed display color for the profile, used for both
// the live preview and stored record styling metadata.
func (p Profile) Color() string {
	switch p {
	case ProfileWalking:
		return "#4caf50"
	case ProfileCycling:
		return "#ff9800"
	case ProfileDriving:
		return "#2196f3"
	case ProfileDrivingTraffic:
		return "#f44336"
	}
	return "#3388ff"
}

// IsochroneSettings describes a travel-time search area request.
type IsochroneSettings struct {
	Center  Point   `json:"center" doc:"Origin point"`
	Profile Profile `json:"profile" enum:"walking,cycling,driving,driving-traffic" doc:"Travel profile" validate:"required"`
	Minutes int     `json:"minutes" minimum:"1" maximum:"60" doc:"Travel time budget in minutes" validate:"min=1,max=60"`
}

// Validate rejects malformed settings before any external call is made.
func (s IsochroneSettings) Validate() error {
	if err := s.Center.Validate(); err != nil {
		return fmt.Errorf("center: %w", err)
	}
	if !s.Profile.Valid() {
		return fmt.Errorf("unknown travel profile %q", s.Profile)
	}
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("minutes %d out of range [%d, %d]", s.Minutes, MinMinutes, MaxMinutes)
	}
	return nil
}

// RadiusSettings describes a circular search area.
type RadiusSettings struct {
	Center   Point   `json:"center" doc:"Circle center"`
	RadiusKm float64 `json:"radiusKm" minimum:"0.1" maximum:"100" doc:"Radius in kilometers" validate:"min=0.1,max=100"`
}

// Validate rejects out-of-range radii. Values are never clamped.
func (s RadiusSettings) Validate() error {
	if err := s.Center.Validate(); err != nil {
		return fmt.Errorf("center: %w", err)
	}
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("radius %v km out of range [%v, %v]", s.RadiusKm, MinRadiusKm, MaxRadiusKm)
	}
	return nil
}
