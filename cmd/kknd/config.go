package main

type Config struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// reporting point for the daily check-in; every post is jittered
	// over the radius around it
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
	// if unspecified, `.dev/kkn.db` is used
	Database string `json:"database"`
}
