package models

import "time"

type WeatherReading struct {
	City        string    `json:"city"`
	Temperature float64   `json:"temperature"`
	GoodWeather bool      `json:"goodWeather"`
	Timestamp   time.Time `json:"timestamp"`
}
