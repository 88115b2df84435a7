package domain

import "time"

// Project is a consumer's site or operation whose baseline is being improved.
type Project struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Industry string `json:"industry,omitempty"`
	Location string `json:"location,omitempty"`

	Baseline

	CreatedAt   time.Time          `json:"createdAt"`
	Simulations []SimulationRecord `json:"simulations,omitempty"`
}
