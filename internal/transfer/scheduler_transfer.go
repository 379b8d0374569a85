package transfer

import "github.com/crosspilot/crosspilot/internal/scheduler"

type SuggestionsRequest struct {
	Platforms []string `json:"platforms" validate:"required,min=1,dive,required"`
}

type SuggestionsResponse struct {
	Suggestions map[string]scheduler.Suggestion `json:"suggestions"`
}

type OptimalTimeResponse struct {
	Optimal *scheduler.OptimalTime `json:"optimal"`
}

type PollerStatus struct {
	Running         bool   `json:"running"`
	IntervalSeconds int    `json:"interval_seconds"`
	LastTick        string `json:"last_tick,omitempty"`
}
