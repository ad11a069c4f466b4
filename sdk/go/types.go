package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Progress mirrors the public JSON surface of core.UserProgress.
type Progress struct {
	EarnedPoints       int `json:"earned_points"`
	LifetimePoints     int `json:"lifetime_points"`
	CurrentLevel       int `json:"current_level"`
	CurrentLevelPoints int `json:"current_level_points"`
	PointsToNextLevel  int `json:"points_to_next_level"`
}

// Chore mirrors the public JSON surface of core.ChoreRecord.
type Chore struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	AssignedTo  string     `json:"assigned_to"`
	CompletedBy string     `json:"completed_by,omitempty"`
	Points      int        `json:"points"`
	FinalPoints *int       `json:"final_points,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Level mirrors the public JSON surface of core.LevelDefinition.
type Level struct {
	Level          int      `json:"level"`
	PointsRequired int      `json:"points_required"`
	Name           string   `json:"name"`
	Icon           string   `json:"icon"`
	Rewards        []string `json:"rewards"`
}

// HealthStatus describes the /healthz response.
type HealthStatus struct {
	Status string                 `json:"status"`
	Checks map[string]interface{} `json:"checks"`
}

// APIError is the structured error body returned by the server.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

func decodeJSON(resp *http.Response, target any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Code == "" {
			return fmt.Errorf("request failed: status %d", resp.StatusCode)
		}
		return apiErr
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// ErrEmptyUserID is returned when user id is empty.
var ErrEmptyUserID = errors.New("user id is required")
