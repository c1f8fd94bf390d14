package deliverable

import "time"

type Status string

const (
	StatusRecommended Status = "recommended"
	StatusScoped      Status = "scoped"
	StatusInProgress  Status = "in_progress"
	StatusApproved    Status = "approved"
	StatusCompleted   Status = "completed"
)

// Columns is the board order, left to right.
var Columns = []Status{
	StatusRecommended,
	StatusScoped,
	StatusInProgress,
	StatusApproved,
	StatusCompleted,
}

func (s Status) Valid() bool {
	switch s {
	case StatusRecommended, StatusScoped, StatusInProgress, StatusApproved, StatusCompleted:
		return true
	}
	return false
}

type TimeEntry struct {
	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	HoursLogged float64    `json:"hoursLogged,omitempty"`
}

type Session struct {
	StartTime time.Time `json:"startTime"`
}

type SubmittedFile struct {
	Id   string `json:"id"`
	Name string `json:"name"`
	Url  string `json:"url"`
}

type Deliverable struct {
	Id             string          `json:"id"`
	ProjectId      string          `json:"projectId"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Status         Status          `json:"status"`
	EstimatedHours float64         `json:"estimatedHours"`
	ActualHours    float64         `json:"actualHours"`
	TimeEntries    []TimeEntry     `json:"timeEntries"`
	DueDate        *time.Time      `json:"dueDate,omitempty"`
	SubmittedFiles []SubmittedFile `json:"submittedFiles,omitempty"`
	IsTracking     bool            `json:"isTracking"`
	CurrentSession *Session        `json:"currentSession,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type CreateRequest struct {
	ProjectId      string     `json:"projectId" validate:"required"`
	Title          string     `json:"title" validate:"required"`
	Description    string     `json:"description" validate:"required"`
	EstimatedHours float64    `json:"estimatedHours" validate:"required,gt=0"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
}

type StopTrackingRequest struct {
	HoursLogged float64 `json:"hoursLogged" validate:"required,gt=0"`
}

type MoveRequest struct {
	SourceIndex       int    `json:"sourceIndex"`
	DestinationColumn Status `json:"destinationColumn" validate:"required"`
	DestinationIndex  int    `json:"destinationIndex"`
}

type AttachFileRequest struct {
	Name string `json:"name" validate:"required"`
	Url  string `json:"url" validate:"required,url"`
}
