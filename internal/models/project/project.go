package project

import "time"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusLive      Status = "live"
	StatusPickedUp  Status = "picked_up"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusLive, StatusPickedUp, StatusCompleted:
		return true
	}
	return false
}

type ProjectRequest struct {
	Title        string     `json:"title" validate:"required"`
	Description  string     `json:"description" validate:"required"`
	Budget       float64    `json:"budget" validate:"required,gt=0"`
	MinimumBadge string     `json:"minimumBadge,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
}

type ProjectResponse struct {
	Id           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       Status     `json:"status"`
	MinimumBadge string     `json:"minimumBadge,omitempty"`
	ClientId     string     `json:"clientId"`
	TalentId     string     `json:"talentId,omitempty"`
	WinningBidId string     `json:"winningBidId,omitempty"`
	Budget       float64    `json:"budget"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type MilestoneKind string

const (
	MilestoneInitial MilestoneKind = "initial"
	MilestoneDraft   MilestoneKind = "draft"
	MilestoneFinal   MilestoneKind = "final"
)

type Milestone struct {
	Id          string        `json:"id"`
	ProjectId   string        `json:"projectId"`
	Kind        MilestoneKind `json:"kind"`
	Amount      float64       `json:"amount"`
	Status      string        `json:"status"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
	Description string        `json:"description,omitempty"`
}
