package bids

import "time"

type BidRequest struct {
	ProjectId   string  `json:"projectId" validate:"required"`
	RatePerHour float64 `json:"ratePerHour" validate:"required,gt=0"`
}

type Bid struct {
	Id             string    `json:"id"`
	ProjectId      string    `json:"projectId"`
	RatePerHour    float64   `json:"ratePerHour"`
	ProfessionalId string    `json:"professionalId"`
	Name           string    `json:"name"`
	Badge          string    `json:"badge"`
	CreatedAt      time.Time `json:"createdAt"`
}

// PartitionResponse is the bid list split against the project's
// minimum badge, both halves in submission order.
type PartitionResponse struct {
	Qualifying     []Bid `json:"qualifying"`
	Underqualified []Bid `json:"underqualified"`
}
