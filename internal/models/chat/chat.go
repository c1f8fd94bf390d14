package chat

import "time"

type MessageRequest struct {
	Body string `json:"body" validate:"required"`
}

type Message struct {
	Id        string    `json:"id"`
	ProjectId string    `json:"projectId"`
	SenderId  string    `json:"senderId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}
