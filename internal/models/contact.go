package models

import "time"

// ContactMessage is a stored contact form submission.
type ContactMessage struct {
	ID        int64     `json:"id"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Submitted time.Time `json:"submitted"`
}
