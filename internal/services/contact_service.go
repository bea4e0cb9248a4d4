package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avelarde/campushub-be/internal/models"
)

// ContactServiceProvider defines the interface for contact form storage.
type ContactServiceProvider interface {
	SaveMessage(ctx context.Context, subject, message string) (models.ContactMessage, error)
	ListMessages(ctx context.Context) ([]models.ContactMessage, error)
}

// ContactService stores contact form submissions.
type ContactService struct {
	db *sql.DB
}

// NewContactService creates a new ContactService.
func NewContactService(db *sql.DB) *ContactService {
	return &ContactService{db: db}
}

// SaveMessage persists a contact form submission.
func (s *ContactService) SaveMessage(ctx context.Context, subject, message string) (models.ContactMessage, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO contact_messages(subject, message, submitted) VALUES(?, ?, ?)",
		subject, message, now,
	)
	if err != nil {
		return models.ContactMessage{}, fmt.Errorf("insert contact message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.ContactMessage{}, fmt.Errorf("insert contact message: %w", err)
	}
	return models.ContactMessage{ID: id, Subject: subject, Message: message, Submitted: now}, nil
}

// ListMessages returns all contact form submissions, newest first.
func (s *ContactService) ListMessages(ctx context.Context) ([]models.ContactMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, subject, message, submitted FROM contact_messages ORDER BY submitted DESC")
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	messages := []models.ContactMessage{}
	for rows.Next() {
		var m models.ContactMessage
		if err := rows.Scan(&m.ID, &m.Subject, &m.Message, &m.Submitted); err != nil {
			return nil, fmt.Errorf("scan contact message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	return messages, nil
}
