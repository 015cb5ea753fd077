package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Subjects published by the gym API.
const (
	SubjectSessionJoined   = "session.joined"
	SubjectCheckInRecorded = "checkin.recorded"
	SubjectPostLiked       = "forum.post.liked"
)

// EventPublisher announces committed state changes. Publishing happens after
// the transaction commits; a failed publish never undoes the change.
type EventPublisher interface {
	PublishSessionJoined(event SessionJoinedEvent) error
	PublishCheckInRecorded(event CheckInRecordedEvent) error
	PublishPostLiked(event PostLikedEvent) error
	Close()
}

type SessionJoinedEvent struct {
	EventType       string    `json:"event_type"`
	SessionID       string    `json:"session_id"`
	ActivityID      string    `json:"activity_id"`
	UserID          string    `json:"user_id"`
	CreditsSpent    int       `json:"credits_spent"`
	CreditsLeft     int       `json:"credits_left"`
	SessionStartsAt time.Time `json:"session_starts_at"`
	JoinedAt        time.Time `json:"joined_at"`
}

type CheckInRecordedEvent struct {
	EventType    string    `json:"event_type"`
	CheckInID    string    `json:"checkin_id"`
	UserID       string    `json:"user_id"`
	Date         string    `json:"date"`
	CreditsAfter int       `json:"credits_after"`
	CheckedInAt  time.Time `json:"checked_in_at"`
}

type PostLikedEvent struct {
	EventType string    `json:"event_type"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	UserID    string    `json:"user_id"`
	LikeCount int       `json:"like_count"`
	LikedAt   time.Time `json:"liked_at"`
}

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

type NatsPublisher struct {
	conn conn
}

func NewNatsPublisher(natsURL string) (EventPublisher, error) {
	nc, err := nats.Connect(natsURL, nats.Name("gym-app"))
	if err != nil {
		return nil, err
	}
	return &NatsPublisher{conn: nc}, nil
}

func (p *NatsPublisher) PublishSessionJoined(event SessionJoinedEvent) error {
	event.EventType = SubjectSessionJoined
	return p.publish(SubjectSessionJoined, event)
}

func (p *NatsPublisher) PublishCheckInRecorded(event CheckInRecordedEvent) error {
	event.EventType = SubjectCheckInRecorded
	return p.publish(SubjectCheckInRecorded, event)
}

func (p *NatsPublisher) PublishPostLiked(event PostLikedEvent) error {
	event.EventType = SubjectPostLiked
	return p.publish(SubjectPostLiked, event)
}

// Close flushes pending messages before closing the connection.
func (p *NatsPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		log.Warn().Err(err).Msg("Error draining NATS connection")
	}
}

func (p *NatsPublisher) publish(subject string, event any) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("Error marshalling event JSON")
		return err
	}

	if err = p.conn.Publish(subject, eventJSON); err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("Error publishing to NATS")
		return err
	}

	log.Debug().Str("subject", subject).Msg("Published event to NATS")
	return nil
}

// NoopPublisher drops every event. Used when no NATS URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishSessionJoined(SessionJoinedEvent) error     { return nil }
func (NoopPublisher) PublishCheckInRecorded(CheckInRecordedEvent) error { return nil }
func (NoopPublisher) PublishPostLiked(PostLikedEvent) error             { return nil }
func (NoopPublisher) Close()                                            {}
