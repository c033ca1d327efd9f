package analytics

import "context"

// DateLayout is the format of the per-day activity dates.
const DateLayout = "2006-01-02"

type (
	// ParticipationRecord counts the page views and participations of a user on one day.
	ParticipationRecord struct {
		Date           string `json:"date" db:"date"`
		PageViews      int    `json:"page_views" db:"page_views"`
		Participations int    `json:"participations" db:"participations"`
	}

	// MessagingRecord counts the messages exchanged between a student and the instructors on one day.
	MessagingRecord struct {
		Date               string `json:"date" db:"date"`
		StudentMessages    int    `json:"student_messages" db:"student_messages"`
		InstructorMessages int    `json:"instructor_messages" db:"instructor_messages"`
	}

	// ActivitySource returns per-day activity ordered by date, days without activity omitted.
	ActivitySource interface {
		UserParticipation(ctx context.Context, courseID, userID int) ([]ParticipationRecord, error)
		UserMessaging(ctx context.Context, courseID, userID int) ([]MessagingRecord, error)
	}
)
