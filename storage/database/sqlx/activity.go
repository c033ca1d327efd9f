package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-analytics/core/account"
	"github.com/trezcool/masomo-analytics/core/analytics"
)

type activityRepository struct {
	db sqlx.ExtContext
}

var _ analytics.ActivitySource = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db sqlx.ExtContext) *activityRepository {
	return &activityRepository{db: db}
}

const participationQuery = `
SELECT to_char(viewed_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS date,
       COUNT(*)                                          AS page_views,
       COUNT(*) FILTER (WHERE participated)              AS participations
FROM page_view
WHERE course_id = $1 AND user_id = $2
GROUP BY 1
ORDER BY 1`

func (repo *activityRepository) UserParticipation(ctx context.Context, courseID, userID int) ([]analytics.ParticipationRecord, error) {
	records := make([]analytics.ParticipationRecord, 0)
	if err := sqlx.SelectContext(ctx, repo.db, &records, participationQuery, courseID, userID); err != nil {
		return nil, errors.Wrap(err, "querying participation")
	}
	return records, nil
}

const messagingQuery = `
WITH instructor AS (
    SELECT DISTINCT user_id FROM enrollment
    WHERE course_id = $1 AND role IN ($3, $4) AND workflow_state IN ('active', 'completed')
)
SELECT to_char(sent_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS date,
       COUNT(*) FILTER (WHERE sender_id = $2)          AS student_messages,
       COUNT(*) FILTER (WHERE recipient_id = $2)       AS instructor_messages
FROM message
WHERE course_id = $1
  AND ((sender_id = $2 AND recipient_id IN (SELECT user_id FROM instructor))
    OR (recipient_id = $2 AND sender_id IN (SELECT user_id FROM instructor)))
GROUP BY 1
ORDER BY 1`

func (repo *activityRepository) UserMessaging(ctx context.Context, courseID, userID int) ([]analytics.MessagingRecord, error) {
	records := make([]analytics.MessagingRecord, 0)
	err := sqlx.SelectContext(ctx, repo.db, &records, messagingQuery,
		courseID, userID, int(account.RoleTeacher), int(account.RoleTA))
	if err != nil {
		return nil, errors.Wrap(err, "querying messaging")
	}
	return records, nil
}

func timeOrZero(t null.Time) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}
