package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/masomo-analytics/core/account"
	"github.com/trezcool/masomo-analytics/core/analytics"
)

type activityRepository struct {
	db *DB
}

var _ analytics.ActivitySource = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *DB) *activityRepository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) UserParticipation(_ context.Context, courseID, userID int) ([]analytics.ParticipationRecord, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	byDate := make(map[string]*analytics.ParticipationRecord)
	for _, pv := range repo.db.pageViews {
		if pv.CourseID != courseID || pv.UserID != userID {
			continue
		}
		date := pv.ViewedAt.UTC().Format(analytics.DateLayout)
		rec, ok := byDate[date]
		if !ok {
			rec = &analytics.ParticipationRecord{Date: date}
			byDate[date] = rec
		}
		rec.PageViews++
		if pv.Participated {
			rec.Participations++
		}
	}

	records := make([]analytics.ParticipationRecord, 0, len(byDate))
	for _, rec := range byDate {
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })
	return records, nil
}

func (repo *activityRepository) UserMessaging(_ context.Context, courseID, userID int) ([]analytics.MessagingRecord, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	instructors := make(map[int]bool)
	for _, enr := range repo.db.enrollments {
		if enr.CourseID == courseID && enr.IsActive() && (enr.Role == account.RoleTeacher || enr.Role == account.RoleTA) {
			instructors[enr.UserID] = true
		}
	}

	byDate := make(map[string]*analytics.MessagingRecord)
	record := func(msg Message) *analytics.MessagingRecord {
		date := msg.SentAt.UTC().Format(analytics.DateLayout)
		rec, ok := byDate[date]
		if !ok {
			rec = &analytics.MessagingRecord{Date: date}
			byDate[date] = rec
		}
		return rec
	}
	for _, msg := range repo.db.messages {
		if msg.CourseID != courseID {
			continue
		}
		switch {
		case msg.SenderID == userID && instructors[msg.RecipientID]:
			record(msg).StudentMessages++
		case msg.RecipientID == userID && instructors[msg.SenderID]:
			record(msg).InstructorMessages++
		}
	}

	records := make([]analytics.MessagingRecord, 0, len(byDate))
	for _, rec := range byDate {
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })
	return records, nil
}
