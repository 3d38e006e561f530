package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/meditrack/meditrack/internal/domain/appointment"
	"github.com/meditrack/meditrack/internal/platform/clock"
)

const dateLayout = "2006-01-02"

// statusBuckets fixes the order of the by-status breakdown. Unknown
// values are rolled up into "other".
var statusBuckets = []string{
	string(appointment.StatusUnconfirmed),
	string(appointment.StatusConfirmed),
	string(appointment.StatusScheduled),
	string(appointment.StatusCompleted),
	string(appointment.StatusCancelled),
}

type Service struct {
	repo  Repository
	clock clock.Clock
}

func NewService(repo Repository, clk clock.Clock) *Service {
	return &Service{repo: repo, clock: clk}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// weekStart returns the Monday on or before the given instant's date.
func weekStart(t time.Time) time.Time {
	day := startOfDay(t)
	back := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -back)
}

// Analytics assembles the owner's dashboard: headline KPIs, a 30 day
// appointment trend, a 12 week new-patient trend, and a 30 day status
// breakdown. Trend series are zero-filled so every bucket is present.
func (s *Service) Analytics(ctx context.Context, ownerID uuid.UUID) (*Analytics, error) {
	now := s.clock.Now()
	today := startOfDay(now)
	endToday := today.AddDate(0, 0, 1)
	start30d := today.AddDate(0, 0, -29)
	upcomingEnd := today.AddDate(0, 0, 7)

	totalPatients, err := s.repo.CountPatients(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	appointmentsToday, err := s.repo.CountAppointmentsBetween(ctx, ownerID, today, endToday)
	if err != nil {
		return nil, err
	}
	upcoming7d, err := s.repo.CountAppointmentsBetween(ctx, ownerID, today, upcomingEnd)
	if err != nil {
		return nil, err
	}
	newPatients30d, err := s.repo.CountPatientsCreatedBetween(ctx, ownerID, start30d, endToday)
	if err != nil {
		return nil, err
	}

	dayCounts, err := s.repo.AppointmentCountsByDay(ctx, ownerID, start30d, endToday)
	if err != nil {
		return nil, err
	}
	byDay := make([]DayCount, 0, 30)
	for offset := 0; offset < 30; offset++ {
		key := start30d.AddDate(0, 0, offset).Format(dateLayout)
		byDay = append(byDay, DayCount{Date: key, Count: dayCounts[key]})
	}

	lastWeek := weekStart(today)
	firstWeek := lastWeek.AddDate(0, 0, -7*11)
	creationTimes, err := s.repo.PatientCreationTimes(ctx, ownerID, firstWeek, endToday)
	if err != nil {
		return nil, err
	}
	weeklyCounts := map[string]int{}
	for _, t := range creationTimes {
		weeklyCounts[weekStart(t).Format(dateLayout)]++
	}
	byWeek := make([]WeekCount, 0, 12)
	for offset := 0; offset < 12; offset++ {
		key := firstWeek.AddDate(0, 0, 7*offset).Format(dateLayout)
		byWeek = append(byWeek, WeekCount{WeekStart: key, Count: weeklyCounts[key]})
	}

	statusCounts, err := s.repo.AppointmentCountsByStatus(ctx, ownerID, start30d, endToday)
	if err != nil {
		return nil, err
	}
	byStatus := make([]StatusCount, 0, len(statusBuckets)+1)
	other := 0
	known := map[string]bool{}
	for _, bucket := range statusBuckets {
		known[bucket] = true
		byStatus = append(byStatus, StatusCount{Status: bucket, Count: statusCounts[bucket]})
	}
	for status, n := range statusCounts {
		if !known[status] {
			other += n
		}
	}
	if other > 0 {
		byStatus = append(byStatus, StatusCount{Status: "other", Count: other})
	}

	return &Analytics{
		KPIs: KPIs{
			TotalPatients:          totalPatients,
			UpcomingAppointments7d: upcoming7d,
			AppointmentsToday:      appointmentsToday,
			NewPatients30d:         newPatients30d,
		},
		Trends: Trends{
			AppointmentsByDay30d: byDay,
			NewPatientsByWeek12w: byWeek,
		},
		Breakdowns: Breakdowns{AppointmentsByStatus30d: byStatus},
		Meta: Meta{
			Range:       DateRange{From: start30d.Format(dateLayout), To: today.Format(dateLayout)},
			GeneratedAt: now.UTC().Format(time.RFC3339),
		},
	}, nil
}
