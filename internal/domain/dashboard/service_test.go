package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meditrack/meditrack/internal/platform/clock"
)

// Wednesday, so the current week started Monday 2029-12-31.
var dashNow = time.Date(2030, 1, 2, 15, 30, 0, 0, time.UTC)

type mockRepo struct {
	patients       int
	patientsWindow int
	apptsByRange   map[string]int
	dayCounts      map[string]int
	creationTimes  []time.Time
	statusCounts   map[string]int
}

func (r *mockRepo) CountPatients(context.Context, uuid.UUID) (int, error) {
	return r.patients, nil
}

func (r *mockRepo) CountPatientsCreatedBetween(context.Context, uuid.UUID, time.Time, time.Time) (int, error) {
	return r.patientsWindow, nil
}

func (r *mockRepo) CountAppointmentsBetween(_ context.Context, _ uuid.UUID, from, to time.Time) (int, error) {
	return r.apptsByRange[from.Format("2006-01-02")+"/"+to.Format("2006-01-02")], nil
}

func (r *mockRepo) AppointmentCountsByDay(context.Context, uuid.UUID, time.Time, time.Time) (map[string]int, error) {
	return r.dayCounts, nil
}

func (r *mockRepo) PatientCreationTimes(context.Context, uuid.UUID, time.Time, time.Time) ([]time.Time, error) {
	return r.creationTimes, nil
}

func (r *mockRepo) AppointmentCountsByStatus(context.Context, uuid.UUID, time.Time, time.Time) (map[string]int, error) {
	return r.statusCounts, nil
}

func TestWeekStart(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2030, 1, 2, 12, 0, 0, 0, time.UTC), "2029-12-31"},  // Wednesday
		{time.Date(2029, 12, 31, 0, 0, 0, 0, time.UTC), "2029-12-31"}, // Monday
		{time.Date(2030, 1, 6, 23, 59, 0, 0, time.UTC), "2029-12-31"}, // Sunday
		{time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC), "2030-01-07"},   // next Monday
	}
	for _, tc := range cases {
		if got := weekStart(tc.in).Format("2006-01-02"); got != tc.want {
			t.Errorf("weekStart(%v) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestAnalytics(t *testing.T) {
	repo := &mockRepo{
		patients:       42,
		patientsWindow: 7,
		apptsByRange: map[string]int{
			"2030-01-02/2030-01-03": 3, // today
			"2030-01-02/2030-01-09": 9, // next 7 days
		},
		dayCounts: map[string]int{
			"2030-01-02": 3,
			"2029-12-25": 1,
		},
		creationTimes: []time.Time{
			time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC),   // current week
			time.Date(2029, 12, 31, 9, 0, 0, 0, time.UTC),  // current week
			time.Date(2029, 12, 26, 11, 0, 0, 0, time.UTC), // previous week
		},
		statusCounts: map[string]int{
			"confirmed": 4,
			"cancelled": 2,
			"no_show":   1, // legacy value, rolls into "other"
		},
	}
	svc := NewService(repo, clock.At(dashNow))

	a, err := svc.Analytics(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}

	if a.KPIs.TotalPatients != 42 || a.KPIs.AppointmentsToday != 3 ||
		a.KPIs.UpcomingAppointments7d != 9 || a.KPIs.NewPatients30d != 7 {
		t.Errorf("kpis = %+v", a.KPIs)
	}

	if len(a.Trends.AppointmentsByDay30d) != 30 {
		t.Fatalf("expected 30 day buckets, got %d", len(a.Trends.AppointmentsByDay30d))
	}
	first := a.Trends.AppointmentsByDay30d[0]
	if first.Date != "2029-12-04" || first.Count != 0 {
		t.Errorf("first day bucket = %+v", first)
	}
	last := a.Trends.AppointmentsByDay30d[29]
	if last.Date != "2030-01-02" || last.Count != 3 {
		t.Errorf("last day bucket = %+v", last)
	}

	if len(a.Trends.NewPatientsByWeek12w) != 12 {
		t.Fatalf("expected 12 week buckets, got %d", len(a.Trends.NewPatientsByWeek12w))
	}
	lastWeek := a.Trends.NewPatientsByWeek12w[11]
	if lastWeek.WeekStart != "2029-12-31" || lastWeek.Count != 2 {
		t.Errorf("current week bucket = %+v", lastWeek)
	}
	prevWeek := a.Trends.NewPatientsByWeek12w[10]
	if prevWeek.WeekStart != "2029-12-24" || prevWeek.Count != 1 {
		t.Errorf("previous week bucket = %+v", prevWeek)
	}

	byStatus := a.Breakdowns.AppointmentsByStatus30d
	if len(byStatus) != 6 {
		t.Fatalf("expected 5 status buckets plus other, got %v", byStatus)
	}
	counts := map[string]int{}
	for _, sc := range byStatus {
		counts[sc.Status] = sc.Count
	}
	if counts["confirmed"] != 4 || counts["cancelled"] != 2 || counts["other"] != 1 || counts["scheduled"] != 0 {
		t.Errorf("status counts = %v", counts)
	}

	if a.Meta.Range.From != "2029-12-04" || a.Meta.Range.To != "2030-01-02" {
		t.Errorf("meta range = %+v", a.Meta.Range)
	}
}

func TestAnalyticsNoOtherBucketWhenAllKnown(t *testing.T) {
	repo := &mockRepo{statusCounts: map[string]int{"completed": 5}}
	svc := NewService(repo, clock.At(dashNow))

	a, err := svc.Analytics(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	for _, sc := range a.Breakdowns.AppointmentsByStatus30d {
		if sc.Status == "other" {
			t.Error("other bucket should be omitted when empty")
		}
	}
}
