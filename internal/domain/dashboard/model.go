// Package dashboard aggregates per-owner scheduling activity into the
// analytics payload behind the admin dashboard.
package dashboard

// KPIs are the headline counters.
type KPIs struct {
	TotalPatients          int `json:"totalPatients"`
	UpcomingAppointments7d int `json:"upcomingAppointments7d"`
	AppointmentsToday      int `json:"appointmentsToday"`
	NewPatients30d         int `json:"newPatients30d"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type WeekCount struct {
	WeekStart string `json:"weekStart"`
	Count     int    `json:"count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type Trends struct {
	AppointmentsByDay30d []DayCount  `json:"appointmentsByDay30d"`
	NewPatientsByWeek12w []WeekCount `json:"newPatientsByWeek12w"`
}

type Breakdowns struct {
	AppointmentsByStatus30d []StatusCount `json:"appointmentsByStatus30d"`
}

type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Meta struct {
	Range       DateRange `json:"range"`
	GeneratedAt string    `json:"generatedAt"`
}

// Analytics is the full dashboard payload.
type Analytics struct {
	KPIs       KPIs       `json:"kpis"`
	Trends     Trends     `json:"trends"`
	Breakdowns Breakdowns `json:"breakdowns"`
	Meta       Meta       `json:"meta"`
}
