package http

import (
	"net/http"
	"time"

	"subtrack/internal/core"
)

// calendarData feeds the calendar page and its grid partial.
type calendarData struct {
	Year      int
	Month     int
	PrevYear  int
	PrevMonth int
	NextYear  int
	NextMonth int
	Cells     []core.DayCell
}

func (s *Server) calendarDataFor(r *http.Request) (calendarData, error) {
	params := ParseMonthParams(r.URL.Query())
	userID := userIDFrom(r)
	today := s.today()

	cells, err := s.getCalendar(r.Context(), userID, params.Year, time.Month(params.Month), today)
	if err != nil {
		return calendarData{}, err
	}

	ym := core.YearMonth{Year: params.Year, Month: time.Month(params.Month)}
	prev := ym.AddMonths(-1)
	next := ym.AddMonths(1)
	return calendarData{
		Year:      params.Year,
		Month:     params.Month,
		PrevYear:  prev.Year,
		PrevMonth: int(prev.Month),
		NextYear:  next.Year,
		NextMonth: int(next.Month),
		Cells:     cells,
	}, nil
}

// handleCalendarPage renders the full calendar page.
func (s *Server) handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	data, err := s.calendarDataFor(r)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "calendar failed", "error", err, "user_id", userIDFrom(r))
		errorResponseFor(err).Write(w)
		return
	}
	s.render(w, "calendar.html", data)
}

// handleCalendarGrid renders just the grid partial for HTMX month paging.
func (s *Server) handleCalendarGrid(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	data, err := s.calendarDataFor(r)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "calendar grid failed", "error", err, "user_id", userIDFrom(r))
		errorResponseFor(err).Write(w)
		return
	}
	s.render(w, "calendar_grid.html", data)
}
