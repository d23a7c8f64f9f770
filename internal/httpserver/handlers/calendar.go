package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/scholardesk/internal/calendar"
	"github.com/MrSnakeDoc/scholardesk/internal/httpserver/deps"
)

type calendarCell struct {
	Date         string            `json:"date"`
	Day          int               `json:"day"`
	InMonth      bool              `json:"inMonth"`
	Scholarships []scholarshipView `json:"scholarships"`
}

type calendarResponse struct {
	Year         int              `json:"year"`
	Month        int              `json:"month"`
	MonthName    string           `json:"monthName"`
	DaysInMonth  int              `json:"daysInMonth"`
	FirstWeekday int              `json:"firstWeekday"`
	Weeks        [][]calendarCell `json:"weeks"`
}

// Calendar serves a month grid. year and month default to the current
// month; sixRows pads the grid to six weeks.
func Calendar(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog, err := d.MemoryIndex.Catalog()
		if err != nil {
			writeCatalogError(w, err)
			return
		}

		now := d.Now()
		year, err := queryInt(r, "year", now.Year())
		if err != nil || year < 1900 || year > 2200 {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "year must be between 1900 and 2200")
			return
		}
		month, err := queryInt(r, "month", int(now.Month()))
		if err != nil || month < 1 || month > 12 {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "month must be between 1 and 12")
			return
		}

		grid := calendar.BuildMonth(catalog, year, time.Month(month), now, queryBool(r, "sixRows"))
		fav := lookupFor(d, r)

		weeks := make([][]calendarCell, 0, len(grid.Cells)/7)
		for _, week := range grid.Weeks() {
			row := make([]calendarCell, 0, 7)
			for _, c := range week {
				row = append(row, calendarCell{
					Date:         c.Date.Format(time.DateOnly),
					Day:          c.Day,
					InMonth:      c.InMonth,
					Scholarships: newViews(c.Scholarships, now, fav),
				})
			}
			weeks = append(weeks, row)
		}

		writeJSON(w, http.StatusOK, calendarResponse{
			Year:         grid.Year,
			Month:        int(grid.Month),
			MonthName:    grid.Month.String(),
			DaysInMonth:  grid.DaysInMonth,
			FirstWeekday: int(grid.FirstWeekday),
			Weeks:        weeks,
		})
	}
}
