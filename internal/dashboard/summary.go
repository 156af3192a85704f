// Package dashboard computes the derived aggregates behind the charts.
// Aggregates are values, recomputed per request and never persisted.
package dashboard

import "github.com/rosterdev/roster-store/pkg/schema"

// CourseField is the record field the per-course aggregate groups by.
const CourseField = "course"

// MonthLabels are the twelve fixed buckets of the monthly aggregate,
// January first.
var MonthLabels = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Summary is everything a dashboard render needs besides the rows.
type Summary struct {
	Total   int            `json:"total"`
	Courses map[string]int `json:"courses"`
	// Months counts registrations by calendar month of CreatedAt,
	// index 0 = January.
	Months [12]int `json:"months"`
}

// Summarize computes both aggregates in one pass. Records with no course
// value are counted in the total but in neither course bucket.
func Summarize(records []schema.StudentRecord) Summary {
	s := Summary{
		Total:   len(records),
		Courses: make(map[string]int),
	}
	for _, r := range records {
		if course := r.Field(CourseField); course != "" {
			s.Courses[course]++
		}
		if !r.CreatedAt.IsZero() {
			s.Months[int(r.CreatedAt.Month())-1]++
		}
	}
	return s
}
