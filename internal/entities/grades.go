package entities

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// GradeInformation explains why a grade value carries no number.
type GradeInformation string

const (
	GradeInformationNone       GradeInformation = ""
	GradeInformationAbsent     GradeInformation = "absent"
	GradeInformationExempted   GradeInformation = "exempted"
	GradeInformationNotGraded  GradeInformation = "not_graded"
	GradeInformationUnfit      GradeInformation = "unfit"
	GradeInformationUnreturned GradeInformation = "unreturned"
)

// GradeValue is a single numeric slot of a grade (student mark, class
// average, min, max, scale). A disabled value never counts toward averages.
type GradeValue struct {
	Value       *float64         `json:"value"`
	Disabled    bool             `json:"disabled"`
	Information GradeInformation `json:"information,omitempty"`
}

// Graded returns an enabled value.
func Graded(v float64) GradeValue {
	return GradeValue{Value: &v}
}

// Missing is the default for an unknown upstream value.
func Missing() GradeValue {
	return GradeValue{Disabled: true}
}

// Unavailable returns a disabled value explained by info.
func Unavailable(info GradeInformation) GradeValue {
	return GradeValue{Disabled: true, Information: info}
}

// Number returns the value and whether it can be used in computations.
func (g GradeValue) Number() (float64, bool) {
	if g.Disabled || g.Value == nil {
		return 0, false
	}
	return *g.Value, true
}

type Grade struct {
	ID          string     `json:"id"`
	SubjectName string     `json:"subject_name"`
	Description string     `json:"description,omitempty"`
	Comment     string     `json:"comment,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
	Coefficient float64    `json:"coefficient"`
	Student     GradeValue `json:"student"`
	Average     GradeValue `json:"average"`
	Min         GradeValue `json:"min"`
	Max         GradeValue `json:"max"`
	OutOf       GradeValue `json:"out_of"`
}

// GradeID derives a stable identifier so repeated fetches of the same grade
// map to the same id. Two same-subject, same-day grades with identical
// comments collide; providers that expose their own id should prefer it.
func GradeID(subject string, timestamp time.Time, comment string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", subject, timestamp.UnixMilli(), comment)))
	return fmt.Sprintf("%x", sum[:12])
}

type SubjectAverage struct {
	SubjectName  string     `json:"subject_name"`
	Average      GradeValue `json:"average"`
	ClassAverage GradeValue `json:"class_average"`
	Min          GradeValue `json:"min"`
	Max          GradeValue `json:"max"`
	OutOf        GradeValue `json:"out_of"`
}

// AverageOverview summarizes averages for one period.
type AverageOverview struct {
	Subjects     []SubjectAverage `json:"subjects"`
	Overall      GradeValue       `json:"overall"`
	ClassOverall GradeValue       `json:"class_overall"`
}

// ComputeAverage returns the coefficient-weighted student average of grades
// rescaled to /20. Disabled values and grades without a usable scale are
// skipped. The result is Missing when nothing counts.
func ComputeAverage(grades []Grade) GradeValue {
	var total, weights float64
	for _, g := range grades {
		value, ok := g.Student.Number()
		if !ok {
			continue
		}
		outOf, ok := g.OutOf.Number()
		if !ok || outOf <= 0 {
			continue
		}
		coef := g.Coefficient
		if coef <= 0 {
			coef = 1
		}
		total += value / outOf * 20 * coef
		weights += coef
	}
	if weights == 0 {
		return Missing()
	}
	return Graded(total / weights)
}
