package dispatch

import (
	"context"
	"log"

	"github.com/mrlokans/schooldesk/internal/entities"
)

// Report holds the outcome of each domain refreshed by RefreshAll.
type Report map[entities.Domain]Outcome

// FailedDomains lists the domains whose refresh failed.
func (r Report) FailedDomains() []entities.Domain {
	var out []entities.Domain
	for _, d := range entities.AllDomains() {
		if r[d] == Failed {
			out = append(out, d)
		}
	}
	return out
}

// RefreshAll refreshes every domain of account for week. Periods are loaded
// first so grades and attendance use a fresh default period.
func (d *Dispatcher) RefreshAll(ctx context.Context, account entities.Account, linked []entities.Account, week int) Report {
	report := make(Report, len(entities.AllDomains()))

	periods := d.UpdatePeriods(ctx, account)
	report[entities.DomainGrades] = periods
	if periods != Failed {
		report[entities.DomainGrades] = d.UpdateGradesAndAverages(ctx, account, "")
		report[entities.DomainAttendance] = d.UpdateAttendance(ctx, account, "")
	} else {
		report[entities.DomainAttendance] = Skipped
	}

	report[entities.DomainHomework] = d.UpdateHomeworkForWeek(ctx, account, week)
	report[entities.DomainTimetable] = d.UpdateTimetableForWeek(ctx, account, week)
	report[entities.DomainNews] = d.UpdateNews(ctx, account)
	report[entities.DomainChats] = d.UpdateChats(ctx, account)
	report[entities.DomainCanteen] = d.UpdateCanteen(ctx, account, linked)

	log.Printf("[DISPATCH] Refreshed %s account %s for week %d: %v", account.Service, account.LocalID, week, report)
	return report
}

// Refresh runs one domain the way RefreshAll would.
func (d *Dispatcher) Refresh(ctx context.Context, account entities.Account, linked []entities.Account, domain entities.Domain, week int) Outcome {
	switch domain {
	case entities.DomainGrades:
		if o := d.UpdatePeriods(ctx, account); o == Failed {
			return o
		}
		return d.UpdateGradesAndAverages(ctx, account, "")
	case entities.DomainAttendance:
		return d.UpdateAttendance(ctx, account, "")
	case entities.DomainHomework:
		return d.UpdateHomeworkForWeek(ctx, account, week)
	case entities.DomainTimetable:
		return d.UpdateTimetableForWeek(ctx, account, week)
	case entities.DomainNews:
		return d.UpdateNews(ctx, account)
	case entities.DomainChats:
		return d.UpdateChats(ctx, account)
	case entities.DomainCanteen:
		return d.UpdateCanteen(ctx, account, linked)
	}
	log.Printf("[DISPATCH] Unknown domain %q", domain)
	return Skipped
}
