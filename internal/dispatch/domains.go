package dispatch

import (
	"context"

	"github.com/mrlokans/schooldesk/internal/cache"
	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/services"
)

// UpdatePeriods refreshes the period lists of the grades and attendance
// stores, for whichever of the two domains the account serves.
func (d *Dispatcher) UpdatePeriods(ctx context.Context, account entities.Account) Outcome {
	withGrades := d.gate.IsSupported(account, entities.DomainGrades)
	withAttendance := d.gate.IsSupported(account, entities.DomainAttendance)

	j := job{
		account: account,
		domain:  entities.DomainGrades,
		key:     cache.KeyPeriods,
		store:   d.stores.Grades,
	}
	if !withGrades && withAttendance {
		j.domain = entities.DomainAttendance
		j.store = d.stores.Attendance
	}

	// The attendance list rides along with the grades fetch and needs its
	// own ticket.
	var attendanceTicket cache.Ticket
	rideAlong := withGrades && withAttendance && d.stores.Attendance.AccountID() == account.LocalID
	if rideAlong {
		attendanceTicket = d.stores.Attendance.Begin(cache.KeyPeriods)
	}

	j.run = func(ctx context.Context, adapter services.Adapter, t cache.Ticket) error {
		result, err := adapter.FetchPeriods(ctx, account)
		if err != nil {
			return err
		}
		def := result.DefaultPeriodName
		if def == "" {
			def = SelectDefaultPeriod(result.Periods, d.now())
		}
		if !withGrades {
			return d.stores.Attendance.UpdatePeriods(ctx, t, result.Periods, def)
		}
		if err := d.stores.Grades.UpdatePeriods(ctx, t, result.Periods, def); err != nil {
			return err
		}
		if rideAlong {
			return d.stores.Attendance.UpdatePeriods(ctx, attendanceTicket, result.Periods, def)
		}
		return nil
	}
	return d.dispatch(ctx, j)
}

// UpdateGradesAndAverages refreshes one period. An empty period name means
// the selected or default period of the grades store.
func (d *Dispatcher) UpdateGradesAndAverages(ctx context.Context, account entities.Account, period string) Outcome {
	if period == "" {
		period = d.stores.Grades.PeriodList().Current()
	}
	return d.dispatch(ctx, job{
		account: account,
		domain:  entities.DomainGrades,
		key:     cache.PeriodKey(period),
		store:   d.stores.Grades,
		run: func(ctx context.Context, adapter services.Adapter, t cache.Ticket) error {
			if period == "" {
				return services.ErrPeriodNotFound
			}
			result, err := adapter.FetchGrades(ctx, account, period)
			if err != nil {
				return err
			}
			return d.stores.Grades.UpdateGradesAndAverages(ctx, t, period, result.Grades, result.Averages)
		},
	})
}

func (d *Dispatcher) UpdateAttendance(ctx context.Context, account entities.Account, period string) Outcome {
	if period == "" {
		period = d.stores.Attendance.PeriodList().Current()
	}
	return d.dispatch(ctx, job{
		account: account,
		domain:  entities.DomainAttendance,
		key:     cache.PeriodKey(period),
		store:   d.stores.Attendance,
		run: func(ctx context.Context, adapter services.Adapter, t cache.Ticket) error {
			if period == "" {
				return services.ErrPeriodNotFound
			}
			attendance, err := adapter.FetchAttendance(ctx, account, period)
			if err != nil {
				return err
			}
			return d.stores.Attendance.UpdateAttendance(ctx, t, period, attendance)
		},
	})
}

func (d *Dispatcher) UpdateHomeworkForWeek(ctx context.Context, account entities.Account, week int) Outcome {
	return d.dispatch(ctx, job{
		account: account,
		domain:  entities.DomainHomework,
		key:     cache.WeekKey(week),
		store:   d.stores.Homework,
		run: func(ctx context.Context, adapter services.Adapter, t cache.Ticket) error {
			homework, err := adapter.FetchHomeworkForWeek(ctx, account, week)
			if err != nil {
				return err
			}
			return d.stores.Homework.UpdateHomework(ctx, t, week, homework)
		},
	})
}

// UpdateTimetableForWeek replaces the provider classes of week. Imported
// calendar classes stay.
func (d *Dispatcher) UpdateTimetableForWeek(ctx context.Context, account entities.Account, week int) Outcome {
	return d.dispatch(ctx, job{
		account: account,
		domain:  entities.DomainTimetable,
		key:     cache.WeekKey(week),
		store:   d.stores.Timetable,
		run: func(ctx context.Context, adapter services.Adapter, t cache.Ticket) error {
			classes, err := adapter.FetchTimetableForWeek(ctx, account, week)
			if err != nil {
				return err
			}
			return d.stores.Timetable.UpdateClasses(ctx, t, week, classes)
		},
	})
}

func (d *Dispatcher) UpdateNews(ctx context.Context, account entities.Account) Outcome {
	return d.dispatch(ctx, job{
		account: account,
		domain:  entities.DomainNews,
		key:     cache.KeyNews,
		store:   d.stores.News,
		run: func(ctx context.Context, adapter services.Adapter, t cache.Ticket) error {
			news, err := adapter.FetchNews(ctx, account)
			if err != nil {
				return err
			}
			return d.stores.News.UpdateNews(ctx, t, news)
		},
	})
}

func (d *Dispatcher) UpdateChats(ctx context.Context, account entities.Account) Outcome {
	return d.dispatch(ctx, job{
		account: account,
		domain:  entities.DomainChats,
		key:     cache.KeyChats,
		store:   d.stores.Chats,
		run: func(ctx context.Context, adapter services.Adapter, t cache.Ticket) error {
			chats, err := adapter.FetchChats(ctx, account)
			if err != nil {
				return err
			}
			return d.stores.Chats.UpdateChats(ctx, t, chats)
		},
	})
}

// UpdateChatMessages refreshes the messages of one chat. The chat is taken
// from the chats store when cached.
func (d *Dispatcher) UpdateChatMessages(ctx context.Context, account entities.Account, chatID string) Outcome {
	return d.dispatch(ctx, job{
		account: account,
		domain:  entities.DomainChats,
		key:     cache.ChatKey(chatID),
		store:   d.stores.Chats,
		run: func(ctx context.Context, adapter services.Adapter, t cache.Ticket) error {
			chat, ok := d.stores.Chats.Chat(chatID)
			if !ok {
				chat = entities.Chat{ID: chatID}
			}
			messages, err := adapter.FetchChatMessages(ctx, account, chat)
			if err != nil {
				return err
			}
			return d.stores.Chats.UpdateMessages(ctx, t, chatID, messages)
		},
	})
}

// ToggleHomeworkDone updates the provider first, then the cached flag.
func (d *Dispatcher) ToggleHomeworkDone(ctx context.Context, account entities.Account, week int, homeworkID string, done bool) Outcome {
	return d.dispatch(ctx, job{
		account: account,
		domain:  entities.DomainHomework,
		key:     cache.WeekKey(week),
		store:   d.stores.Homework,
		run: func(ctx context.Context, adapter services.Adapter, _ cache.Ticket) error {
			if err := adapter.ToggleHomeworkDone(ctx, account, homeworkID, done); err != nil {
				return err
			}
			_, err := d.stores.Homework.SetDone(ctx, week, homeworkID, done)
			return err
		},
	})
}

// UpdateCanteen refreshes the balances of account and of its linked
// accounts. Balances land in the canteen store of account, keyed by the
// reporting account.
func (d *Dispatcher) UpdateCanteen(ctx context.Context, account entities.Account, linked []entities.Account) Outcome {
	targets := append([]entities.Account{account}, linked...)
	outcomes := make([]Outcome, 0, len(targets))
	for _, target := range targets {
		outcomes = append(outcomes, d.dispatch(ctx, job{
			account: target,
			owner:   account.LocalID,
			domain:  entities.DomainCanteen,
			key:     cache.CanteenKey(target.LocalID),
			store:   d.stores.Canteen,
			run: func(ctx context.Context, adapter services.Adapter, t cache.Ticket) error {
				balances, err := adapter.FetchCanteen(ctx, target)
				if err != nil {
					return err
				}
				return d.stores.Canteen.UpdateBalances(ctx, t, target.LocalID, balances)
			},
		}))
	}
	return combine(outcomes)
}

// combine reports the most significant outcome of several dispatches.
func combine(outcomes []Outcome) Outcome {
	rank := map[Outcome]int{Skipped: 0, Updated: 1, Superseded: 2, Failed: 3}
	best := Skipped
	for _, o := range outcomes {
		if rank[o] > rank[best] {
			best = o
		}
	}
	return best
}
