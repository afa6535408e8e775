// Package refresh runs refreshes against the current account. It is the
// single entry point used by the scheduler, the task queue, the CLI and the
// HTTP API.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mrlokans/schooldesk/internal/accounts"
	"github.com/mrlokans/schooldesk/internal/dispatch"
	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/ical"
	"github.com/mrlokans/schooldesk/internal/schoolyear"
	"github.com/mrlokans/schooldesk/internal/services"
)

var (
	// ErrNotCurrent is returned when a refresh targets an account other than
	// the current one. Cache stores only ever hold the current account.
	ErrNotCurrent    = errors.New("account is not the current account")
	ErrUnknownDomain = errors.New("unknown domain")
)

type Config struct {
	Accounts   *accounts.Registry
	Dispatcher *dispatch.Dispatcher
	Importer   *ical.Importer
	Now        func() time.Time
}

type Service struct {
	accounts   *accounts.Registry
	dispatcher *dispatch.Dispatcher
	importer   *ical.Importer
	now        func() time.Time
}

func NewService(cfg Config) *Service {
	s := &Service{
		accounts:   cfg.Accounts,
		dispatcher: cfg.Dispatcher,
		importer:   cfg.Importer,
		now:        cfg.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CurrentWeek returns the epoch week of today for account.
func (s *Service) CurrentWeek(account entities.Account) int {
	now := s.now()
	return schoolyear.WeekNumber(services.SchoolYearStart(account, now), now)
}

// resolve returns the current account. An empty localID means "whatever is
// current"; any other id must name the current account.
func (s *Service) resolve(localID string) (entities.Account, error) {
	current, ok := s.accounts.Current()
	if localID != "" && (!ok || current.LocalID != localID) {
		if _, known := s.accounts.Get(localID); !known {
			return entities.Account{}, fmt.Errorf("%w: %s", accounts.ErrAccountNotFound, localID)
		}
		return entities.Account{}, fmt.Errorf("%w: %s", ErrNotCurrent, localID)
	}
	if !ok {
		return entities.Account{}, accounts.ErrNoCurrent
	}
	return current, nil
}

// Current returns the current account, or accounts.ErrNoCurrent.
func (s *Service) Current() (entities.Account, error) {
	return s.resolve("")
}

func (s *Service) week(account entities.Account, week int) int {
	if week == 0 {
		return s.CurrentWeek(account)
	}
	return week
}

// RefreshAll refreshes every domain of the account. Week 0 means the current
// week.
func (s *Service) RefreshAll(ctx context.Context, localID string, week int) (dispatch.Report, error) {
	account, err := s.resolve(localID)
	if err != nil {
		return nil, err
	}
	return s.dispatcher.RefreshAll(ctx, account, s.accounts.Linked(account), s.week(account, week)), nil
}

// RefreshDomain refreshes a single domain of the account.
func (s *Service) RefreshDomain(ctx context.Context, localID string, domain entities.Domain, week int) (dispatch.Outcome, error) {
	if _, ok := entities.ParseDomain(string(domain)); !ok {
		return dispatch.Skipped, fmt.Errorf("%w: %q", ErrUnknownDomain, domain)
	}
	account, err := s.resolve(localID)
	if err != nil {
		return dispatch.Skipped, err
	}
	return s.dispatcher.Refresh(ctx, account, s.accounts.Linked(account), domain, s.week(account, week)), nil
}

// ImportCalendars imports calendar feeds into the account's timetable. With
// no urls the account's own subscriptions are imported.
func (s *Service) ImportCalendars(ctx context.Context, localID string, urls []string) ([]ical.Result, error) {
	account, err := s.resolve(localID)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		urls = ical.Subscriptions(account)
	}
	if len(urls) == 0 {
		return nil, nil
	}
	return s.importer.Import(ctx, account, urls)
}

// RefreshCurrent refreshes everything for the current account, including its
// calendar subscriptions. Having no current account is not an error.
func (s *Service) RefreshCurrent(ctx context.Context) error {
	account, err := s.resolve("")
	if errors.Is(err, accounts.ErrNoCurrent) {
		log.Println("[REFRESH] No current account, nothing to refresh")
		return nil
	}
	if err != nil {
		return err
	}

	report := s.dispatcher.RefreshAll(ctx, account, s.accounts.Linked(account), s.CurrentWeek(account))

	var errs []error
	if failed := report.FailedDomains(); len(failed) > 0 {
		errs = append(errs, fmt.Errorf("refresh failed for %v", failed))
	}
	results, err := s.ImportCalendars(ctx, account.LocalID, nil)
	if err != nil {
		errs = append(errs, err)
	}
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("calendar %s: %w", r.URL, r.Err))
		}
	}
	return errors.Join(errs...)
}

// ToggleHomeworkDone marks one homework of the current account done or not,
// on the provider first. Week 0 means the current week.
func (s *Service) ToggleHomeworkDone(ctx context.Context, localID string, week int, homeworkID string, done bool) (dispatch.Outcome, error) {
	account, err := s.resolve(localID)
	if err != nil {
		return dispatch.Skipped, err
	}
	return s.dispatcher.ToggleHomeworkDone(ctx, account, s.week(account, week), homeworkID, done), nil
}

// RefreshChatMessages refreshes the messages of one chat.
func (s *Service) RefreshChatMessages(ctx context.Context, localID, chatID string) (dispatch.Outcome, error) {
	account, err := s.resolve(localID)
	if err != nil {
		return dispatch.Skipped, err
	}
	return s.dispatcher.UpdateChatMessages(ctx, account, chatID), nil
}

// ForgetCalendar drops every class imported from url from the current
// account's timetable.
func (s *Service) ForgetCalendar(ctx context.Context, localID, url string) error {
	if _, err := s.resolve(localID); err != nil {
		return err
	}
	return s.importer.Forget(ctx, url)
}
