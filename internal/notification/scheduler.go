package notification

import (
	"log"
	"time"
)

const dateLayout = "2006-01-02"

// Scheduler runs the daily reminder sweep at a fixed hour. D-Day, D-7 and
// countdown mails each send at most once per memo per marker; a crash between
// sending and flipping the marker causes a duplicate on the next run, which
// is accepted best-effort behavior.
type Scheduler struct {
	repo   Repository
	sender Sender
	hour   int
	now    func() time.Time
}

func NewScheduler(repo Repository, sender Sender, hour int) *Scheduler {
	if hour < 0 || hour > 23 {
		hour = 0
	}
	return &Scheduler{repo: repo, sender: sender, hour: hour, now: time.Now}
}

// Start launches the daily loop in a goroutine.
func (s *Scheduler) Start() {
	go func() {
		for {
			now := s.now()
			next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, now.Location())
			if !next.After(now) {
				next = next.AddDate(0, 0, 1)
			}
			time.Sleep(next.Sub(now))
			s.Sweep(s.now())
		}
	}()
	log.Printf("[scheduler] daily reminder sweep scheduled for %02d:00", s.hour)
}

// Sweep scans for memos due a D-Day, D-7 or countdown mail relative to now,
// sends them, and flips the matching marker. Per-memo failures are logged and
// never interrupt the rest of the sweep.
func (s *Scheduler) Sweep(now time.Time) {
	today := now.Format(dateLayout)
	sevenDay := now.AddDate(0, 0, 7).Format(dateLayout)

	reminders, err := s.repo.DueDaily(today, sevenDay)
	if err != nil {
		log.Printf("[scheduler] due query failed: %v", err)
		return
	}

	for _, r := range reminders {
		var subject, body string
		var mark func(uint) error
		switch r.DateKey {
		case today:
			subject, body = dDayEmail(r.Nickname, r.Title, r.DateKey)
			mark = s.repo.MarkNotifiedToday
		case sevenDay:
			subject, body = d7Email(r.Nickname, r.Title, r.DateKey)
			mark = s.repo.MarkNotified7Day
		default:
			continue
		}

		if err := s.sender.Send(r.Email, subject, body); err != nil {
			log.Printf("[scheduler] send failed (memo %d, to %s): %v", r.MemoID, r.Email, err)
			continue
		}
		if err := mark(r.MemoID); err != nil {
			log.Printf("[scheduler] marker update failed (memo %d): %v", r.MemoID, err)
		}
	}

	countdowns, err := s.repo.DueCountdown(today, sevenDay)
	if err != nil {
		log.Printf("[scheduler] countdown query failed: %v", err)
		return
	}

	for _, r := range countdowns {
		daysLeft := daysBetween(today, r.DateKey)
		subject, body := countdownEmail(r.Nickname, r.Title, daysLeft)

		if err := s.sender.Send(r.Email, subject, body); err != nil {
			log.Printf("[scheduler] countdown send failed (memo %d, to %s): %v", r.MemoID, r.Email, err)
			continue
		}
		if err := s.repo.MarkCountdownSent(r.MemoID, today); err != nil {
			log.Printf("[scheduler] countdown marker update failed (memo %d): %v", r.MemoID, err)
		}
	}
}

// daysBetween counts calendar days from one date key to another.
func daysBetween(from, to string) int {
	a, err := time.Parse(dateLayout, from)
	if err != nil {
		return 0
	}
	b, err := time.Parse(dateLayout, to)
	if err != nil {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}
