package notification

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"our-diary/internal/memo"
	"our-diary/internal/user"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeSender struct {
	mu    sync.Mutex
	sent  []sentMail
	fail  bool
	notif chan sentMail
}

func newFakeSender() *fakeSender {
	return &fakeSender{notif: make(chan sentMail, 16)}
}

func (f *fakeSender) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp down")
	}
	mail := sentMail{To: to, Subject: subject, Body: body}
	f.sent = append(f.sent, mail)
	f.notif <- mail
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeNotifRepo struct {
	mu     sync.Mutex
	memos  map[uint]*memo.Memo
	owners map[uint]*user.User // keyed by user id
	jobs   map[string]*DelayedJob
}

func newFakeNotifRepo() *fakeNotifRepo {
	return &fakeNotifRepo{
		memos:  make(map[uint]*memo.Memo),
		owners: make(map[uint]*user.User),
		jobs:   make(map[string]*DelayedJob),
	}
}

func (f *fakeNotifRepo) addMemo(m *memo.Memo, owner *user.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.UserID = owner.ID
	f.memos[m.ID] = m
	f.owners[owner.ID] = owner
}

func (f *fakeNotifRepo) reminder(m *memo.Memo) Reminder {
	owner := f.owners[m.UserID]
	return Reminder{MemoID: m.ID, Title: m.Title, DateKey: m.DateKey, Email: owner.Email, Nickname: owner.Nickname}
}

func (f *fakeNotifRepo) DueDaily(today, sevenDay string) ([]Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Reminder
	for _, m := range f.memos {
		if !m.SendEmail {
			continue
		}
		if (m.DateKey == today && !m.NotifiedToday) || (m.DateKey == sevenDay && !m.Notified7Day) {
			out = append(out, f.reminder(m))
		}
	}
	return out, nil
}

func (f *fakeNotifRepo) DueCountdown(today, sevenDay string) ([]Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Reminder
	for _, m := range f.memos {
		if m.SendEmail && m.DateKey > today && m.DateKey < sevenDay && m.LastCountdownDate != today {
			out = append(out, f.reminder(m))
		}
	}
	return out, nil
}

func (f *fakeNotifRepo) MarkNotifiedToday(memoID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memos[memoID].NotifiedToday = true
	return nil
}

func (f *fakeNotifRepo) MarkNotified7Day(memoID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memos[memoID].Notified7Day = true
	return nil
}

func (f *fakeNotifRepo) MarkCountdownSent(memoID uint, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memos[memoID].LastCountdownDate = date
	return nil
}

func (f *fakeNotifRepo) MemoWithOwner(memoID uint) (*memo.Memo, *user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.memos[memoID]
	if !ok {
		return nil, nil, ErrNotFound
	}
	cp := *m
	owner := *f.owners[m.UserID]
	return &cp, &owner, nil
}

func (f *fakeNotifRepo) CreateJob(j *DelayedJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *j
	f.jobs[j.ID] = &cp
	return nil
}

func (f *fakeNotifRepo) DeleteJob(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.jobs, id)
	return nil
}

func (f *fakeNotifRepo) DeleteJobsForMemo(memoID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, j := range f.jobs {
		if j.MemoID == memoID {
			delete(f.jobs, id)
		}
	}
	return nil
}

func (f *fakeNotifRepo) PendingJobs() ([]DelayedJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []DelayedJob
	for _, j := range f.jobs {
		out = append(out, *j)
	}
	return out, nil
}

func (f *fakeNotifRepo) jobCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

var testOwner = &user.User{ID: 1, Email: "ki@example.com", Nickname: "Ki"}

func dateKeyIn(now time.Time, days int) string {
	return now.AddDate(0, 0, days).Format(dateLayout)
}

func TestSweep_DDay(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	repo := newFakeNotifRepo()
	sender := newFakeSender()
	repo.addMemo(&memo.Memo{ID: 1, DateKey: dateKeyIn(now, 0), Title: "Concert", SendEmail: true}, testOwner)

	s := NewScheduler(repo, sender, 0)
	s.Sweep(now)

	require.Equal(t, 1, sender.count())
	require.Contains(t, sender.sent[0].Body, "Concert")
	require.True(t, repo.memos[1].NotifiedToday)

	// Marker set, so a second sweep the same day sends nothing.
	s.Sweep(now)
	require.Equal(t, 1, sender.count())
}

func TestSweep_D7(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	repo := newFakeNotifRepo()
	sender := newFakeSender()
	repo.addMemo(&memo.Memo{ID: 1, DateKey: dateKeyIn(now, 7), Title: "Trip", SendEmail: true}, testOwner)

	NewScheduler(repo, sender, 0).Sweep(now)

	require.Equal(t, 1, sender.count())
	require.True(t, repo.memos[1].Notified7Day)
	require.False(t, repo.memos[1].NotifiedToday)
}

func TestSweep_Countdown(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	repo := newFakeNotifRepo()
	sender := newFakeSender()
	repo.addMemo(&memo.Memo{ID: 1, DateKey: dateKeyIn(now, 3), Title: "Dinner", SendEmail: true}, testOwner)

	s := NewScheduler(repo, sender, 0)
	s.Sweep(now)

	require.Equal(t, 1, sender.count())
	require.Contains(t, sender.sent[0].Body, fmt.Sprintf("%d", 3))
	require.Equal(t, dateKeyIn(now, 0), repo.memos[1].LastCountdownDate)

	// Same day: already counted down.
	s.Sweep(now)
	require.Equal(t, 1, sender.count())

	// Next day: one more countdown mail.
	s.Sweep(now.AddDate(0, 0, 1))
	require.Equal(t, 2, sender.count())
}

func TestSweep_SkipsOptedOut(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	repo := newFakeNotifRepo()
	sender := newFakeSender()
	repo.addMemo(&memo.Memo{ID: 1, DateKey: dateKeyIn(now, 0), Title: "Quiet", SendEmail: false}, testOwner)
	repo.addMemo(&memo.Memo{ID: 2, DateKey: dateKeyIn(now, 3), Title: "AlsoQuiet", SendEmail: false}, testOwner)

	NewScheduler(repo, sender, 0).Sweep(now)

	require.Zero(t, sender.count())
}

func TestSweep_SendFailureLeavesMarkerUnset(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	repo := newFakeNotifRepo()
	sender := newFakeSender()
	sender.fail = true
	repo.addMemo(&memo.Memo{ID: 1, DateKey: dateKeyIn(now, 0), Title: "Concert", SendEmail: true}, testOwner)

	s := NewScheduler(repo, sender, 0)
	s.Sweep(now)
	require.False(t, repo.memos[1].NotifiedToday)

	// Recovery: the next sweep retries and marks.
	sender.fail = false
	s.Sweep(now)
	require.Equal(t, 1, sender.count())
	require.True(t, repo.memos[1].NotifiedToday)
}

func TestDaysBetween(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, daysBetween("2026-09-01", "2026-09-01"))
	require.Equal(t, 7, daysBetween("2026-09-01", "2026-09-08"))
	require.Equal(t, -1, daysBetween("2026-09-01", "2026-08-31"))
	require.Equal(t, 30, daysBetween("2026-09-01", "2026-10-01"))
}
