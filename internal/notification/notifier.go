package notification

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"our-diary/internal/memo"
	"our-diary/internal/user"
)

// ReminderDelay is how long after a save the follow-up reminder fires when
// the memo's date is within the next week.
const ReminderDelay = time.Minute

// Notifier sends the event-triggered mails: a confirmation right after a
// memo is saved, an optional delayed reminder, and a notice after deletion.
// Delayed reminders are persisted as DelayedJob rows so they survive
// restarts, and the in-process timers are cancellable by memo id.
type Notifier struct {
	repo   Repository
	sender Sender
	delay  time.Duration
	now    func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer
	byMemo map[uint][]string
}

func NewNotifier(repo Repository, sender Sender) *Notifier {
	return &Notifier{
		repo:   repo,
		sender: sender,
		delay:  ReminderDelay,
		now:    time.Now,
		timers: make(map[string]*time.Timer),
		byMemo: make(map[uint][]string),
	}
}

// MemoSaved runs right after a memo is created or updated. Failures are
// logged only; the memo mutation has already succeeded.
func (n *Notifier) MemoSaved(memoID uint) {
	m, owner, err := n.repo.MemoWithOwner(memoID)
	if err != nil {
		log.Printf("[notifier] lookup failed (memo %d): %v", memoID, err)
		return
	}
	if !m.SendEmail {
		return
	}

	subject, body := registeredEmail(owner.Nickname, m.Title, m.DateKey)
	if err := n.sender.Send(owner.Email, subject, body); err != nil {
		log.Printf("[notifier] confirmation send failed (memo %d): %v", memoID, err)
	}

	today := n.now().Format(dateLayout)
	daysLeft := daysBetween(today, m.DateKey)
	if daysLeft < 0 || daysLeft > 7 {
		return
	}

	job := &DelayedJob{
		ID:     uuid.NewString(),
		MemoID: m.ID,
		UserID: owner.ID,
		Kind:   JobKindReminder,
		DueAt:  n.now().Add(n.delay),
	}
	if err := n.repo.CreateJob(job); err != nil {
		log.Printf("[notifier] could not persist delayed reminder (memo %d): %v", memoID, err)
		return
	}
	n.schedule(job, n.delay)
}

// MemoDeleted runs after a successful delete, given the just-deleted memo
// and its owner. Pending reminders for the memo are cancelled first.
func (n *Notifier) MemoDeleted(m *memo.Memo, owner *user.User) {
	if m != nil {
		n.cancelForMemo(m.ID)
	}
	if m == nil || owner == nil {
		return
	}
	if !m.SendEmail {
		return
	}

	subject, body := deletedEmail(owner.Nickname, m.Title, m.DateKey)
	if err := n.sender.Send(owner.Email, subject, body); err != nil {
		log.Printf("[notifier] deletion send failed (memo %d): %v", m.ID, err)
	}
}

// Restore reloads persisted delayed jobs after a restart. Overdue jobs fire
// immediately.
func (n *Notifier) Restore() error {
	jobs, err := n.repo.PendingJobs()
	if err != nil {
		return err
	}
	for i := range jobs {
		job := jobs[i]
		delay := job.DueAt.Sub(n.now())
		if delay < 0 {
			delay = 0
		}
		n.schedule(&job, delay)
	}
	if len(jobs) > 0 {
		log.Printf("[notifier] restored %d pending delayed reminder(s)", len(jobs))
	}
	return nil
}

func (n *Notifier) schedule(job *DelayedJob, delay time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id, memoID := job.ID, job.MemoID
	n.timers[id] = time.AfterFunc(delay, func() { n.fire(id, memoID) })
	n.byMemo[memoID] = append(n.byMemo[memoID], id)
}

func (n *Notifier) fire(jobID string, memoID uint) {
	n.forget(jobID, memoID)
	if err := n.repo.DeleteJob(jobID); err != nil {
		log.Printf("[notifier] delayed job cleanup failed (%s): %v", jobID, err)
	}

	// Re-fetch so a memo edited or removed during the delay is respected.
	m, owner, err := n.repo.MemoWithOwner(memoID)
	if err != nil {
		log.Printf("[notifier] delayed reminder skipped (memo %d): %v", memoID, err)
		return
	}
	if !m.SendEmail {
		return
	}

	daysLeft := daysBetween(n.now().Format(dateLayout), m.DateKey)
	subject, body := reminderEmail(owner.Nickname, m.Title, daysLeft)
	if err := n.sender.Send(owner.Email, subject, body); err != nil {
		log.Printf("[notifier] delayed reminder send failed (memo %d): %v", memoID, err)
	}
}

func (n *Notifier) cancelForMemo(memoID uint) {
	n.mu.Lock()
	ids := n.byMemo[memoID]
	delete(n.byMemo, memoID)
	for _, id := range ids {
		if t, ok := n.timers[id]; ok {
			t.Stop()
			delete(n.timers, id)
		}
	}
	n.mu.Unlock()

	if err := n.repo.DeleteJobsForMemo(memoID); err != nil {
		log.Printf("[notifier] delayed job cleanup failed (memo %d): %v", memoID, err)
	}
}

func (n *Notifier) forget(jobID string, memoID uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.timers, jobID)
	ids := n.byMemo[memoID]
	for i, id := range ids {
		if id == jobID {
			n.byMemo[memoID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(n.byMemo[memoID]) == 0 {
		delete(n.byMemo, memoID)
	}
}
