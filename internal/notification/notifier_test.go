package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"our-diary/internal/memo"
)

func waitForMail(t *testing.T, sender *fakeSender) sentMail {
	t.Helper()
	select {
	case m := <-sender.notif:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mail")
		return sentMail{}
	}
}

func requireNoMail(t *testing.T, sender *fakeSender, wait time.Duration) {
	t.Helper()
	select {
	case m := <-sender.notif:
		t.Fatalf("unexpected mail to %s: %q", m.To, m.Subject)
	case <-time.After(wait):
	}
}

func newTestNotifier(repo Repository, sender Sender, now time.Time) *Notifier {
	n := NewNotifier(repo, sender)
	n.delay = 20 * time.Millisecond
	n.now = func() time.Time { return now }
	return n
}

func TestMemoSaved_ConfirmationAndDelayedReminder(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeNotifRepo()
	sender := newFakeSender()
	repo.addMemo(&memo.Memo{ID: 1, DateKey: dateKeyIn(now, 3), Title: "Dinner", SendEmail: true}, testOwner)

	n := newTestNotifier(repo, sender, now)
	n.MemoSaved(1)

	first := waitForMail(t, sender)
	require.Equal(t, "ki@example.com", first.To)
	require.Contains(t, first.Body, "Dinner")

	// The follow-up reminder fires after the delay and cleans up its job.
	second := waitForMail(t, sender)
	require.Contains(t, second.Body, "Dinner")
	require.Zero(t, repo.jobCount())
}

func TestMemoSaved_NoReminderForFarDates(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeNotifRepo()
	sender := newFakeSender()
	repo.addMemo(&memo.Memo{ID: 1, DateKey: dateKeyIn(now, 30), Title: "FarOff", SendEmail: true}, testOwner)

	n := newTestNotifier(repo, sender, now)
	n.MemoSaved(1)

	waitForMail(t, sender) // confirmation only
	requireNoMail(t, sender, 100*time.Millisecond)
	require.Zero(t, repo.jobCount())
}

func TestMemoSaved_RespectsOptOut(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeNotifRepo()
	sender := newFakeSender()
	repo.addMemo(&memo.Memo{ID: 1, DateKey: dateKeyIn(now, 3), Title: "Quiet", SendEmail: false}, testOwner)

	n := newTestNotifier(repo, sender, now)
	n.MemoSaved(1)

	requireNoMail(t, sender, 100*time.Millisecond)
}

func TestMemoDeleted_CancelsPendingReminder(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeNotifRepo()
	sender := newFakeSender()
	m := &memo.Memo{ID: 1, DateKey: dateKeyIn(now, 3), Title: "Dinner", SendEmail: true}
	repo.addMemo(m, testOwner)

	n := NewNotifier(repo, sender)
	n.delay = time.Hour // never fires on its own
	n.now = func() time.Time { return now }
	n.MemoSaved(1)

	waitForMail(t, sender) // confirmation
	require.Equal(t, 1, repo.jobCount())

	deleted := *m
	n.MemoDeleted(&deleted, testOwner)

	// Deletion notice, then silence: the reminder was cancelled.
	notice := waitForMail(t, sender)
	require.Contains(t, notice.Body, "Dinner")
	require.Zero(t, repo.jobCount())
	requireNoMail(t, sender, 100*time.Millisecond)
}

func TestMemoDeleted_RespectsOptOut(t *testing.T) {
	repo := newFakeNotifRepo()
	sender := newFakeSender()

	n := NewNotifier(repo, sender)
	n.MemoDeleted(&memo.Memo{ID: 9, Title: "Quiet", SendEmail: false}, testOwner)

	requireNoMail(t, sender, 100*time.Millisecond)
}

func TestRestore_FiresOverdueJobs(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeNotifRepo()
	sender := newFakeSender()
	repo.addMemo(&memo.Memo{ID: 1, DateKey: dateKeyIn(now, 3), Title: "Dinner", SendEmail: true}, testOwner)
	require.NoError(t, repo.CreateJob(&DelayedJob{
		ID:     "restored-job",
		MemoID: 1,
		UserID: testOwner.ID,
		Kind:   JobKindReminder,
		DueAt:  now.Add(-time.Minute),
	}))

	n := newTestNotifier(repo, sender, now)
	require.NoError(t, n.Restore())

	m := waitForMail(t, sender)
	require.Contains(t, m.Body, "Dinner")
	require.Zero(t, repo.jobCount())
}

func TestDelayedReminder_SkipsMemoDeletedMeanwhile(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeNotifRepo()
	sender := newFakeSender()
	require.NoError(t, repo.CreateJob(&DelayedJob{
		ID:     "stale-job",
		MemoID: 99, // no such memo anymore
		UserID: testOwner.ID,
		Kind:   JobKindReminder,
		DueAt:  now.Add(-time.Minute),
	}))

	n := newTestNotifier(repo, sender, now)
	require.NoError(t, n.Restore())

	requireNoMail(t, sender, 200*time.Millisecond)
	require.Zero(t, repo.jobCount())
}
