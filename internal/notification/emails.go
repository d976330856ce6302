package notification

import "fmt"

func card(inner string) string {
	return `<div style="font-family: 'Noto Sans KR', sans-serif; padding: 20px; border: 1px solid #eee; border-radius: 12px;">` + inner + `</div>`
}

// VerificationCodeEmail is sent when a signup verification code is requested.
func VerificationCodeEmail(code string) (subject, body string) {
	subject = "Our Diary - signup verification code"
	body = card(fmt.Sprintf(
		`<h2 style="color: #c026d3;">Verification code</h2>
<p>Thanks for joining Our Diary.</p>
<p>Your code is <strong style="font-size: 24px; color: #c026d3;">%s</strong>.</p>
<p style="color: #888; font-size: 12px;">This code expires in 3 minutes.</p>`, code))
	return subject, body
}

// DeleteCodeEmail is sent when an account-deletion code is requested.
func DeleteCodeEmail(code string) (subject, body string) {
	subject = "Our Diary - account deletion code"
	body = card(fmt.Sprintf(
		`<h2 style="color: #c026d3;">Account deletion code</h2>
<p>Enter the code below to confirm deleting your account.</p>
<p>Your code is <strong style="font-size: 24px; color: #c026d3;">%s</strong>.</p>
<p style="color: #888; font-size: 12px;">This code expires in 3 minutes.</p>`, code))
	return subject, body
}

func dDayEmail(nickname, title, dateKey string) (string, string) {
	subject := fmt.Sprintf("[D-DAY] '%s' is today!", title)
	body := card(fmt.Sprintf(
		`<p>Hi %s, don't forget!</p>
<p>Today (%s) is the day of <strong>%s</strong>. 📅</p>`, nickname, dateKey, title))
	return subject, body
}

func d7Email(nickname, title, dateKey string) (string, string) {
	subject := fmt.Sprintf("[D-7] '%s' is 7 days away.", title)
	body := card(fmt.Sprintf(
		`<p>Hi %s, a heads-up in advance.</p>
<p><strong>%s</strong> is coming up in 7 days (%s). 🗓️</p>`, nickname, title, dateKey))
	return subject, body
}

func countdownEmail(nickname, title string, daysLeft int) (string, string) {
	subject := fmt.Sprintf("[Reminder] '%s' is %d day(s) away.", title, daysLeft)
	body := card(fmt.Sprintf(
		`<p>Hi %s!</p>
<p><strong>%s</strong> is <strong>%d day(s)</strong> away. Don't forget! 🗓️</p>`, nickname, title, daysLeft))
	return subject, body
}

func registeredEmail(nickname, title, dateKey string) (string, string) {
	subject := fmt.Sprintf("[Saved] '%s' has been added.", title)
	body := card(fmt.Sprintf(
		`<p>Hi %s!</p>
<p><strong>%s</strong> has been saved for <strong>%s</strong>. 🗓️</p>`, nickname, title, dateKey))
	return subject, body
}

func reminderEmail(nickname, title string, daysLeft int) (string, string) {
	when := fmt.Sprintf("%d day(s)", daysLeft)
	if daysLeft == 0 {
		when = "today"
	}
	subject := fmt.Sprintf("[Upcoming] '%s' is %s away.", title, when)
	body := card(fmt.Sprintf(
		`<p>Hi %s!</p>
<p><strong>%s</strong> is <strong>%s</strong> away. Don't forget! 🗓️</p>`, nickname, title, when))
	return subject, body
}

func deletedEmail(nickname, title, dateKey string) (string, string) {
	subject := fmt.Sprintf("[Deleted] '%s' has been removed.", title)
	body := card(fmt.Sprintf(
		`<p>Hi %s!</p>
<p>The entry <strong>'%s'</strong> on <strong>%s</strong> has been deleted.</p>`, nickname, title, dateKey))
	return subject, body
}
