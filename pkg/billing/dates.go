package billing

import "time"

// daysPerMonth is the fixed approximation used for renewals. Pricing and
// expiry math use 30-day blocks, never calendar months.
const daysPerMonth = 30

// reminderInterval is how far ahead the next reminder is scheduled
// after one is issued.
const reminderInterval = 72 * time.Hour

// dateOf truncates a timestamp to midnight UTC. Expiration dates carry
// no time-of-day significance.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// renewalBase returns the date a renewal extends from: the current
// expiry when it is still in the future, otherwise today. Early
// renewals stack on remaining time; lapsed accounts restart from today.
func renewalBase(expiry, today time.Time) time.Time {
	expiry = dateOf(expiry)
	today = dateOf(today)
	if expiry.After(today) {
		return expiry
	}
	return today
}

// extendExpiry computes the new expiration date for a purchase of the
// given number of months.
func extendExpiry(expiry, today time.Time, months int) time.Time {
	return renewalBase(expiry, today).AddDate(0, 0, daysPerMonth*months)
}
