// Package domain holds the rich aggregate behavior layer that sits above the
// generated ent client: value objects, state-machine methods, invariant
// checks, and domain event emission. Ent entities (package ent, generated
// from ent/schema) are the persistence shape; domain aggregates are the
// behavioral shape a command handler actually mutates.
package domain

import "github.com/google/uuid"

// namespace is an arbitrary fixed UUID used as the root for every
// deterministic identity derived in this package, so two processes computing
// the same natural key always agree bitwise (§3.2).
var namespace = uuid.MustParse("c9c6e772-0e0d-4f0b-9a3a-7e6c9e9a6a01")

func deterministicID(parts ...string) string {
	s := ""
	for i, p := range parts {
		if i > 0 {
			s += "\x1f"
		}
		s += p
	}
	return uuid.NewSHA1(namespace, []byte(s)).String()
}

// DayID returns the deterministic id for a user's day on date (ISO 8601).
func DayID(userID, date string) string {
	return deterministicID("day", userID, date)
}

// DayTemplateID returns the deterministic id for a user's named template.
func DayTemplateID(userID, slug string) string {
	return deterministicID("day_template", userID, slug)
}

// TaskID returns the deterministic id for a task materialized for userID on
// scheduledDate from the given routine definition and routine-task index.
// Adhoc tasks (routineDefinitionID == "") get a random id instead, since they
// have no natural key to derive from.
func TaskID(userID, scheduledDate, routineDefinitionID string, routineTaskIndex int) string {
	if routineDefinitionID == "" {
		return uuid.NewString()
	}
	return deterministicID("task", userID, scheduledDate, routineDefinitionID, itoa(routineTaskIndex))
}

// CalendarEntrySeriesID returns the deterministic id for an external
// recurring-event series.
func CalendarEntrySeriesID(platform, seriesPlatformID string) string {
	return deterministicID("calendar_entry_series", platform, seriesPlatformID)
}

// CalendarEntryID returns the deterministic id for a single external
// occurrence, keyed on (platform, platform_id) per §4.4 step 4.
func CalendarEntryID(platform, platformID string) string {
	return deterministicID("calendar_entry", platform, platformID)
}

// KioskAlarmID returns the deterministic alarm id synthesized for a
// calendar-entry KIOSK_ALARM reminder (§4.5.2), so repeated evaluator runs
// compute the same id for the same occurrence/offset/channel triple.
func KioskAlarmID(entryID string, startsAt string, minutesBefore int) string {
	return deterministicID("kiosk_alarm", entryID, startsAt, itoa(minutesBefore), "KIOSK_ALARM")
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
