package domain

import "time"

// AttendanceStatus enumerates the user's RSVP state on a CalendarEntry.
type AttendanceStatus string

const (
	AttendanceGoing    AttendanceStatus = "GOING"
	AttendanceNotGoing AttendanceStatus = "NOT_GOING"
	AttendanceTentative AttendanceStatus = "TENTATIVE"
	AttendanceUnknown  AttendanceStatus = "UNKNOWN"
)

// CalendarEntry is a single per-occurrence projection from an external
// calendar, optionally belonging to a CalendarEntrySeries.
type CalendarEntry struct {
	Recorder

	ID                string
	UserID            string
	CalendarID        string
	Platform          string
	PlatformID        string
	SeriesID          *string
	Name              string
	EventCategory     string
	Frequency         TaskFrequency
	StartsAt          time.Time
	EndsAt            time.Time
	AttendanceStatus  AttendanceStatus
	Deleted           bool

	isNew bool
}

// NewCalendarEntry constructs an entry with its deterministic identity.
func NewCalendarEntry(userID, calendarID, platform, platformID string) *CalendarEntry {
	return &CalendarEntry{
		ID:               CalendarEntryID(platform, platformID),
		UserID:           userID,
		CalendarID:       calendarID,
		Platform:         platform,
		PlatformID:       platformID,
		AttendanceStatus: AttendanceUnknown,
		isNew:            true,
	}
}

// Differs reports whether any user-visible field diverges, per §4.4 step 4.
func (e *CalendarEntry) Differs(name, eventCategory string, frequency TaskFrequency, startsAt, endsAt time.Time, attendance AttendanceStatus) bool {
	return e.Name != name || e.EventCategory != eventCategory || e.Frequency != frequency ||
		!e.StartsAt.Equal(startsAt) || !e.EndsAt.Equal(endsAt) || e.AttendanceStatus != attendance
}

// Apply overwrites the entry's mutable fields (used both for direct sync
// upserts and for the series-cascade fan-out, §4.4.1) and raises the
// appropriate create/update event.
func (e *CalendarEntry) Apply(name, eventCategory string, frequency TaskFrequency, startsAt, endsAt time.Time, attendance AttendanceStatus) {
	e.Name = name
	e.EventCategory = eventCategory
	e.Frequency = frequency
	e.StartsAt = startsAt
	e.EndsAt = endsAt
	e.AttendanceStatus = attendance
	e.touch()
}

// MarkDeleted flags the entry deleted (upstream cancellation) and raises
// CalendarEntryDeletedEvent, which carries no EntityData per the
// wire-protocol contract.
func (e *CalendarEntry) MarkDeleted() {
	e.Deleted = true
	e.Record(CalendarEntryDeletedEvent{Base: base(e.UserID), EntryID: e.ID})
}

// MarkPersisted flips isNew off after the entry's first successful commit.
func (e *CalendarEntry) MarkPersisted() { e.isNew = false }

func (e *CalendarEntry) touch() {
	snap := e.snapshot()
	if e.isNew {
		e.Record(CalendarEntryCreatedEvent{Base: base(e.UserID), EntryID: e.ID, Snapshot: snap})
		return
	}
	e.Record(CalendarEntryUpdatedEvent{Base: base(e.UserID), EntryID: e.ID, Snapshot: snap})
}

func (e *CalendarEntry) snapshot() entitySnapshot {
	return entitySnapshot{
		"id":                e.ID,
		"user_id":           e.UserID,
		"calendar_id":       e.CalendarID,
		"platform":          e.Platform,
		"platform_id":       e.PlatformID,
		"series_id":         e.SeriesID,
		"name":              e.Name,
		"event_category":    e.EventCategory,
		"frequency":         e.Frequency,
		"starts_at":         e.StartsAt,
		"ends_at":           e.EndsAt,
		"attendance_status": e.AttendanceStatus,
		"deleted":           e.Deleted,
	}
}
