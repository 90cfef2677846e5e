package domain

import "time"

// Calendar is a user's connected external calendar account.
type Calendar struct {
	Recorder

	ID          string
	UserID      string
	Platform    string
	AuthToken   *AuthToken
	SyncToken   *string
	LastSyncAt  *time.Time
	NeedsReauth bool
}

// ApplySyncResult records the outcome of a SyncCalendar gateway call.
func (c *Calendar) ApplySyncResult(nextSyncToken string, at time.Time) {
	c.SyncToken = &nextSyncToken
	c.LastSyncAt = &at
}

// MarkNeedsReauth flags the calendar for out-of-scope UI handling after a
// permanent token-refresh failure (§4.4 step 1, §7 TokenExpired).
func (c *Calendar) MarkNeedsReauth() {
	c.NeedsReauth = true
}

// CalendarEntrySeries is the recurrence-owning projection of an external
// recurring event.
type CalendarEntrySeries struct {
	Recorder

	ID               string
	UserID           string
	CalendarID       string
	Platform         string
	SeriesPlatformID string
	Name             string
	Frequency        TaskFrequency
	EventCategory    string
	Recurrence       *RecurrenceSchedule
	StartsAt         time.Time
	EndsAt           *time.Time

	isNew bool
}

// NewCalendarEntrySeries constructs a series with its deterministic identity.
func NewCalendarEntrySeries(userID, calendarID, platform, seriesPlatformID string) *CalendarEntrySeries {
	return &CalendarEntrySeries{
		ID:               CalendarEntrySeriesID(platform, seriesPlatformID),
		UserID:           userID,
		CalendarID:       calendarID,
		Platform:         platform,
		SeriesPlatformID: seriesPlatformID,
		isNew:            true,
	}
}

// Differs reports whether any user-visible field of other diverges from s,
// per §4.4 step 3's "a field differs" check.
func (s *CalendarEntrySeries) Differs(name, eventCategory string, frequency TaskFrequency, recurrence *RecurrenceSchedule, startsAt time.Time, endsAt *time.Time) bool {
	if s.Name != name || s.EventCategory != eventCategory || s.Frequency != frequency {
		return true
	}
	if !s.StartsAt.Equal(startsAt) {
		return true
	}
	if (s.EndsAt == nil) != (endsAt == nil) {
		return true
	}
	if s.EndsAt != nil && endsAt != nil && !s.EndsAt.Equal(*endsAt) {
		return true
	}
	if (s.Recurrence == nil) != (recurrence == nil) {
		return true
	}
	if s.Recurrence != nil && recurrence != nil && *s.Recurrence != *recurrence {
		return true
	}
	return false
}

// Apply overwrites the series' mutable fields and raises the appropriate
// create/update event (§4.4 step 3).
func (s *CalendarEntrySeries) Apply(name, eventCategory string, frequency TaskFrequency, recurrence *RecurrenceSchedule, startsAt time.Time, endsAt *time.Time) {
	s.Name = name
	s.EventCategory = eventCategory
	s.Frequency = frequency
	s.Recurrence = recurrence
	s.StartsAt = startsAt
	s.EndsAt = endsAt
	s.touch()
}

// End closes out the series as of now, used both when upstream deletes the
// series and when its last future entry is removed (§4.4 steps 5-6).
func (s *CalendarEntrySeries) End(at time.Time) {
	s.EndsAt = &at
	s.touch()
}

// MarkPersisted flips isNew off after the series' first successful commit.
func (s *CalendarEntrySeries) MarkPersisted() { s.isNew = false }

func (s *CalendarEntrySeries) touch() {
	snap := s.snapshot()
	if s.isNew {
		s.Record(CalendarEntrySeriesCreatedEvent{Base: base(s.UserID), SeriesID: s.ID, Snapshot: snap})
		return
	}
	s.Record(CalendarEntrySeriesUpdatedEvent{Base: base(s.UserID), SeriesID: s.ID, Snapshot: snap})
}

func (s *CalendarEntrySeries) snapshot() entitySnapshot {
	return entitySnapshot{
		"id":                 s.ID,
		"user_id":            s.UserID,
		"calendar_id":        s.CalendarID,
		"platform":           s.Platform,
		"series_platform_id": s.SeriesPlatformID,
		"name":               s.Name,
		"frequency":          s.Frequency,
		"event_category":     s.EventCategory,
		"recurrence":         s.Recurrence,
		"starts_at":          s.StartsAt,
		"ends_at":            s.EndsAt,
	}
}
