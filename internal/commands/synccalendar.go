package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/ent/calendarentry"
	"github.com/dayforge/dayforge/ent/calendarentryseries"
	"github.com/dayforge/dayforge/ent/schema"
	"github.com/dayforge/dayforge/internal/domain"
	"github.com/dayforge/dayforge/internal/uow"
)

// maxFutureLookahead filters out entries reported far in the future
// (§4.4 step 4).
const maxFutureLookahead = 365 * 24 * time.Hour

// ErrTokenExpired is returned when refresh fails permanently (§7 TokenExpired).
var ErrTokenExpired = fmt.Errorf("commands: calendar token expired and could not be refreshed")

// SyncCalendarInput is the command's input (§4.4).
type SyncCalendarInput struct {
	UserID     string
	CalendarID string
}

// SyncCalendar authenticates, pulls the gateway's diff, applies
// series/entry upserts and deletes (cascading series changes to every
// affected entry, §4.4.1), and updates the calendar's sync cursor.
func SyncCalendar(ctx context.Context, u *uow.UoW, gw CalendarGateway, in SyncCalendarInput, now time.Time) error {
	tx := u.Tx()

	calRow, err := tx.Calendar.Get(ctx, in.CalendarID)
	if err != nil {
		return fmt.Errorf("commands: load calendar: %w", err)
	}
	if calRow.UserID != in.UserID {
		return fmt.Errorf("commands: calendar %s does not belong to user %s", in.CalendarID, in.UserID)
	}

	token := calRow.AuthToken
	if token == nil {
		return fmt.Errorf("commands: calendar %s has no auth token", in.CalendarID)
	}
	domainToken := domain.AuthToken{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken, ExpiresAt: token.ExpiresAt}
	if domainToken.Expired(now) {
		refreshed, err := gw.RefreshToken(ctx, domainToken)
		if err != nil {
			_, _ = tx.Calendar.UpdateOneID(in.CalendarID).SetNeedsReauth(true).Save(ctx)
			return ErrTokenExpired
		}
		domainToken = refreshed
		_, err = tx.Calendar.UpdateOneID(in.CalendarID).
			SetAuthToken(schema.AuthToken{AccessToken: refreshed.AccessToken, RefreshToken: refreshed.RefreshToken, ExpiresAt: refreshed.ExpiresAt}).
			Save(ctx)
		if err != nil {
			return fmt.Errorf("commands: persist refreshed token: %w", err)
		}
	}

	result, err := gw.LoadCalendarEvents(ctx, calRow.Platform, domainToken, calRow.SyncToken)
	if err != nil {
		return fmt.Errorf("commands: gateway load calendar events: %w", err)
	}

	for _, su := range result.SeriesUpserts {
		if err := applySeriesUpsert(ctx, u, in.UserID, in.CalendarID, calRow.Platform, su); err != nil {
			return err
		}
	}

	for _, eu := range result.EntryUpserts {
		if eu.StartsAt.After(now.Add(maxFutureLookahead)) {
			continue
		}
		if err := applyEntryUpsert(ctx, u, in.UserID, in.CalendarID, calRow.Platform, eu); err != nil {
			return err
		}
	}

	for _, platformID := range result.EntryDeletes {
		if err := applyEntryDelete(ctx, u, in.UserID, calRow.Platform, platformID, now); err != nil {
			return err
		}
	}

	for _, seriesPlatformID := range result.SeriesDeletes {
		if err := applySeriesDelete(ctx, u, in.UserID, calRow.Platform, seriesPlatformID, now); err != nil {
			return err
		}
	}

	upd := tx.Calendar.UpdateOneID(in.CalendarID).SetLastSyncAt(now)
	if result.NextSyncToken != "" {
		upd = upd.SetSyncToken(result.NextSyncToken)
	}
	if _, err := upd.Save(ctx); err != nil {
		return fmt.Errorf("commands: persist sync cursor: %w", err)
	}
	return nil
}

func applySeriesUpsert(ctx context.Context, u *uow.UoW, userID, calendarID, platform string, su CalendarSeriesUpsert) error {
	tx := u.Tx()
	id := domain.CalendarEntrySeriesID(platform, su.SeriesPlatformID)

	row, err := tx.CalendarEntrySeries.Get(ctx, id)
	var series *domain.CalendarEntrySeries
	switch {
	case ent.IsNotFound(err):
		series = domain.NewCalendarEntrySeries(userID, calendarID, platform, su.SeriesPlatformID)
		series.Apply(su.Name, su.EventCategory, su.Frequency, su.Recurrence, su.StartsAt, su.EndsAt)
		if err := persistSeries(ctx, tx, series, true); err != nil {
			return err
		}
		u.Add(series)
		series.MarkPersisted()
		return nil
	case err != nil:
		return fmt.Errorf("commands: load series: %w", err)
	default:
		series = seriesFromEnt(row)
	}

	if !series.Differs(su.Name, su.EventCategory, su.Frequency, su.Recurrence, su.StartsAt, su.EndsAt) {
		return nil
	}
	series.Apply(su.Name, su.EventCategory, su.Frequency, su.Recurrence, su.StartsAt, su.EndsAt)
	if err := persistSeries(ctx, tx, series, false); err != nil {
		return err
	}
	u.Add(series)

	// Series cascade (§4.4.1): fan the same fields out to every entry in
	// the series, exactly one CalendarEntryUpdatedEvent per entry and
	// exactly one CalendarEntrySeriesUpdatedEvent total (already recorded
	// by series.Apply above).
	entries, err := tx.CalendarEntry.Query().Where(calendarentry.SeriesID(series.ID)).All(ctx)
	if err != nil {
		return fmt.Errorf("commands: load series entries for cascade: %w", err)
	}
	for _, er := range entries {
		entry := entryFromEnt(er)
		entry.Apply(su.Name, su.EventCategory, su.Frequency, entry.StartsAt, entry.EndsAt, entry.AttendanceStatus)
		if err := persistEntry(ctx, tx, entry, false); err != nil {
			return fmt.Errorf("commands: cascade series update to entry %s: %w", entry.ID, err)
		}
		u.Add(entry)
	}
	return nil
}

func applyEntryUpsert(ctx context.Context, u *uow.UoW, userID, calendarID, platform string, eu CalendarEntryUpsert) error {
	tx := u.Tx()
	id := domain.CalendarEntryID(platform, eu.PlatformID)

	row, err := tx.CalendarEntry.Get(ctx, id)
	var entry *domain.CalendarEntry
	isNew := false
	switch {
	case ent.IsNotFound(err):
		entry = domain.NewCalendarEntry(userID, calendarID, platform, eu.PlatformID)
		isNew = true
	case err != nil:
		return fmt.Errorf("commands: load entry: %w", err)
	default:
		entry = entryFromEnt(row)
		if !entry.Differs(eu.Name, eu.EventCategory, eu.Frequency, eu.StartsAt, eu.EndsAt, eu.AttendanceStatus) {
			return nil
		}
	}

	if eu.SeriesPlatformID != nil {
		seriesID := domain.CalendarEntrySeriesID(platform, *eu.SeriesPlatformID)
		entry.SeriesID = &seriesID
	}
	entry.Apply(eu.Name, eu.EventCategory, eu.Frequency, eu.StartsAt, eu.EndsAt, eu.AttendanceStatus)
	if err := persistEntry(ctx, tx, entry, isNew); err != nil {
		return err
	}
	u.Add(entry)
	if isNew {
		entry.MarkPersisted()
	}
	return nil
}

func applyEntryDelete(ctx context.Context, u *uow.UoW, userID, platform, platformID string, now time.Time) error {
	tx := u.Tx()
	id := domain.CalendarEntryID(platform, platformID)
	row, err := tx.CalendarEntry.Get(ctx, id)
	if ent.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("commands: load entry for delete: %w", err)
	}
	entry := entryFromEnt(row)
	entry.MarkDeleted()
	if _, err := tx.CalendarEntry.UpdateOneID(entry.ID).SetDeleted(true).Save(ctx); err != nil {
		return fmt.Errorf("commands: persist entry delete: %w", err)
	}
	u.Add(entry)

	if entry.SeriesID == nil {
		return nil
	}
	remaining, err := tx.CalendarEntry.Query().
		Where(calendarentry.SeriesID(*entry.SeriesID), calendarentry.Deleted(false), calendarentry.StartsAtGT(now)).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("commands: count remaining series entries: %w", err)
	}
	if remaining == 0 {
		seriesRow, err := tx.CalendarEntrySeries.Get(ctx, *entry.SeriesID)
		if err != nil {
			if ent.IsNotFound(err) {
				return nil
			}
			return fmt.Errorf("commands: load series to close: %w", err)
		}
		series := seriesFromEnt(seriesRow)
		series.End(now)
		if err := persistSeries(ctx, tx, series, false); err != nil {
			return err
		}
		u.Add(series)
	}
	return nil
}

func applySeriesDelete(ctx context.Context, u *uow.UoW, userID, platform, seriesPlatformID string, now time.Time) error {
	tx := u.Tx()
	seriesID := domain.CalendarEntrySeriesID(platform, seriesPlatformID)

	entries, err := tx.CalendarEntry.Query().
		Where(calendarentry.SeriesID(seriesID), calendarentry.Deleted(false), calendarentry.StartsAtGT(now)).
		All(ctx)
	if err != nil {
		return fmt.Errorf("commands: load series entries for delete: %w", err)
	}
	for _, er := range entries {
		entry := entryFromEnt(er)
		entry.MarkDeleted()
		if _, err := tx.CalendarEntry.UpdateOneID(entry.ID).SetDeleted(true).Save(ctx); err != nil {
			return fmt.Errorf("commands: persist cascaded entry delete: %w", err)
		}
		u.Add(entry)
	}

	seriesRow, err := tx.CalendarEntrySeries.Get(ctx, seriesID)
	if ent.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("commands: load series for delete: %w", err)
	}
	series := seriesFromEnt(seriesRow)
	series.End(now)
	if err := persistSeries(ctx, tx, series, false); err != nil {
		return err
	}
	u.Add(series)
	return nil
}

func seriesFromEnt(row *ent.CalendarEntrySeries) *domain.CalendarEntrySeries {
	var recurrence *domain.RecurrenceSchedule
	if row.Recurrence != nil {
		recurrence = &domain.RecurrenceSchedule{Frequency: row.Recurrence.Frequency, Weekdays: row.Recurrence.Weekdays, DayNumber: row.Recurrence.DayNumber}
	}
	return &domain.CalendarEntrySeries{
		ID:               row.ID,
		UserID:           row.UserID,
		CalendarID:       row.CalendarID,
		Platform:         row.Platform,
		SeriesPlatformID: row.SeriesPlatformID,
		Name:             row.Name,
		Frequency:        domain.TaskFrequency(row.Frequency),
		EventCategory:    row.EventCategory,
		Recurrence:       recurrence,
		StartsAt:         row.StartsAt,
		EndsAt:           row.EndsAt,
	}
}

func persistSeries(ctx context.Context, tx *ent.Tx, s *domain.CalendarEntrySeries, create bool) error {
	var recurrence *schema.RecurrenceSchedule
	if s.Recurrence != nil {
		recurrence = &schema.RecurrenceSchedule{Frequency: s.Recurrence.Frequency, Weekdays: s.Recurrence.Weekdays, DayNumber: s.Recurrence.DayNumber}
	}
	if create {
		_, err := tx.CalendarEntrySeries.Create().
			SetID(s.ID).
			SetUserID(s.UserID).
			SetCalendarID(s.CalendarID).
			SetPlatform(s.Platform).
			SetSeriesPlatformID(s.SeriesPlatformID).
			SetName(s.Name).
			SetFrequency(string(s.Frequency)).
			SetEventCategory(s.EventCategory).
			SetNillableRecurrence(recurrence).
			SetStartsAt(s.StartsAt).
			SetNillableEndsAt(s.EndsAt).
			Save(ctx)
		return err
	}
	upd := tx.CalendarEntrySeries.UpdateOneID(s.ID).
		SetName(s.Name).
		SetFrequency(string(s.Frequency)).
		SetEventCategory(s.EventCategory).
		SetStartsAt(s.StartsAt)
	if recurrence != nil {
		upd = upd.SetRecurrence(recurrence)
	}
	if s.EndsAt != nil {
		upd = upd.SetEndsAt(*s.EndsAt)
	}
	_, err := upd.Save(ctx)
	return err
}

func entryFromEnt(row *ent.CalendarEntry) *domain.CalendarEntry {
	return &domain.CalendarEntry{
		ID:               row.ID,
		UserID:           row.UserID,
		CalendarID:       row.CalendarID,
		Platform:         row.Platform,
		PlatformID:       row.PlatformID,
		SeriesID:         row.SeriesID,
		Name:             row.Name,
		EventCategory:    row.EventCategory,
		Frequency:        domain.TaskFrequency(row.Frequency),
		StartsAt:         row.StartsAt,
		EndsAt:           row.EndsAt,
		AttendanceStatus: domain.AttendanceStatus(row.AttendanceStatus),
		Deleted:          row.Deleted,
	}
}

func persistEntry(ctx context.Context, tx *ent.Tx, e *domain.CalendarEntry, create bool) error {
	if create {
		_, err := tx.CalendarEntry.Create().
			SetID(e.ID).
			SetUserID(e.UserID).
			SetCalendarID(e.CalendarID).
			SetPlatform(e.Platform).
			SetPlatformID(e.PlatformID).
			SetNillableSeriesID(e.SeriesID).
			SetName(e.Name).
			SetEventCategory(e.EventCategory).
			SetFrequency(string(e.Frequency)).
			SetStartsAt(e.StartsAt).
			SetEndsAt(e.EndsAt).
			SetAttendanceStatus(string(e.AttendanceStatus)).
			SetDeleted(e.Deleted).
			Save(ctx)
		return err
	}
	upd := tx.CalendarEntry.UpdateOneID(e.ID).
		SetName(e.Name).
		SetEventCategory(e.EventCategory).
		SetFrequency(string(e.Frequency)).
		SetStartsAt(e.StartsAt).
		SetEndsAt(e.EndsAt).
		SetAttendanceStatus(string(e.AttendanceStatus)).
		SetDeleted(e.Deleted)
	if e.SeriesID != nil {
		upd = upd.SetSeriesID(*e.SeriesID)
	}
	_, err := upd.Save(ctx)
	return err
}
