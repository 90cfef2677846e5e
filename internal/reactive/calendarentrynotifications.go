package reactive

import (
	"context"
	"fmt"
	"time"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/ent/calendarentry"
	"github.com/dayforge/dayforge/ent/pushnotification"
	"github.com/dayforge/dayforge/internal/commands"
	"github.com/dayforge/dayforge/internal/domain"
	"github.com/dayforge/dayforge/internal/uow"
)

const (
	channelPush        = "PUSH"
	channelText        = "TEXT"
	channelKioskAlarm   = "KIOSK_ALARM"
	triggerWindow       = 60 * time.Second
)

// CalendarEntryNotifications runs the §4.5.2 per-user job: for every
// configured reminder rule on today's and tomorrow's calendar entries, fire
// the configured channel exactly once per (entry, minutes_before, channel)
// triple.
func CalendarEntryNotifications(ctx context.Context, factory *uow.Factory, client *ent.Client, smsGateway commands.SMSGateway, pushGateway commands.PushGateway, userID string, now time.Time) error {
	userRow, err := client.User.Get(ctx, userID)
	if err != nil {
		return err
	}
	user := commands.UserFromEnt(userRow)
	if !user.CalendarEntryNotificationSettings.Enabled {
		return nil
	}
	loc, err := time.LoadLocation(user.Timezone)
	if err != nil {
		loc = time.UTC
	}

	todayStart := time.Date(now.In(loc).Year(), now.In(loc).Month(), now.In(loc).Day(), 0, 0, 0, 0, loc)
	windowEnd := todayStart.AddDate(0, 0, 2)

	entries, err := client.CalendarEntry.Query().
		Where(calendarentry.UserID(userID), calendarentry.Deleted(false),
			calendarentry.StartsAtGTE(todayStart), calendarentry.StartsAtLT(windowEnd)).
		All(ctx)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.AttendanceStatus == string(domain.AttendanceNotGoing) {
			continue
		}
		for _, rule := range user.CalendarEntryNotificationSettings.Rules {
			triggerTime := entry.StartsAt.Add(-time.Duration(rule.MinutesBefore) * time.Minute)
			if now.Before(triggerTime) || !now.Before(triggerTime.Add(triggerWindow)) {
				continue
			}
			triggeredBy := fmt.Sprintf("calendar_entry_reminder:%s:%d:%s", entry.ID, rule.MinutesBefore, rule.Channel)

			exists, err := client.PushNotification.Query().
				Where(pushnotification.UserID(userID), pushnotification.TriggeredBy(triggeredBy)).
				Exist(ctx)
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			if err := fireCalendarReminder(ctx, factory, client, smsGateway, pushGateway, userID, user.PhoneNumber, entry, rule.Channel, rule.MinutesBefore, triggeredBy, now, loc); err != nil {
				return err
			}
		}
	}
	return nil
}

func fireCalendarReminder(ctx context.Context, factory *uow.Factory, client *ent.Client, smsGateway commands.SMSGateway, pushGateway commands.PushGateway, userID, phoneNumber string, entry *ent.CalendarEntry, channel string, minutesBefore int, triggeredBy string, now time.Time, loc *time.Location) error {
	content := fmt.Sprintf("Upcoming: %s at %s", entry.Name, entry.StartsAt.In(loc).Format("15:04"))

	switch channel {
	case channelPush:
		u, err := factory.New(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := commands.SendPushNotification(ctx, u, pushGateway, commands.SendPushNotificationInput{
			UserID: userID, TriggeredBy: triggeredBy, Content: content,
		}); err != nil {
			_ = u.Rollback()
			return err
		}
		return u.Commit()

	case channelText:
		if phoneNumber == "" {
			return nil
		}
		u, err := factory.New(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := commands.SendSMS(ctx, u, commands.SendSMSInput{
			UserID: userID, MessageID: triggeredBy, ToNumber: phoneNumber, Body: content, TriggeredBy: triggeredBy,
		}); err != nil {
			_ = u.Rollback()
			return err
		}
		if err := smsGateway.SendMessage(ctx, phoneNumber, content); err != nil {
			_ = u.Rollback()
			return err
		}
		return u.Commit()

	case channelKioskAlarm:
		dayID := domain.DayID(userID, now.In(loc).Format("2006-01-02"))
		dayRow, err := client.Day.Get(ctx, dayID)
		if ent.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		day := commands.DayFromEnt(dayRow)
		alarmID := domain.KioskAlarmID(entry.ID, entry.StartsAt.Format(time.RFC3339), minutesBefore)
		day.EmitSyntheticKioskAlarm(alarmID)

		u, err := factory.New(ctx, userID)
		if err != nil {
			return err
		}
		if err := commands.PersistDay(ctx, u.Tx(), day); err != nil {
			_ = u.Rollback()
			return err
		}
		u.Add(day)
		return u.Commit()
	}
	return nil
}
