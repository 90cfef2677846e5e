package llmusecase

import (
	"context"
	"fmt"

	"github.com/dayforge/dayforge/internal/commands"
)

// Decision is the parsed, typed outcome of a decide_notification tool call.
type Decision struct {
	ShouldNotify bool
	Message      string
	Priority     string // low|normal|high
	Reason       string
}

// DecideNotificationTool builds the single-tool roster shared by
// SmartNotification (§4.5.3) and KioskNotification (§4.5.6): the LLM either
// declines to notify or proposes a message/priority/reason, captured into
// out for the caller to act on after Run returns.
func DecideNotificationTool(out *Decision) ToolCallback {
	return ToolCallback{
		Name:        "decide_notification",
		Description: "Decide whether the user should be notified right now, and with what message.",
		Params: []commands.ToolParam{
			{Name: "should_notify", Type: "bool", Doc: "Whether to send a notification now."},
			{Name: "message", Type: "string", Doc: "The notification body, if should_notify is true."},
			{Name: "priority", Type: "enum", Doc: "One of low, normal, high."},
			{Name: "reason", Type: "string", Doc: "Why this decision was made."},
		},
		Fn: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			should, _ := args["should_notify"].(bool)
			msg, _ := args["message"].(string)
			priority, _ := args["priority"].(string)
			reason, _ := args["reason"].(string)
			if priority == "" {
				priority = "normal"
			}
			*out = Decision{ShouldNotify: should, Message: msg, Priority: priority, Reason: reason}
			return *out, nil
		},
	}
}

// OverviewTool builds the render_overview tool MorningOverview (§4.5.4)
// uses to collect the assembled overview message.
func OverviewTool(out *string) ToolCallback {
	return ToolCallback{
		Name:        "render_overview",
		Description: "Submit the rendered morning overview message.",
		Params: []commands.ToolParam{
			{Name: "message", Type: "string", Doc: "The full overview text to send to the user."},
		},
		Fn: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			msg, ok := args["message"].(string)
			if !ok {
				return nil, fmt.Errorf("render_overview: missing message argument")
			}
			*out = msg
			return msg, nil
		},
	}
}

// CreateTaskTool builds the create_task tool used by brain-dump triage
// (§4.5's BrainDumpItem worker): on invocation it calls create, the
// caller-supplied closure bound to the open UoW, and reports the new
// task's id back to the LLM.
func CreateTaskTool(create func(ctx context.Context, name, category, taskType, scheduledDate string) (string, error)) ToolCallback {
	return ToolCallback{
		Name:        "create_task",
		Description: "Create a scheduled task extracted from the brain dump text.",
		Params: []commands.ToolParam{
			{Name: "name", Type: "string", Doc: "Short task name."},
			{Name: "category", Type: "enum", Doc: "AVOIDANT, FORGETTABLE, URGENT, or NORMAL."},
			{Name: "type", Type: "enum", Doc: "ADHOC or ROUTINE."},
			{Name: "scheduled_date", Type: "string", Doc: "YYYY-MM-DD date the task belongs to."},
		},
		Fn: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			name, _ := args["name"].(string)
			category, _ := args["category"].(string)
			taskType, _ := args["type"].(string)
			date, _ := args["scheduled_date"].(string)
			if name == "" || date == "" {
				return nil, fmt.Errorf("create_task: name and scheduled_date are required")
			}
			id, err := create(ctx, name, category, taskType, date)
			if err != nil {
				return nil, err
			}
			return map[string]string{"task_id": id}, nil
		},
	}
}

// NoActionTool is the inert alternative to CreateTaskTool — the LLM
// explicitly decided the brain dump text required no task.
func NoActionTool(out *bool) ToolCallback {
	return ToolCallback{
		Name:        "no_action",
		Description: "Declare that the brain dump text requires no task or reminder.",
		Fn: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			*out = true
			return nil, nil
		},
	}
}

// ReplyTool builds the reply tool inbound-SMS triage uses to send a
// response back over the originating channel; send is the caller-supplied
// closure that actually delivers the text.
func ReplyTool(send func(ctx context.Context, message string) error) ToolCallback {
	return ToolCallback{
		Name:        "reply",
		Description: "Reply to the user over the channel the inbound message arrived on.",
		Params: []commands.ToolParam{
			{Name: "message", Type: "string", Doc: "The reply text; keep it concise and actionable."},
		},
		Fn: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			message, _ := args["message"].(string)
			if message == "" {
				return nil, nil
			}
			return nil, send(ctx, message)
		},
	}
}

// UpdateTaskTool builds the update_task tool inbound-SMS triage uses when
// the message implies a status change on an already-scheduled task (e.g.
// "done with the dentist" or "skip my run today").
func UpdateTaskTool(update func(ctx context.Context, taskID, action string) error) ToolCallback {
	return ToolCallback{
		Name:        "update_task",
		Description: "Record an action against an existing task referenced by id.",
		Params: []commands.ToolParam{
			{Name: "task_id", Type: "string", Doc: "An id shown in the supplied context; never invent one."},
			{Name: "action", Type: "enum", Doc: "complete or punt."},
		},
		Fn: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			taskID, _ := args["task_id"].(string)
			action, _ := args["action"].(string)
			if taskID == "" || action == "" {
				return nil, fmt.Errorf("update_task: task_id and action are required")
			}
			return nil, update(ctx, taskID, action)
		},
	}
}
