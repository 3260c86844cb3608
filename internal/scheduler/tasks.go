// Package scheduler defines background task types and the asynq client and
// worker that process them.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskTemplateUsage = "outreach.template.usage"

const TaskDailyStatsRecompute = "analytics.daily_stats.recompute"

const TaskFollowupScan = "leads.followup.scan"

type TemplateUsagePayload struct {
	TemplateID     string `json:"templateId"`
	OrganizationID string `json:"organizationId"`
}

type DailyStatsRecomputePayload struct {
	// Date is the stat day in YYYY-MM-DD form, interpreted in the configured
	// reporting time zone.
	Date string `json:"date"`
}

type FollowupScanPayload struct{}

func NewTemplateUsageTask(payload TemplateUsagePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTemplateUsage, data), nil
}

func ParseTemplateUsagePayload(task *asynq.Task) (TemplateUsagePayload, error) {
	var payload TemplateUsagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return TemplateUsagePayload{}, err
	}
	return payload, nil
}

func NewDailyStatsRecomputeTask(payload DailyStatsRecomputePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDailyStatsRecompute, data), nil
}

func ParseDailyStatsRecomputePayload(task *asynq.Task) (DailyStatsRecomputePayload, error) {
	var payload DailyStatsRecomputePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DailyStatsRecomputePayload{}, err
	}
	return payload, nil
}

func NewFollowupScanTask() (*asynq.Task, error) {
	data, err := json.Marshal(FollowupScanPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowupScan, data), nil
}
