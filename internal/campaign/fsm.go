// Package campaign defines the broadcast campaign lifecycle. All status
// transitions go through a single table so the handlers never encode
// lifecycle rules themselves.
package campaign

import (
	"fmt"

	"github.com/deficit-app/deficit-admin/internal/models"
)

// Action is an admin operation against a campaign.
type Action string

const (
	// ActionUpdate edits the notification content or targeting.
	ActionUpdate Action = "update"
	// ActionSend hands the campaign to the push backend.
	ActionSend Action = "send"
	// ActionCancel stops a queued or in-flight campaign.
	ActionCancel Action = "cancel"
	// ActionDelete removes the campaign record.
	ActionDelete Action = "delete"
)

// InvalidStateError reports an action applied to a campaign whose status
// does not permit it.
type InvalidStateError struct {
	Action Action
	Status models.CampaignStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("campaign: cannot %s a campaign in status %s", e.Action, e.Status)
}

// transitions maps (status, action) to the status the campaign holds after
// the action succeeds. Absent pairs are rejected. PROCESSING, COMPLETED and
// FAILED are owned by the push backend; the admin surface only cancels.
var transitions = map[models.CampaignStatus]map[Action]models.CampaignStatus{
	models.CampaignDraft: {
		ActionUpdate: models.CampaignDraft,
		ActionSend:   models.CampaignQueued,
		ActionDelete: models.CampaignDraft,
	},
	models.CampaignQueued: {
		ActionUpdate: models.CampaignQueued,
		ActionSend:   models.CampaignQueued,
		ActionCancel: models.CampaignCancelled,
	},
	models.CampaignProcessing: {
		ActionCancel: models.CampaignCancelled,
	},
}

// Transition returns the status a campaign moves to when the action is
// applied, or an InvalidStateError when the lifecycle forbids it.
func Transition(status models.CampaignStatus, action Action) (models.CampaignStatus, error) {
	if next, ok := transitions[status][action]; ok {
		return next, nil
	}
	return status, &InvalidStateError{Action: action, Status: status}
}

// Allowed reports whether the action is valid for the status.
func Allowed(status models.CampaignStatus, action Action) bool {
	_, ok := transitions[status][action]
	return ok
}

// InitialStatus returns the status a newly created campaign starts in.
// Scheduling a campaign at creation time queues it immediately.
func InitialStatus(scheduled bool) models.CampaignStatus {
	if scheduled {
		return models.CampaignQueued
	}
	return models.CampaignDraft
}
