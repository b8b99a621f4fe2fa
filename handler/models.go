package handler

import (
	"encoding/json"
)

// WebhookResponse represents the response sent back to webhook callers
type WebhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// SyncAction records one CRM operation performed during a sync pass.
type SyncAction struct {
	Type   string `json:"type"`   // "contact", "deal", "lead"
	Action string `json:"action"` // "create", "update", "comment"
	ID     string `json:"id,omitempty"`
}

// SyncResult aggregates whichever contact/deal/lead operations succeeded for
// a single webhook event. It is never retained past the sync call.
type SyncResult struct {
	ContactID string       `json:"contactId,omitempty"`
	DealID    string       `json:"dealId,omitempty"`
	LeadID    string       `json:"leadId,omitempty"`
	Actions   []SyncAction `json:"actions"`
}

// ContactBrief is the slice of a Bitrix contact the dedup search selects.
type ContactBrief struct {
	ID   string `json:"ID"`
	Name string `json:"NAME"`
}

// bitrixResponse is the Bitrix REST envelope. Result is method-specific:
// a numeric id for *.add, an array for *.list.
type bitrixResponse struct {
	Result           json.RawMessage `json:"result"`
	ErrorCode        string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}
