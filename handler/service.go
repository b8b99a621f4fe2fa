package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"b24bridge/mapping"
)

// BitrixService talks to the Bitrix24 REST webhook API and runs the sync
// orchestration for incoming call events. It holds no per-request state:
// concurrent syncs share only the read-only config and the HTTP client.
type BitrixService struct {
	config     *Config
	httpClient *http.Client
}

// NewBitrixService creates a new Bitrix service instance
func NewBitrixService(config *Config) *BitrixService {
	return &BitrixService{
		config:     config,
		httpClient: &http.Client{Timeout: config.BitrixTimeout()},
	}
}

// Config exposes the service configuration to the HTTP handlers.
func (s *BitrixService) Config() *Config {
	return s.config
}

// callMethod POSTs JSON params to {base}/{method} and unwraps the Bitrix
// REST envelope. Any transport error, non-2xx status or API-level error code
// is returned as an error for the caller's per-step fault policy.
func (s *BitrixService) callMethod(ctx context.Context, method string, params any) (json.RawMessage, error) {
	url := strings.TrimRight(s.config.BitrixWebhookURL, "/") + "/" + method

	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal %s params: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", method, err)
	}

	var envelope bitrixResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("decode %s response (HTTP %d): %w", method, resp.StatusCode, err)
	}
	if envelope.ErrorCode != "" {
		return nil, fmt.Errorf("%s: bitrix error %s: %s", method, envelope.ErrorCode, envelope.ErrorDescription)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s: HTTP %d", method, resp.StatusCode)
	}
	return envelope.Result, nil
}

// FindContactByPhone searches for an existing contact by exact phone match.
// First match wins; a nil contact with nil error means nothing was found.
func (s *BitrixService) FindContactByPhone(ctx context.Context, phone string) (*ContactBrief, error) {
	params := map[string]any{
		"filter": map[string]any{"PHONE": phone},
		"select": []string{"ID", "NAME"},
	}
	result, err := s.callMethod(ctx, "crm.contact.list", params)
	if err != nil {
		return nil, err
	}

	var contacts []ContactBrief
	if err := json.Unmarshal(result, &contacts); err != nil {
		return nil, fmt.Errorf("decode contact list: %w", err)
	}
	if len(contacts) == 0 {
		return nil, nil
	}
	return &contacts[0], nil
}

// AddContact creates a contact and returns the new id.
func (s *BitrixService) AddContact(ctx context.Context, fields map[string]any) (string, error) {
	return s.addEntity(ctx, "crm.contact.add", fields)
}

// UpdateContact updates an existing contact in place.
func (s *BitrixService) UpdateContact(ctx context.Context, id string, fields map[string]any) error {
	_, err := s.callMethod(ctx, "crm.contact.update", map[string]any{
		"id":     id,
		"fields": fields,
	})
	return err
}

// AddDeal creates a deal and returns the new id.
func (s *BitrixService) AddDeal(ctx context.Context, fields map[string]any) (string, error) {
	return s.addEntity(ctx, "crm.deal.add", fields)
}

// AddLead creates a lead and returns the new id.
func (s *BitrixService) AddLead(ctx context.Context, fields map[string]any) (string, error) {
	return s.addEntity(ctx, "crm.lead.add", fields)
}

// AddTimelineComment posts a comment on a deal's timeline.
func (s *BitrixService) AddTimelineComment(ctx context.Context, dealID, comment string) error {
	_, err := s.callMethod(ctx, "crm.timeline.comment.add", map[string]any{
		"fields": map[string]any{
			"ENTITY_ID":   dealID,
			"ENTITY_TYPE": "deal",
			"COMMENT":     comment,
		},
	})
	return err
}

func (s *BitrixService) addEntity(ctx context.Context, method string, fields map[string]any) (string, error) {
	result, err := s.callMethod(ctx, method, map[string]any{"fields": fields})
	if err != nil {
		return "", err
	}
	id := decodeID(result)
	if id == "" {
		return "", fmt.Errorf("%s: no id in result %s", method, string(result))
	}
	return id, nil
}

// decodeID normalizes the id Bitrix returns from *.add calls, which may be
// a JSON number or a string.
func decodeID(raw json.RawMessage) string {
	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return strconv.FormatInt(int64(asNumber), 10)
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return strings.TrimSpace(asString)
	}
	return ""
}

// Sync runs one full pass for a webhook event: contact find-or-create, then
// a deal (committed calls with agreements) or a lead (agreements without a
// commitment), then a best-effort timeline comment on the deal.
//
// Fault policy per step: a failed contact search degrades to the create
// path; a failed contact upsert is logged and does not block deal or lead
// creation; a failed deal create aborts the sync (the deal is the primary
// business object once the call is committed); a failed lead create or
// timeline comment is logged only.
func (s *BitrixService) Sync(ctx context.Context, payload mapping.Payload) (*SyncResult, error) {
	if !s.config.HasBitrixConfig() {
		return nil, errors.New("BITRIX_WEBHOOK_URL is not configured")
	}

	syncID := payload.String("id")
	if syncID == "" {
		syncID = uuid.New().String()
	}
	logger := slog.With(slog.String("sync_id", syncID))

	result := &SyncResult{}

	if phone := payload.String("contact.phone"); phone != "" {
		s.syncContact(ctx, logger, payload, phone, result)
	}

	isCommit := payload.Bool("call.agreements.isCommit")
	hasAgreements := payload.String("call.agreements.agreements") != "" ||
		payload.String("call.agreements.client_facts") != ""

	switch {
	case isCommit && hasAgreements:
		fields := mapping.Apply(payload, mapping.DealTable, mapping.EntityDeal)
		if result.ContactID != "" {
			fields["CONTACT_ID"] = result.ContactID
		}
		dealID, err := s.AddDeal(ctx, fields)
		if err != nil {
			return result, fmt.Errorf("create deal: %w", err)
		}
		result.DealID = dealID
		result.Actions = append(result.Actions, SyncAction{Type: "deal", Action: "create", ID: dealID})
		logger.Info("deal created", slog.String("deal_id", dealID))

		if summary := mapping.CallSummary(payload); summary != "" {
			if err := s.AddTimelineComment(ctx, dealID, summary); err != nil {
				logger.Warn("timeline comment failed",
					slog.String("deal_id", dealID),
					slog.String("error", err.Error()))
			} else {
				result.Actions = append(result.Actions, SyncAction{Type: "deal", Action: "comment", ID: dealID})
			}
		}

	case hasAgreements:
		fields := mapping.Apply(payload, mapping.LeadTable, mapping.EntityLead)
		if result.ContactID != "" {
			fields["CONTACT_ID"] = result.ContactID
		}
		leadID, err := s.AddLead(ctx, fields)
		if err != nil {
			logger.Warn("lead create failed", slog.String("error", err.Error()))
			break
		}
		result.LeadID = leadID
		result.Actions = append(result.Actions, SyncAction{Type: "lead", Action: "create", ID: leadID})
		logger.Info("lead created", slog.String("lead_id", leadID))

	default:
		logger.Info("no agreements in payload, contact upsert only")
	}

	return result, nil
}

// syncContact performs the find-or-create step. A search failure is treated
// as "no existing contact"; an upsert failure is logged but the found
// contact id is still kept for deal/lead linking.
func (s *BitrixService) syncContact(ctx context.Context, logger *slog.Logger, payload mapping.Payload, phone string, result *SyncResult) {
	existing, err := s.FindContactByPhone(ctx, phone)
	if err != nil {
		logger.Warn("contact search failed, falling back to create",
			slog.String("error", err.Error()))
		existing = nil
	}

	fields := mapping.Apply(payload, mapping.ContactTable, mapping.EntityContact)

	if existing != nil {
		result.ContactID = existing.ID
		if err := s.UpdateContact(ctx, existing.ID, fields); err != nil {
			logger.Warn("contact update failed",
				slog.String("contact_id", existing.ID),
				slog.String("error", err.Error()))
			return
		}
		result.Actions = append(result.Actions, SyncAction{Type: "contact", Action: "update", ID: existing.ID})
		logger.Info("contact updated", slog.String("contact_id", existing.ID))
		return
	}

	id, err := s.AddContact(ctx, fields)
	if err != nil {
		logger.Warn("contact create failed", slog.String("error", err.Error()))
		return
	}
	result.ContactID = id
	result.Actions = append(result.Actions, SyncAction{Type: "contact", Action: "create", ID: id})
	logger.Info("contact created", slog.String("contact_id", id))
}
