package mapping

import (
	"strings"
)

// clientNamePath is where the AI agent reports the client's full name.
const clientNamePath = "call.agreements.client_name"

// LeadTable maps a call webhook onto Bitrix lead fields. Ported field for
// field from the production lead mapping: title and pipeline fields are
// static, the contact block is normalized into Bitrix multi-field arrays,
// and the UF_CRM_* entries carry per-call metadata into portal custom fields.
var LeadTable = Table{
	{"TITLE", Static("Лид от AI менеджера")},
	{"NAME", FromPathFunc(clientNamePath, firstWord)},
	{"LAST_NAME", FromPathFunc(clientNamePath, remainingWords)},
	{"COMMENTS", Computed(callSummaryField)},
	{"SOURCE_ID", Static("WEB")},
	{"STATUS_ID", Static("NEW")},
	{"PHONE", FromPathFunc("contact.phone", phoneField)},
	{"EMAIL", FromPathFunc("contact.additionalFields.email", emailField)},
	{"UF_CRM_1768733865788", FromPathFunc("call.duration", durationField)},
	{"UF_CRM_1768733894394", FromPathFunc("call.startedAt", timestampField)},
	{"UF_CRM_1768733965686", FromPath("call.recorUrl")},
	{"UF_CRM_1768733980497", FromPath("call.recordingFile")},
	{"UF_CRM_1768734008070", FromPath("call.agreements.agreements")},
	{"UF_CRM_1768734045422", FromPath("call.agreements.agreements_time")},
	{"UF_CRM_1768734059241", FromPath("contact.dadataPhoneInfo.region")},
	{"UF_CRM_1768734316264", FromPath("call.agreements.client_facts")},
	{"UF_CRM_1768734336116", FromPath("call.agreements.smsText")},
}

// ContactTable maps the webhook onto the contact used for the find-or-create
// upsert keyed by phone.
var ContactTable = Table{
	{"NAME", FromPathFunc(clientNamePath, firstWord)},
	{"LAST_NAME", FromPathFunc(clientNamePath, remainingWords)},
	{"PHONE", FromPathFunc("contact.phone", phoneField)},
	{"EMAIL", FromPathFunc("contact.additionalFields.email", emailField)},
}

// DealTable maps a committed call onto a deal. It carries the same per-call
// custom fields as the lead table so a deal is self-describing without the
// timeline comment.
var DealTable = Table{
	{"TITLE", Computed(dealTitle)},
	{"COMMENTS", Computed(callSummaryField)},
	{"SOURCE_ID", Static("WEB")},
	{"UF_CRM_1768733865788", FromPathFunc("call.duration", durationField)},
	{"UF_CRM_1768733894394", FromPathFunc("call.startedAt", timestampField)},
	{"UF_CRM_1768733965686", FromPath("call.recorUrl")},
	{"UF_CRM_1768734008070", FromPath("call.agreements.agreements")},
	{"UF_CRM_1768734045422", FromPath("call.agreements.agreements_time")},
	{"UF_CRM_1768734059241", FromPath("contact.dadataPhoneInfo.region")},
	{"UF_CRM_1768734316264", FromPath("call.agreements.client_facts")},
	{"UF_CRM_1768734336116", FromPath("call.agreements.smsText")},
}

func firstWord(raw any, _ Payload) any {
	parts := splitName(raw)
	if len(parts) == 0 {
		return nil
	}
	return parts[0]
}

func remainingWords(raw any, _ Payload) any {
	parts := splitName(raw)
	if len(parts) < 2 {
		return nil
	}
	return strings.Join(parts[1:], " ")
}

func splitName(raw any) []string {
	s, _ := raw.(string)
	return strings.Fields(s)
}

// phoneField strips everything but digits and wraps the number in the
// multi-field array Bitrix expects.
func phoneField(raw any, _ Payload) any {
	s, _ := raw.(string)
	digits := digitsOnly(s)
	if digits == "" {
		return nil
	}
	return []MultiField{{Value: digits, ValueType: ValueTypeWork}}
}

func emailField(raw any, _ Payload) any {
	s, _ := raw.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return []MultiField{{Value: s, ValueType: ValueTypeWork}}
}

func durationField(raw any, _ Payload) any {
	ms, ok := raw.(float64)
	if !ok || ms <= 0 {
		return nil
	}
	return FormatDuration(ms)
}

func timestampField(raw any, _ Payload) any {
	if s := formatTimestamp(raw); s != "" {
		return s
	}
	return nil
}

func callSummaryField(_ any, p Payload) any {
	if summary := CallSummary(p); summary != "" {
		return summary
	}
	return nil
}

func dealTitle(_ any, p Payload) any {
	if name := p.String(clientNamePath); name != "" {
		return "Сделка от AI менеджера: " + name
	}
	if phone := p.String("contact.phone"); phone != "" {
		return "Сделка от AI менеджера: " + phone
	}
	return "Сделка от AI менеджера"
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
