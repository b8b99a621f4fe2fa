package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayload() Payload {
	return Payload{
		"id":   "evt-1",
		"type": "call.finished",
		"call": map[string]any{
			"duration":  float64(125000),
			"startedAt": "2026-01-18T10:30:00Z",
			"endedAt":   "2026-01-18T10:32:05Z",
			"status":    "completed",
			"type":      "outgoing",
			"recorUrl":  "https://records.example.com/call-1.mp3",
			"agreements": map[string]any{
				"client_name":     "Иван Петров Сергеевич",
				"isCommit":        true,
				"agreements":      "Перезвонить завтра в 12:00",
				"client_facts":    "Интересуется тарифом Бизнес",
				"smsText":         "Спасибо за разговор!",
				"agreements_time": "завтра 12:00",
			},
		},
		"contact": map[string]any{
			"phone": "+7 999 666 22 11",
			"tags":  []any{"vip", "повторный"},
			"dadataPhoneInfo": map[string]any{
				"region":   "Москва",
				"provider": "МТС",
				"timezone": "UTC+3",
			},
			"additionalFields": map[string]any{
				"email": "ivan@example.com",
			},
		},
	}
}

func TestApplyLeadTable(t *testing.T) {
	fields := Apply(samplePayload(), LeadTable, EntityLead)

	assert.Equal(t, "Лид от AI менеджера", fields["TITLE"])
	assert.Equal(t, "Иван", fields["NAME"])
	assert.Equal(t, "Петров Сергеевич", fields["LAST_NAME"])
	assert.Equal(t, "WEB", fields["SOURCE_ID"])
	assert.Equal(t, "NEW", fields["STATUS_ID"])

	require.IsType(t, []MultiField{}, fields["PHONE"])
	assert.Equal(t, []MultiField{{Value: "79996662211", ValueType: "WORK"}}, fields["PHONE"])
	assert.Equal(t, []MultiField{{Value: "ivan@example.com", ValueType: "WORK"}}, fields["EMAIL"])

	assert.Equal(t, "2 мин 5 сек", fields["UF_CRM_1768733865788"])
	assert.Equal(t, "18.01.2026, 10:30:00", fields["UF_CRM_1768733894394"])
	assert.Equal(t, "https://records.example.com/call-1.mp3", fields["UF_CRM_1768733965686"])
	assert.Equal(t, "Перезвонить завтра в 12:00", fields["UF_CRM_1768734008070"])
	assert.Equal(t, "Интересуется тарифом Бизнес", fields["UF_CRM_1768734316264"])
	assert.Equal(t, "Спасибо за разговор!", fields["UF_CRM_1768734336116"])

	comments, ok := fields["COMMENTS"].(string)
	require.True(t, ok)
	assert.Contains(t, comments, "Договоренности: Перезвонить завтра в 12:00")

	// recordingFile is absent from the payload and must not appear.
	_, present := fields["UF_CRM_1768733980497"]
	assert.False(t, present)
}

func TestApplyInclusionRule(t *testing.T) {
	payload := Payload{
		"a": "  ",
		"b": map[string]any{"c": []any{}},
	}
	table := Table{
		{"F_BLANK", FromPath("a")},
		{"F_EMPTY_LIST", FromPath("b.c")},
		{"F_NIL_STATIC", Static(nil)},
		{"F_BLANK_STATIC", Static("   ")},
		{"F_NIL_COMPUTED", Computed(func(_ any, _ Payload) any { return nil })},
		{"F_EMPTY_SLICE", Computed(func(_ any, _ Payload) any { return []MultiField{} })},
		{"F_OK", Static("ok")},
		{"F_ZERO", Static(float64(0))},
	}

	fields := Apply(payload, table, EntityDeal)

	assert.Equal(t, map[string]any{
		"F_OK":   "ok",
		"F_ZERO": float64(0),
	}, fields, "zero is a value, blanks and empties are not")
}

func TestApplyTransformPanicIsolated(t *testing.T) {
	table := Table{
		{"F_BAD", Computed(func(_ any, _ Payload) any {
			panic("boom")
		})},
		{"F_GOOD", Static("ok")},
	}

	fields := Apply(Payload{}, table, EntityDeal)

	assert.Equal(t, map[string]any{"F_GOOD": "ok"}, fields)
}

func TestApplyPathTransformReceivesRawAndPayload(t *testing.T) {
	payload := Payload{
		"call": map[string]any{"status": "completed"},
		"id":   "evt-9",
	}
	table := Table{
		{"F_COMBINED", FromPathFunc("call.status", func(raw any, p Payload) any {
			return p.String("id") + ":" + raw.(string)
		})},
	}

	fields := Apply(payload, table, EntityDeal)
	assert.Equal(t, "evt-9:completed", fields["F_COMBINED"])
}

func TestApplyContactTable(t *testing.T) {
	fields := Apply(samplePayload(), ContactTable, EntityContact)

	assert.Equal(t, "Иван", fields["NAME"])
	assert.Equal(t, "Петров Сергеевич", fields["LAST_NAME"])
	assert.Equal(t, []MultiField{{Value: "79996662211", ValueType: "WORK"}}, fields["PHONE"])
}

func TestApplyDealTable(t *testing.T) {
	fields := Apply(samplePayload(), DealTable, EntityDeal)

	assert.Equal(t, "Сделка от AI менеджера: Иван Петров Сергеевич", fields["TITLE"])
	assert.Equal(t, "WEB", fields["SOURCE_ID"])
	assert.Equal(t, "2 мин 5 сек", fields["UF_CRM_1768733865788"])
}

func TestDealTitleFallsBackToPhone(t *testing.T) {
	payload := Payload{
		"contact": map[string]any{"phone": "+79990001122"},
	}
	assert.Equal(t, "Сделка от AI менеджера: +79990001122", dealTitle(nil, payload))
	assert.Equal(t, "Сделка от AI менеджера", dealTitle(nil, Payload{}))
}

func TestNameSplitSingleWord(t *testing.T) {
	payload := Payload{
		"call": map[string]any{
			"agreements": map[string]any{"client_name": "Мария"},
		},
	}

	fields := Apply(payload, ContactTable, EntityContact)
	assert.Equal(t, "Мария", fields["NAME"])
	_, hasLast := fields["LAST_NAME"]
	assert.False(t, hasLast)
}
