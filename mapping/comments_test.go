package mapping

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallSummaryFull(t *testing.T) {
	payload := samplePayload()
	payload["callList"] = map[string]any{"name": "Холодная база январь"}
	call := payload["call"].(map[string]any)
	call["hangupReason"] = "client_hangup"
	agreements := call["agreements"].(map[string]any)
	agreements["lead_destination"] = "Отдел продаж"
	agreements["status"] = "готов к покупке"
	contact := payload["contact"].(map[string]any)
	contact["additionalFields"].(map[string]any)["website"] = "example.com"
	contact["additionalFields"].(map[string]any)["ip"] = "10.0.0.1"

	summary := CallSummary(payload)
	sections := strings.Split(summary, "\n\n")

	want := []string{
		"Договоренности: Перезвонить завтра в 12:00",
		"Факты о клиенте: Интересуется тарифом Бизнес",
		"SMS текст: Спасибо за разговор!",
		"Длительность звонка: 2 мин 5 сек",
		"Звонок начат: 18.01.2026, 10:30:00",
		"Звонок завершен: 18.01.2026, 10:32:05",
		"Время договоренности: завтра 12:00",
		"Направление лида: Отдел продаж",
		"Статус: готов к покупке",
		"Регион: Москва",
		"Оператор: МТС",
		"Часовой пояс: UTC+3",
		"Колл-лист: Холодная база январь",
		"Теги: vip, повторный",
		"\nДополнительная информация:\nСайт: example.com\nIP: 10.0.0.1",
		"Тип звонка: Исходящий",
		"Статус звонка: completed",
		"Причина завершения: client_hangup",
	}
	assert.Equal(t, want, sections, "section ordering and labels are a contract")
}

func TestCallSummarySkipsAbsentSections(t *testing.T) {
	payload := Payload{
		"call": map[string]any{
			"type": "incoming",
			"agreements": map[string]any{
				"agreements": "Отправить КП",
			},
		},
	}

	summary := CallSummary(payload)
	sections := strings.Split(summary, "\n\n")

	require.Len(t, sections, 2)
	assert.Equal(t, "Договоренности: Отправить КП", sections[0])
	assert.Equal(t, "Тип звонка: Входящий", sections[1])
}

func TestCallSummaryEmptyPayload(t *testing.T) {
	assert.Equal(t, "", CallSummary(Payload{}))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   float64
		want string
	}{
		{125000, "2 мин 5 сек"},
		{59999, "0 мин 59 сек"},
		{60000, "1 мин 0 сек"},
		{330000, "5 мин 30 сек"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.ms))
	}
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "18.01.2026, 10:30:00", formatTimestamp("2026-01-18T10:30:00Z"))
	assert.Equal(t, "18.01.2026, 13:30:00", formatTimestamp("2026-01-18T13:30:00+03:00"))
	assert.Equal(t, "", formatTimestamp("not-a-date"))
	assert.Equal(t, "", formatTimestamp(nil))
	assert.Equal(t, "", formatTimestamp(float64(0)))
	assert.NotEqual(t, "", formatTimestamp(float64(1768733894394)))
}
