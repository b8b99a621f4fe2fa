package mapping

import (
	"fmt"
	"strings"
	"time"
)

// commentTimeLayout mirrors the ru-RU date rendering the CRM operators are
// used to seeing in lead comments.
const commentTimeLayout = "02.01.2006, 15:04:05"

// CallSummary builds the composite comment block out of every optional call
// detail present in the payload. Section labels and ordering are a contract:
// operators triage leads and deals by scanning these blocks, so the literal
// text must stay stable.
func CallSummary(p Payload) string {
	var sections []string
	add := func(label, value string) {
		if value != "" {
			sections = append(sections, label+value)
		}
	}

	add("Договоренности: ", p.String("call.agreements.agreements"))
	add("Факты о клиенте: ", p.String("call.agreements.client_facts"))
	add("SMS текст: ", p.String("call.agreements.smsText"))

	if ms, ok := p.Float("call.duration"); ok && ms > 0 {
		add("Длительность звонка: ", FormatDuration(ms))
	}
	add("Звонок начат: ", formatTimestamp(p.Resolve("call.startedAt")))
	add("Звонок завершен: ", formatTimestamp(p.Resolve("call.endedAt")))

	add("Время договоренности: ", p.String("call.agreements.agreements_time"))
	add("Направление лида: ", p.String("call.agreements.lead_destination"))
	add("Статус: ", p.String("call.agreements.status"))

	add("Регион: ", p.String("contact.dadataPhoneInfo.region"))
	add("Оператор: ", p.String("contact.dadataPhoneInfo.provider"))
	add("Часовой пояс: ", p.String("contact.dadataPhoneInfo.timezone"))

	add("Колл-лист: ", p.String("callList.name"))
	add("Теги: ", joinTags(p.Resolve("contact.tags")))

	var extra []string
	if v := p.String("contact.additionalFields.website"); v != "" {
		extra = append(extra, "Сайт: "+v)
	}
	if v := p.String("contact.additionalFields.page"); v != "" {
		extra = append(extra, "Страница: "+v)
	}
	if v := p.String("contact.additionalFields.ip"); v != "" {
		extra = append(extra, "IP: "+v)
	}
	if len(extra) > 0 {
		sections = append(sections, "\nДополнительная информация:\n"+strings.Join(extra, "\n"))
	}

	if callType := p.String("call.type"); callType != "" {
		direction := "Входящий"
		if callType == "outgoing" {
			direction = "Исходящий"
		}
		add("Тип звонка: ", direction)
	}
	add("Статус звонка: ", p.String("call.status"))
	add("Причина завершения: ", p.String("call.hangupReason"))

	return strings.Join(sections, "\n\n")
}

// FormatDuration renders a millisecond duration as "N мин M сек".
func FormatDuration(ms float64) string {
	total := int64(ms)
	minutes := total / 60000
	seconds := (total % 60000) / 1000
	return fmt.Sprintf("%d мин %d сек", minutes, seconds)
}

// formatTimestamp accepts the two shapes the calling platform sends:
// an RFC3339 string or an epoch-milliseconds number. Anything else renders
// as empty and the section is skipped.
func formatTimestamp(v any) string {
	switch t := v.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(t))
		if err != nil {
			return ""
		}
		return parsed.Format(commentTimeLayout)
	case float64:
		if t <= 0 {
			return ""
		}
		return time.UnixMilli(int64(t)).Format(commentTimeLayout)
	}
	return ""
}

// joinTags flattens the contact tag list into "a, b, c".
func joinTags(v any) string {
	items, ok := v.([]any)
	if !ok {
		return ""
	}
	var tags []string
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			tags = append(tags, strings.TrimSpace(s))
		}
	}
	return strings.Join(tags, ", ")
}
