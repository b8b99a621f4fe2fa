package mapping

import (
	"log/slog"
	"strings"
)

// EntityType selects which alias table and mapping table apply.
type EntityType string

const (
	EntityDeal    EntityType = "deal"
	EntityContact EntityType = "contact"
	EntityLead    EntityType = "lead"
)

// customFieldPrefix marks Bitrix user-defined field identifiers
// (UF_CRM_1768733865788 and the like).
const customFieldPrefix = "UF_CRM_"

// Alias tables map human-readable names to real Bitrix field IDs.
// The custom-field IDs are portal-specific configuration, not behavior.

var dealAliases = map[string]string{
	"title":       "TITLE",
	"category":    "CATEGORY_ID",
	"stage":       "STAGE_ID",
	"opportunity": "OPPORTUNITY",
	"currency":    "CURRENCY_ID",
	"comments":    "COMMENTS",

	"firstName":       "UF_CRM_6899EA70F16BE",
	"lastName":        "UF_CRM_6899EA7121D5F",
	"phone":           "UF_CRM_6899EA70D1AF5",
	"email":           "UF_CRM_6899EA70B2CCA",
	"city":            "UF_CRM_6899EA70E289B",
	"eventType":       "UF_CRM_1763128557157",
	"daysCombo":       "UF_CRM_1762286484638",
	"amount":          "UF_CRM_1762284392305",
	"motivation":      "UF_CRM_1762285359695",
	"motivatingName":  "UF_CRM_1762284674882",
	"paymentMethod":   "UF_CRM_1762285156705",
	"invoiceStatus":   "UF_CRM_1762603163315",
	"deliveryCity":    "UF_CRM_1762601175795",
	"deliveryAddress": "UF_CRM_1762601333793",
	"startDate":       "UF_CRM_1762601517741",
	"endDate":         "UF_CRM_17626015323671",
}

var contactAliases = map[string]string{
	"name":       "NAME",
	"lastName":   "LAST_NAME",
	"firstName":  "FIRST_NAME",
	"secondName": "SECOND_NAME",
	"phone":      "PHONE",
	"email":      "EMAIL",
	"comments":   "COMMENTS",
	"post":       "POST",
	"address":    "ADDRESS",
}

var leadAliases = map[string]string{
	"title":      "TITLE",
	"name":       "NAME",
	"lastName":   "LAST_NAME",
	"firstName":  "FIRST_NAME",
	"secondName": "SECOND_NAME",
	"phone":      "PHONE",
	"email":      "EMAIL",
	"comments":   "COMMENTS",
	"source":     "SOURCE_ID",
	"status":     "STATUS_ID",
}

func aliasTable(entity EntityType) map[string]string {
	switch entity {
	case EntityContact:
		return contactAliases
	case EntityLead:
		return leadAliases
	default:
		return dealAliases
	}
}

// ResolveAlias translates a human-readable alias into a real Bitrix field ID.
// Strings that already look like real identifiers (UF_CRM_* or all-uppercase
// tokens) pass through unchanged. Unknown names are reported as unresolved;
// the caller drops the field instead of failing the whole mapping.
func ResolveAlias(alias string, entity EntityType) (string, bool) {
	if id, ok := aliasTable(entity)[alias]; ok {
		return id, true
	}
	if strings.HasPrefix(alias, customFieldPrefix) || alias == strings.ToUpper(alias) {
		return alias, true
	}
	slog.Warn("unknown field alias, dropping field",
		slog.String("alias", alias),
		slog.String("entity", string(entity)))
	return "", false
}

// ResolveAll rewrites every key of a field-value map through ResolveAlias,
// silently omitting the keys that did not resolve.
func ResolveAll(fields map[string]any, entity EntityType) map[string]any {
	resolved := make(map[string]any, len(fields))
	for alias, value := range fields {
		if id, ok := ResolveAlias(alias, entity); ok {
			resolved[id] = value
		}
	}
	return resolved
}
