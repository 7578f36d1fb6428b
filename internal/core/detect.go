package core

// detect.go classifies a decoded member as one of the entity types.
//
// Rules run in a fixed sequence: every member-name rule before any header
// rule. A contacts file named "people.csv" whose header contains
// "Company Name" is therefore classified as accounts; callers who need a
// different outcome should name their files.

import (
	"strings"

	"github.com/JonMunkholm/crmport/internal/tabular"
)

// detectRule maps a predicate over a member to an entity type.
type detectRule struct {
	name   string
	entity EntityType
	match  func(memberName, headerText string) bool
}

func nameContains(sub string) func(string, string) bool {
	return func(memberName, _ string) bool {
		return strings.Contains(memberName, sub)
	}
}

func headerContains(subs ...string) func(string, string) bool {
	return func(_, headerText string) bool {
		for _, s := range subs {
			if strings.Contains(headerText, s) {
				return true
			}
		}
		return false
	}
}

var detectRules = []detectRule{
	{"name:account", EntityAccounts, nameContains("account")},
	{"name:contact", EntityContacts, nameContains("contact")},
	{"name:communication", EntityCommunications, nameContains("communication")},
	{"name:opportunity", EntityOpportunities, nameContains("opportunit")},

	{"header:company name", EntityAccounts, headerContains("company name")},
	{"header:first+last name", EntityContacts, func(_, h string) bool {
		return strings.Contains(h, "first name") && strings.Contains(h, "last name")
	}},
	{"header:communication date", EntityCommunications, headerContains("communication date", "comm_date")},
	{"header:opportunity name", EntityOpportunities, headerContains("opportunity name", "opp_name")},
}

// detect returns the first rule matching the member, or false when none
// does.
func detect(t *tabular.Table) (detectRule, bool) {
	memberName := strings.ToLower(t.Name)
	headerText := strings.ToLower(strings.Join(t.Headers, " "))

	for _, r := range detectRules {
		if r.match(memberName, headerText) {
			return r, true
		}
	}
	return detectRule{}, false
}
