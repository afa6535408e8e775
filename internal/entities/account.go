package entities

import (
	"slices"
	"time"
)

// Account is a connected school-service account.
//
// Instance holds the live provider session. It is never serialized and is
// always nil right after process start; the account registry recreates it
// from Authentication through the provider's reload operation.
type Account struct {
	LocalID                string            `json:"local_id" validate:"required,uuid"`
	Service                Service           `json:"service" validate:"required,service"`
	Name                   string            `json:"name,omitempty" validate:"max=200"`
	Authentication         map[string]string `json:"authentication,omitempty"`
	Instance               any               `json:"-"`
	Personalization        Personalization   `json:"personalization"`
	LinkedExternalLocalIDs []string          `json:"linked_external_local_ids,omitempty" validate:"dive,uuid"`
	SchoolYearStart        time.Time         `json:"school_year_start"`
	CreatedAt              time.Time         `json:"created_at"`
}

// Personalization holds user preferences stored with the account.
type Personalization struct {
	// Tabs lists the domains enabled for this account. For providers whose
	// capabilities vary per school it is filled by a probe at creation.
	Tabs       []Domain          `json:"tabs,omitempty"`
	TabsProbed bool              `json:"tabs_probed,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// HasTab reports whether d is among the enabled tabs.
func (p Personalization) HasTab(d Domain) bool {
	return slices.Contains(p.Tabs, d)
}

// Persistable returns a copy safe to write to durable storage.
func (a Account) Persistable() Account {
	out := a
	out.Instance = nil
	out.Authentication = cloneStringMap(a.Authentication)
	out.Personalization.Tabs = slices.Clone(a.Personalization.Tabs)
	out.Personalization.Extra = cloneStringMap(a.Personalization.Extra)
	out.LinkedExternalLocalIDs = slices.Clone(a.LinkedExternalLocalIDs)
	return out
}

// HasSession reports whether the account has a live instance.
func (a Account) HasSession() bool {
	return a.Instance != nil
}

// IsLinked reports whether localID is one of the account's linked accounts.
func (a Account) IsLinked(localID string) bool {
	return slices.Contains(a.LinkedExternalLocalIDs, localID)
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
