// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the brief-engine pipeline.
// Implements: prd004-subscriptions (Subscription, R1.1-R1.3);
//
//	prd001-trends (Headline, R2.1).
package types

// Subscription is a stored (contact, domain, role) record targeted by the
// weekly scheduler. At creation time at least one of Email/Phone must be
// non-empty; stored records are never updated or deleted, so later stages
// re-check the fields they need instead of trusting the record.
type Subscription struct {
	// Email receives the weekly report. A record without one is skipped
	// at delivery time.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// Phone is an alternate contact. Stored but not used by delivery.
	Phone string `json:"phone,omitempty" yaml:"phone,omitempty"`

	// Domain is the industry or field the report covers (e.g. "Marketing").
	Domain string `json:"domain" yaml:"domain"`

	// Role is the job function the report targets (e.g. "Data Analyst").
	Role string `json:"role" yaml:"role"`
}

// HasContact reports whether the subscription carries at least one contact
// field, the invariant enforced at creation time.
func (s Subscription) HasContact() bool {
	return s.Email != "" || s.Phone != ""
}

// Deliverable reports whether the subscription has everything the weekly
// scheduler needs to produce and send a report.
func (s Subscription) Deliverable() bool {
	return s.Email != "" && s.Domain != "" && s.Role != ""
}
