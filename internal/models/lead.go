package models

import (
	"time"

	"github.com/ylvish/torque/internal/utils"
)

// LeadStatus enumerates the buyer-lead triage states. Any state may move
// directly to LOST; staff may correct mistakes, so no state is terminal at the
// data layer.
type LeadStatus string

const (
	LeadNew         LeadStatus = "NEW"
	LeadContacted   LeadStatus = "CONTACTED"
	LeadQualified   LeadStatus = "QUALIFIED"
	LeadNegotiating LeadStatus = "NEGOTIATING"
	LeadConverted   LeadStatus = "CONVERTED"
	LeadLost        LeadStatus = "LOST"
)

// ValidLeadStatus reports whether s is a defined lead status.
func ValidLeadStatus(s LeadStatus) bool {
	switch s {
	case LeadNew, LeadContacted, LeadQualified, LeadNegotiating, LeadConverted, LeadLost:
		return true
	}
	return false
}

// LeadInterest is fixed at creation.
type LeadInterest string

const (
	InterestTestDrive   LeadInterest = "TEST_DRIVE"
	InterestPriceInfo   LeadInterest = "PRICE_INFO"
	InterestFinanceInfo LeadInterest = "FINANCE_INFO"
	InterestGeneral     LeadInterest = "GENERAL"
)

// ValidLeadInterest reports whether i is a defined interest category.
func ValidLeadInterest(i LeadInterest) bool {
	switch i {
	case InterestTestDrive, InterestPriceInfo, InterestFinanceInfo, InterestGeneral:
		return true
	}
	return false
}

// Lead is a buyer's expressed interest in one listing.
type Lead struct {
	Base      `bson:",inline"`
	ListingID utils.SixID  `bson:"listing_id" json:"listing_id"`
	Status    LeadStatus   `bson:"status" json:"status"`
	Interest  LeadInterest `bson:"interest" json:"interest"`

	// Buyer details
	BuyerName  string `bson:"buyer_name" json:"buyer_name"`
	BuyerEmail string `bson:"buyer_email" json:"buyer_email"`
	BuyerPhone string `bson:"buyer_phone" json:"buyer_phone"`
	Message    string `bson:"message,omitempty" json:"message,omitempty"`

	// Staff
	AssignedTo *utils.SixID `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// LeadWithRefs is a lead joined with its listing summary and assignee profile
// for dashboard display.
type LeadWithRefs struct {
	Lead     `bson:",inline"`
	Listing  *ListingSummary `bson:"listing,omitempty" json:"listing,omitempty"`
	Assignee *ProfileSummary `bson:"assignee,omitempty" json:"assignee,omitempty"`
}
