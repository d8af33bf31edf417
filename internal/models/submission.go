package models

import (
	"time"

	"github.com/ylvish/torque/internal/utils"
)

// FuelType enumerates the supported fuel types.
type FuelType string

const (
	FuelPetrol   FuelType = "PETROL"
	FuelDiesel   FuelType = "DIESEL"
	FuelCNG      FuelType = "CNG"
	FuelElectric FuelType = "ELECTRIC"
	FuelHybrid   FuelType = "HYBRID"
)

// ValidFuelType reports whether f is a defined fuel type.
func ValidFuelType(f FuelType) bool {
	switch f {
	case FuelPetrol, FuelDiesel, FuelCNG, FuelElectric, FuelHybrid:
		return true
	}
	return false
}

// Transmission enumerates gearbox types.
type Transmission string

const (
	TransmissionManual    Transmission = "MANUAL"
	TransmissionAutomatic Transmission = "AUTOMATIC"
)

// ValidTransmission reports whether t is a defined transmission.
func ValidTransmission(t Transmission) bool {
	return t == TransmissionManual || t == TransmissionAutomatic
}

// SubmissionStatus enumerates the seller-submission review states.
type SubmissionStatus string

const (
	SubmissionPendingReview   SubmissionStatus = "PENDING_REVIEW"
	SubmissionUnderEvaluation SubmissionStatus = "UNDER_EVALUATION"
	SubmissionInfoRequested   SubmissionStatus = "INFO_REQUESTED"
	SubmissionApproved        SubmissionStatus = "APPROVED"
	SubmissionRejected        SubmissionStatus = "REJECTED"
	SubmissionOnHold          SubmissionStatus = "ON_HOLD"
)

// ValidSubmissionStatus reports whether s is a defined submission status.
func ValidSubmissionStatus(s SubmissionStatus) bool {
	switch s {
	case SubmissionPendingReview, SubmissionUnderEvaluation, SubmissionInfoRequested,
		SubmissionApproved, SubmissionRejected, SubmissionOnHold:
		return true
	}
	return false
}

// submissionTransitions is the review-cycle graph. APPROVED and REJECTED are
// terminal; ON_HOLD and INFO_REQUESTED can return to evaluation.
var submissionTransitions = map[SubmissionStatus][]SubmissionStatus{
	SubmissionPendingReview:   {SubmissionUnderEvaluation},
	SubmissionUnderEvaluation: {SubmissionInfoRequested, SubmissionApproved, SubmissionOnHold, SubmissionRejected},
	SubmissionInfoRequested:   {SubmissionUnderEvaluation},
	SubmissionOnHold:          {SubmissionUnderEvaluation},
	SubmissionApproved:        {},
	SubmissionRejected:        {},
}

// CanTransition reports whether a submission may move from one status to
// another without a force override.
func CanTransition(from, to SubmissionStatus) bool {
	for _, allowed := range submissionTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// StaffNote is an append-only note on a submission.
type StaffNote struct {
	ID        string      `bson:"id" json:"id"`
	Content   string      `bson:"content" json:"content"`
	CreatedBy utils.SixID `bson:"created_by" json:"created_by"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
}

// SellerSubmission is a seller's raw car-sale inquiry pending staff review.
// Never hard-deleted; archival happens through status.
type SellerSubmission struct {
	Base        `bson:",inline"`
	ReferenceID string           `bson:"reference_id" json:"reference_id"`
	UserID      *utils.SixID     `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Status      SubmissionStatus `bson:"status" json:"status"`

	// Seller details
	SellerName           string `bson:"seller_name" json:"seller_name"`
	SellerPhone          string `bson:"seller_phone" json:"seller_phone"`
	SellerEmail          string `bson:"seller_email" json:"seller_email"`
	SellerCity           string `bson:"seller_city" json:"seller_city"`
	PreferredContactTime string `bson:"preferred_contact_time,omitempty" json:"preferred_contact_time,omitempty"`
	WhatsappConsent      bool   `bson:"whatsapp_consent" json:"whatsapp_consent"`

	// Car details
	Make             string       `bson:"make" json:"make"`
	Model            string       `bson:"model" json:"model"`
	Year             int          `bson:"year" json:"year"`
	Variant          string       `bson:"variant,omitempty" json:"variant,omitempty"`
	FuelType         FuelType     `bson:"fuel_type" json:"fuel_type"`
	Transmission     Transmission `bson:"transmission" json:"transmission"`
	Mileage          int          `bson:"mileage" json:"mileage"`
	RegistrationCity string       `bson:"registration_city" json:"registration_city"`

	// Condition
	Owners          int    `bson:"owners" json:"owners"`
	AccidentHistory bool   `bson:"accident_history" json:"accident_history"`
	ServiceHistory  string `bson:"service_history,omitempty" json:"service_history,omitempty"`
	InsuranceStatus string `bson:"insurance_status,omitempty" json:"insurance_status,omitempty"`
	SellingReason   string `bson:"selling_reason,omitempty" json:"selling_reason,omitempty"`

	// Media
	Photos    []string `bson:"photos" json:"photos"`
	Documents []string `bson:"documents" json:"documents"`

	// Staff
	AssignedTo *utils.SixID `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	StaffNotes []StaffNote  `bson:"staff_notes" json:"staff_notes"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
