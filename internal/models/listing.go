package models

import (
	"fmt"
	"time"

	"github.com/ylvish/torque/internal/utils"
)

// ListingStatus enumerates the marketplace listing lifecycle.
type ListingStatus string

const (
	ListingDraft    ListingStatus = "DRAFT"
	ListingActive   ListingStatus = "ACTIVE"
	ListingReserved ListingStatus = "RESERVED"
	ListingSold     ListingStatus = "SOLD"
	ListingExpired  ListingStatus = "EXPIRED"
	ListingArchived ListingStatus = "ARCHIVED"
)

// ValidListingStatus reports whether s is a defined listing status.
func ValidListingStatus(s ListingStatus) bool {
	switch s {
	case ListingDraft, ListingActive, ListingReserved, ListingSold, ListingExpired, ListingArchived:
		return true
	}
	return false
}

// Listing is a staff-curated, priced, publishable car record. Car and
// condition fields are a snapshot taken from the originating submission, not a
// reference to it: later submission edits never leak into the listing.
type Listing struct {
	Base         `bson:",inline"`
	SubmissionID *utils.SixID  `bson:"submission_id,omitempty" json:"submission_id,omitempty"`
	Status       ListingStatus `bson:"status" json:"status"`

	// Car details
	Make             string       `bson:"make" json:"make"`
	Model            string       `bson:"model" json:"model"`
	Year             int          `bson:"year" json:"year"`
	Variant          string       `bson:"variant,omitempty" json:"variant,omitempty"`
	FuelType         FuelType     `bson:"fuel_type" json:"fuel_type"`
	Transmission     Transmission `bson:"transmission" json:"transmission"`
	Mileage          int          `bson:"mileage" json:"mileage"`
	RegistrationCity string       `bson:"registration_city" json:"registration_city"`
	Owners           int          `bson:"owners" json:"owners"`

	// Pricing: smallest currency unit, always positive.
	Price int64 `bson:"price" json:"price"`

	// Content
	Description       string `bson:"description,omitempty" json:"description,omitempty"`
	WhyWeLikeIt       string `bson:"why_we_like_it,omitempty" json:"why_we_like_it,omitempty"`
	InspectionSummary string `bson:"inspection_summary,omitempty" json:"inspection_summary,omitempty"`

	// Media
	FeaturedImageURL string   `bson:"featured_image_url" json:"featured_image_url"`
	GalleryImages    []string `bson:"gallery_images" json:"gallery_images"`

	// Metrics: eventually-consistent caches, not ledger-grade counts.
	ViewCount int64 `bson:"view_count" json:"view_count"`
	LeadCount int64 `bson:"lead_count" json:"lead_count"`

	// Publishing
	PublishedAt *time.Time   `bson:"published_at,omitempty" json:"published_at,omitempty"`
	PublishedBy *utils.SixID `bson:"published_by,omitempty" json:"published_by,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Title renders the display name used in notifications and page headings.
func (l *Listing) Title() string {
	return fmt.Sprintf("%d %s %s", l.Year, l.Make, l.Model)
}

// ListingSummary is the slim shape joined onto leads for dashboard display.
type ListingSummary struct {
	ID               utils.SixID `bson:"_id" json:"id"`
	Make             string      `bson:"make" json:"make"`
	Model            string      `bson:"model" json:"model"`
	Year             int         `bson:"year" json:"year"`
	Price            int64       `bson:"price" json:"price"`
	FeaturedImageURL string      `bson:"featured_image_url" json:"featured_image_url"`
}

// ListingFilters narrows public browse/search queries.
type ListingFilters struct {
	Make         string
	Model        string
	City         string
	FuelType     FuelType
	Transmission Transmission
	YearMin      int
	YearMax      int
	PriceMin     int64
	PriceMax     int64
	MileageMax   int
}

// Sort options accepted by the browse page.
const (
	SortPriceLow   = "price_low"
	SortPriceHigh  = "price_high"
	SortYearNew    = "year_new"
	SortYearOld    = "year_old"
	SortMileageLow = "mileage_low"
)
