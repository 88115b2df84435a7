package domain

import "time"

// TechnologyCoefficients are a technology's published benefit and cost claims.
// Benefit fractions are in [0,1]; CO2Tpy is an absolute reduction.
type TechnologyCoefficients struct {
	CapexMin         *float64 `json:"capexMin,omitempty"`         // USD
	CapexMax         *float64 `json:"capexMax,omitempty"`         // USD
	BenefitEnergyPct *float64 `json:"benefitEnergyPct,omitempty"` // fraction of baseline energy eliminated
	BenefitWaterPct  *float64 `json:"benefitWaterPct,omitempty"`  // fraction of baseline water eliminated
	BenefitWastePct  *float64 `json:"benefitWastePct,omitempty"`  // fraction of baseline waste eliminated
	CO2Tpy           *float64 `json:"benefitCo2Tpy,omitempty"`    // tonnes CO2 per year
}

// Technology is a catalog entry submitted by a provider.
// Only approved technologies are visible to consumers and can be simulated.
type Technology struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Type      string   `json:"type,omitempty"` // Hardware | Software | Process
	ShortDesc string   `json:"shortDesc,omitempty"`
	LongDesc  string   `json:"longDesc,omitempty"`
	Tags      string   `json:"tags,omitempty"` // comma separated
	OpexMin   *float64 `json:"opexMin,omitempty"`
	OpexMax   *float64 `json:"opexMax,omitempty"`

	// PaybackYears is the vendor's advertised payback, informational only.
	PaybackYears *float64 `json:"paybackYears,omitempty"`

	TechnologyCoefficients

	Approved    bool      `json:"approved"`
	SubmittedBy string    `json:"submittedBy,omitempty"` // provider user id
	VendorIDs   []string  `json:"vendorIds,omitempty"`
	Vendors     []Vendor  `json:"vendors,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Vendor supplies one or more technologies.
type Vendor struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Region        string    `json:"region,omitempty"`
	ContactEmail  string    `json:"contactEmail,omitempty"`
	Website       string    `json:"website,omitempty"`
	Certification string    `json:"certification,omitempty"`
	Verified      bool      `json:"verified"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TechnologyFilter narrows catalog listings.
type TechnologyFilter struct {
	ApprovedOnly bool
	Category     string // exact match when non-empty
	Query        string // case-insensitive substring of name or tags
}

// FeaturedRotation schedules a technology as featured for [StartDate, EndDate].
type FeaturedRotation struct {
	ID           string    `json:"id"`
	TechnologyID string    `json:"technologyId"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
}

// Covers reports whether t falls inside the rotation window (inclusive).
func (r FeaturedRotation) Covers(t time.Time) bool {
	return !t.Before(r.StartDate) && !t.After(r.EndDate)
}
