package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"inara-impact/internal/domain"
	"inara-impact/internal/idhash"
	"inara-impact/internal/storage"
)

var (
	seedVendorNames = []string{
		"EcoPower Solutions",
		"AquaPure Co.",
		"WasteSmart",
		"GreenTransport",
		"MaterialMinds",
		"Circular Innovators",
		"SmartCity Solutions",
		"EcoWaste Recycling",
		"EnerTech",
		"WaterWorks Plus",
	}
	seedRegions        = []string{"United Arab Emirates", "Middle East", "Europe", "Asia", "North America"}
	seedCertifications = []string{"ISO 9001", "ISO 14001", "LEED Gold"}

	// Categories is the fixed set of catalog categories.
	Categories = []string{"Energy", "Water", "Waste", "Transport", "Materials", "Circular", "Smart Cities"}

	// TechnologyTypes is the fixed set of technology types.
	TechnologyTypes = []string{"Hardware", "Software", "Process"}
)

// SeedConfig controls catalog seeding.
type SeedConfig struct {
	Seed         uint64    // PRNG seed; the same seed yields the same catalog
	Technologies int       // number of technologies, default 60
	Now          time.Time // creation time of seeded rows and start of the featured rotation
	FeatureDays  int       // length of the seeded featured rotation, 0 disables it
}

// SeedResult counts the rows written by Seed. Existing rows are skipped.
type SeedResult struct {
	Vendors      int
	Technologies int
	Rotations    int
	Skipped      int
}

// Seed populates vendors and approved technologies with deterministic sample data.
// Re-running with the same config is a no-op.
func Seed(ctx context.Context, vendors storage.VendorStore, techs storage.TechnologyStore, rotations storage.FeaturedRotationStore, cfg SeedConfig) (*SeedResult, error) {
	if cfg.Technologies <= 0 {
		cfg.Technologies = 60
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now().UTC()
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	res := &SeedResult{}

	vendorIDs := make([]string, len(seedVendorNames))
	for i, name := range seedVendorNames {
		v := &domain.Vendor{
			ID:            fmt.Sprintf("vendor-%d", i+1),
			Name:          name,
			Region:        seedRegions[rng.IntN(len(seedRegions))],
			ContactEmail:  fmt.Sprintf("info%d@example.com", i+1),
			Website:       fmt.Sprintf("https://%s.example.com", strings.ToLower(strings.Join(strings.Fields(name), ""))),
			Certification: seedCertifications[rng.IntN(len(seedCertifications))],
			Verified:      i%3 == 0,
			CreatedAt:     cfg.Now,
		}
		vendorIDs[i] = v.ID
		created, err := insertOnce(vendors.Insert(ctx, v))
		if err != nil {
			return nil, fmt.Errorf("seed vendor %s: %w", v.ID, err)
		}
		res.count(created, &res.Vendors)
	}

	var firstTech string
	for i := 1; i <= cfg.Technologies; i++ {
		category := Categories[rng.IntN(len(Categories))]
		prefix := strings.ToLower(strings.Fields(category)[0])

		picked := append([]string(nil), vendorIDs...)
		rng.Shuffle(len(picked), func(a, b int) { picked[a], picked[b] = picked[b], picked[a] })
		picked = picked[:rng.IntN(2)+1]

		t := &domain.Technology{
			ID:           fmt.Sprintf("tech-%s-%d", prefix, i),
			Name:         fmt.Sprintf("%s Innovation %d", category, i),
			Category:     category,
			Type:         TechnologyTypes[rng.IntN(len(TechnologyTypes))],
			ShortDesc:    fmt.Sprintf("A breakthrough %s solution %d.", strings.ToLower(category), i),
			LongDesc:     fmt.Sprintf("Detailed description of %s Innovation %d.", category, i),
			Tags:         strings.ToLower(strings.Join(strings.Fields(category), "")) + ",sustainability,innovation",
			OpexMin:      domain.Float(inRange(rng, 200, 1000)),
			OpexMax:      domain.Float(inRange(rng, 1000, 5000)),
			PaybackYears: domain.Float(math.Round((rng.Float64()*8+2)*10) / 10),
			TechnologyCoefficients: domain.TechnologyCoefficients{
				CapexMin:         domain.Float(inRange(rng, 20000, 80000)),
				CapexMax:         domain.Float(inRange(rng, 80000, 200000)),
				BenefitEnergyPct: domain.Float(inRange(rng, 0.05, 0.5)),
				BenefitWaterPct:  domain.Float(inRange(rng, 0.05, 0.5)),
				BenefitWastePct:  domain.Float(inRange(rng, 0.05, 0.5)),
				CO2Tpy:           domain.Float(inRange(rng, 1, 15)),
			},
			Approved:  true,
			VendorIDs: picked,
			// Later indices are newer so listings come back newest first.
			CreatedAt: cfg.Now.Add(time.Duration(i) * time.Second),
		}
		if firstTech == "" {
			firstTech = t.ID
		}
		created, err := insertOnce(techs.Insert(ctx, t))
		if err != nil {
			return nil, fmt.Errorf("seed technology %s: %w", t.ID, err)
		}
		res.count(created, &res.Technologies)
	}

	if cfg.FeatureDays > 0 && firstTech != "" && rotations != nil {
		start := cfg.Now.Truncate(24 * time.Hour)
		r := &domain.FeaturedRotation{
			ID:           idhash.ComputeSeedID("rotation", 0, firstTech),
			TechnologyID: firstTech,
			StartDate:    start,
			EndDate:      start.Add(time.Duration(cfg.FeatureDays)*24*time.Hour - time.Second),
		}
		created, err := insertOnce(rotations.Insert(ctx, r))
		if err != nil {
			return nil, fmt.Errorf("seed featured rotation: %w", err)
		}
		res.count(created, &res.Rotations)
	}

	return res, nil
}

func (r *SeedResult) count(created bool, n *int) {
	if created {
		*n++
		return
	}
	r.Skipped++
}

func insertOnce(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrDuplicateKey) {
		return false, nil
	}
	return false, err
}

// inRange draws a value in [lo, hi) rounded to two decimals.
func inRange(rng *rand.Rand, lo, hi float64) float64 {
	return math.Round((rng.Float64()*(hi-lo)+lo)*100) / 100
}
