package registry

import (
	"errors"
	"log"
	"sync"

	"ecoscope/internal/models"
	"ecoscope/internal/runners"
)

// ErrNoRegions is returned when the registry has no profiles to resolve
// against.
var ErrNoRegions = errors.New("no region profiles registered")

// Registry holds the closed set of region profiles and the lazily loaded
// model artifacts. Constructed once at startup and passed by handle to the
// request path; shared read-only apart from the load cache.
type Registry struct {
	mu       sync.Mutex
	profiles []*models.RegionProfile

	climate    map[string]*runners.TreeEnsemble
	geographic map[string]*runners.SequenceModel
}

func New(profiles ...*models.RegionProfile) *Registry {
	return &Registry{
		profiles:   profiles,
		climate:    make(map[string]*runners.TreeEnsemble),
		geographic: make(map[string]*runners.SequenceModel),
	}
}

func (r *Registry) Profiles() []*models.RegionProfile {
	return r.profiles
}

// Resolve returns the nearest profile by Euclidean distance over degrees.
// Ties keep the earlier-registered profile (strict less-than during scan).
func (r *Registry) Resolve(lat, lon float64) (*models.RegionProfile, error) {
	if len(r.profiles) == 0 {
		return nil, ErrNoRegions
	}
	best := r.profiles[0]
	bestDist := squaredDegreeDistance(lat, lon, best.Latitude, best.Longitude)
	for _, p := range r.profiles[1:] {
		if d := squaredDegreeDistance(lat, lon, p.Latitude, p.Longitude); d < bestDist {
			best = p
			bestDist = d
		}
	}
	return best, nil
}

func squaredDegreeDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := lat1 - lat2
	dLon := lon1 - lon2
	return dLat*dLat + dLon*dLon
}

// ClimateModel returns the region's tree ensemble, loading it on first use.
// The mutex guarantees a single loader per artifact; a failed load is not
// cached, so the next demand retries.
func (r *Registry) ClimateModel(region *models.RegionProfile) (*runners.TreeEnsemble, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.climate[region.Name]; ok {
		return m, nil
	}
	m, err := runners.LoadTreeEnsemble(region.ClimateArtifact)
	if err != nil {
		log.Printf("climate model load failed for %s: %v", region.Name, err)
		return nil, err
	}
	r.climate[region.Name] = m
	log.Printf("climate model %s loaded for %s", m.ID, region.Name)
	return m, nil
}

// GeographicModel returns the region's sequence model, loading it on first
// use with the same once-per-artifact guarantee.
func (r *Registry) GeographicModel(region *models.RegionProfile) (*runners.SequenceModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.geographic[region.Name]; ok {
		return m, nil
	}
	m, err := runners.LoadSequenceModel(region.GeographicArtifact)
	if err != nil {
		log.Printf("geographic model load failed for %s: %v", region.Name, err)
		return nil, err
	}
	r.geographic[region.Name] = m
	log.Printf("geographic model %s loaded for %s", m.ID, region.Name)
	return m, nil
}
