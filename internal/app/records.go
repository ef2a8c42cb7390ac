package app

import (
	"fmt"
	"math/rand/v2"

	"listing_seeder/internal/assets"
	"listing_seeder/internal/domain"
)

var ErrNoAgents = &domain.CodedError{Code: "no_agents", Msg: "no agents to assign"}

const (
	minPropertyReviews = 5
	maxPropertyReviews = 7
	minPropertyGallery = 3
	maxPropertyGallery = 8
)

// refs are the ids created by earlier stages, read-only for the property stage.
type refs struct {
	agents    []string
	reviews   []string
	galleries []string
}

type recordFactory struct {
	rng    *rand.Rand
	images assets.Images
}

func (f *recordFactory) pick(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[f.rng.IntN(len(list))]
}

// between returns a uniform integer in [lo, hi].
func (f *recordFactory) between(lo, hi int) int {
	return lo + f.rng.IntN(hi-lo+1)
}

func (f *recordFactory) agent(i int) domain.Agent {
	return domain.Agent{
		Name:   fmt.Sprintf("Agent %d", i),
		Email:  fmt.Sprintf("agent%d@example.com", i),
		Avatar: f.pick(f.images.AgentAvatars),
	}
}

func (f *recordFactory) review(i int) domain.Review {
	return domain.Review{
		Name:   fmt.Sprintf("Reviewer %d", i),
		Avatar: f.pick(f.images.ReviewAvatars),
		Text:   fmt.Sprintf("This is a review by Reviewer %d.", i),
		Rating: f.between(1, 5),
	}
}

func (f *recordFactory) gallery(i int) domain.GalleryImage {
	return domain.GalleryImage{Image: f.images.Gallery[i-1]}
}

func (f *recordFactory) facilities() []string {
	out := make([]string, len(domain.Facilities))
	copy(out, domain.Facilities)
	f.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out[:f.between(1, len(out))]
}

// propertyImage keeps the historical boundary: index i only maps to photos[i]
// while i <= len(photos)-1, so photos[0] is never assigned by position.
func (f *recordFactory) propertyImage(i int) string {
	photos := f.images.PropertyPhotos
	if len(photos)-1 >= i {
		return photos[i]
	}
	return f.pick(photos)
}

func (f *recordFactory) property(i int, r refs) (domain.Property, error) {
	if len(r.agents) == 0 {
		return domain.Property{}, ErrNoAgents
	}
	agent := f.pick(r.agents)

	reviews, err := RandomSubset(f.rng, r.reviews, minPropertyReviews, maxPropertyReviews)
	if err != nil {
		return domain.Property{}, fmt.Errorf("reviews: %w", err)
	}
	gallery, err := RandomSubset(f.rng, r.galleries, minPropertyGallery, maxPropertyGallery)
	if err != nil {
		return domain.Property{}, fmt.Errorf("gallery: %w", err)
	}

	return domain.Property{
		Name:        fmt.Sprintf("Property %d", i),
		Type:        f.pick(domain.PropertyTypes),
		Description: fmt.Sprintf("This is the description for Property %d.", i),
		Address:     fmt.Sprintf("123 Property Street, City %d", i),
		Geolocation: fmt.Sprintf("192.168.1.%d, 192.168.1.%d", i, i),
		Price:       f.between(1000, 9999),
		Area:        f.between(500, 3499),
		Bedrooms:    f.between(1, 5),
		Bathrooms:   f.between(1, 5),
		Rating:      f.between(1, 5),
		Facilities:  f.facilities(),
		Image:       f.propertyImage(i),
		Agent:       agent,
		Reviews:     reviews,
		Gallery:     gallery,
	}, nil
}
