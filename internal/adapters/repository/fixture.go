package repository

import (
	"context"
	"fmt"

	"github.com/circlemate/matchmaker/internal/domain/model"
)

// FixtureReferenceID is the id of the fixture's reference user.
const FixtureReferenceID = "me"

// Fixture returns the demo directory: one reference user and three
// candidates, in insertion order.
func Fixture() []model.Profile {
	return []model.Profile{
		{
			ID:          FixtureReferenceID,
			Interests:   []string{"Technology", "Coffee", "Reading", "Travel", "Photography"},
			Communities: []string{"Tech Enthusiasts", "Coffee Lovers", "Book Club"},
			Display:     model.Display{Location: "San Francisco, CA"},
		},
		{
			ID:          "1",
			Interests:   []string{"Technology", "Photography", "Travel", "Music", "Art"},
			Communities: []string{"Tech Enthusiasts", "Photography Club"},
			Display:     model.Display{Name: "Sarah Wilson", Location: "San Francisco, CA", Avatar: "/user1.png"},
		},
		{
			ID:          "2",
			Interests:   []string{"Coffee", "Reading", "Technology", "Gaming"},
			Communities: []string{"Coffee Lovers", "Book Club", "Gaming Community"},
			Display:     model.Display{Name: "Mike Chen", Location: "San Jose, CA", Avatar: "/user1.png"},
		},
		{
			ID:          "3",
			Interests:   []string{"Reading", "Travel", "Cooking", "Yoga"},
			Communities: []string{"Book Club", "Travel Enthusiasts"},
			Display:     model.Display{Name: "Emma Rodriguez", Location: "Oakland, CA", Avatar: "/user1.png"},
		},
	}
}

// Seed writes profiles into s in order and returns how many were new.
func Seed(ctx context.Context, s Store, profiles []model.Profile) (int, error) {
	created := 0
	for i := range profiles {
		isNew, err := s.Put(ctx, profiles[i])
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", profiles[i].ID, err)
		}
		if isNew {
			created++
		}
	}
	return created, nil
}
