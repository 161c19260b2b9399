// Package mock provides a test double for the profile.Store interface.
package mock

import (
	"context"
	"sync"

	"github.com/wanhafiz/suara/internal/profile"
)

// Store is a mock implementation of profile.Store backed by in-memory maps.
// Unknown ICs resolve to the package defaults, matching the behavior of the
// real store. The zero value is ready to use.
type Store struct {
	mu       sync.Mutex
	profiles map[string]profile.Profile
	aid      map[string]profile.FinancialAid

	// ProfileCalls and AidCalls record the ICs of every lookup in order.
	ProfileCalls []string
	AidCalls     []string
}

var _ profile.Store = (*Store)(nil)

// SetProfile registers p under its IC.
func (s *Store) SetProfile(p profile.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profiles == nil {
		s.profiles = make(map[string]profile.Profile)
	}
	s.profiles[p.IC] = p
}

// SetAid registers aid for ic.
func (s *Store) SetAid(ic string, aid profile.FinancialAid) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.aid == nil {
		s.aid = make(map[string]profile.FinancialAid)
	}
	s.aid[ic] = aid
}

// Profile implements profile.Store.
func (s *Store) Profile(_ context.Context, ic string) profile.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ProfileCalls = append(s.ProfileCalls, ic)
	if p, ok := s.profiles[ic]; ok {
		return p
	}
	return profile.DefaultProfile(ic)
}

// Aid implements profile.Store.
func (s *Store) Aid(_ context.Context, ic string) profile.FinancialAid {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AidCalls = append(s.AidCalls, ic)
	if a, ok := s.aid[ic]; ok {
		return a
	}
	return profile.DefaultAid()
}
