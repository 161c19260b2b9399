// Package profile resolves the caller's identity record and financial-aid
// snapshot. Lookups never fail a turn: a missing user, an unreachable
// database, or a read error all resolve to the documented defaults so the
// dialogue can proceed.
package profile

import "context"

// Profile is the identity record of a registered user.
type Profile struct {
	IC                string
	Name              string
	Phone             string
	Email             string
	State             string
	MonthlyIncome     float64
	EmploymentStatus  string
	Dependents        int
	HouseholdSize     int

	// PreferredLanguage is the raw stored preference code ("ms", "en",
	// "zh", "zh-HK", "ta"), resolved to a display language by the reply
	// package.
	PreferredLanguage string
}

// FinancialAid is a user's aid snapshot across the STR and MyKasih programs.
type FinancialAid struct {
	STREligible        bool
	STRNextPayAmount   float64
	STRNextPayDate     string
	STRRemainingCycles int
	MyKasihEligible    bool
	MyKasihBalance     float64
	MyKasihExpireDate  string
}

// DefaultProfile is the record returned when a user cannot be resolved.
func DefaultProfile(ic string) Profile {
	return Profile{IC: ic, Name: "User", PreferredLanguage: "ms", HouseholdSize: 1}
}

// DefaultAid is the aid snapshot returned when a user's aid record cannot be
// resolved.
func DefaultAid() FinancialAid {
	return FinancialAid{STREligible: true, STRNextPayAmount: 500, MyKasihBalance: 50}
}

// Store resolves profiles and aid snapshots by IC number. Implementations
// return the package defaults instead of an error when the record is missing
// or the backend is unavailable.
type Store interface {
	Profile(ctx context.Context, ic string) Profile
	Aid(ctx context.Context, ic string) FinancialAid
}

// Defaults is a Store that serves the package defaults for every IC. It backs
// deployments that run without a database.
type Defaults struct{}

var _ Store = Defaults{}

// Profile implements Store.
func (Defaults) Profile(_ context.Context, ic string) Profile {
	return DefaultProfile(ic)
}

// Aid implements Store.
func (Defaults) Aid(context.Context, string) FinancialAid {
	return DefaultAid()
}
