// Package sources defines the contract shared by fixture providers.
package sources

import (
	"context"
	"time"

	"github.com/moisenya/pronoai/pkg/fixtures"
)

// Role tells the scan how a source's output is used.
type Role string

const (
	// RolePrimary sources supply fixtures with stats and odds.
	RolePrimary Role = "primary"
	// RoleSecondary sources only confirm that a fixture exists.
	RoleSecondary Role = "secondary"
)

// Request selects one slice of a provider's schedule.
type Request struct {
	Sport  fixtures.Sport
	League fixtures.League // primary sources only; secondary sources list a whole sport
	Date   time.Time       // local date in the scan zone
}

// Batch carries whatever a source returned for one request.
type Batch struct {
	Fixtures  []fixtures.Fixture
	Secondary []fixtures.SecondaryFixture
}

// Source is a fixture provider.
type Source interface {
	Name() string
	Role() Role
	FetchFixtures(ctx context.Context, req Request) (Batch, error)
}
