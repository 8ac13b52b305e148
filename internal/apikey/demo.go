// Package apikey provides demo key seeding for development environments.
package apikey

import (
	"github.com/sirupsen/logrus"

	"github.com/factvault/factvault/internal/model"
)

// demoSeed describes one demo key.
type demoSeed struct {
	name        string
	userID      string
	permissions []string
	tier        string
}

// demoKeys is the fixed demo set seeded once per process.
var demoKeys = []demoSeed{
	{
		name:        "Demo Read Key",
		userID:      "demo-user",
		permissions: []string{model.PermissionRead},
		tier:        model.TierFree,
	},
	{
		name:        "Demo Full Access Key",
		userID:      "demo-user",
		permissions: []string{model.PermissionRead, model.PermissionWrite, model.PermissionAnalytics},
		tier:        model.TierPremium,
	},
	{
		name:        "Demo Analytics Key",
		userID:      "demo-analyst",
		permissions: []string{model.PermissionRead, model.PermissionAnalytics},
		tier:        model.TierEnterprise,
	},
}

// SeedDemoKeys populates the fixed demo key set exactly once per process
// lifetime. Safe to call on every request.
func (m *Manager) SeedDemoKeys() {
	m.seedOnce.Do(func() {
		for _, seed := range demoKeys {
			if _, err := m.Create(CreateParams{
				Name:        seed.name,
				UserID:      seed.userID,
				Permissions: seed.permissions,
				Tier:        seed.tier,
			}); err != nil {
				m.log.WithFields(logrus.Fields{"name": seed.name}).
					WithError(err).Warn("seeding demo key failed")
			}
		}
	})
}
