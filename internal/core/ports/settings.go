package ports

import "go.trai.ch/intellitip/internal/core/domain"

// SettingsLoader resolves the configuration for a workspace.
//
//go:generate mockgen -source=settings.go -destination=mocks/mock_settings.go -package=mocks
type SettingsLoader interface {
	// Load returns the host settings merged with the project config override of root.
	// settingsFile overrides the host settings location; empty selects the default.
	Load(root, settingsFile string) (*domain.Settings, error)
}
