package revu

import (
	"context"

	"github.com/colonyops/revu/internal/core/config"
	"github.com/colonyops/revu/internal/core/doctor"
	"github.com/colonyops/revu/internal/core/tab"
)

// DoctorService runs health checks on the revu setup.
type DoctorService struct {
	store  tab.Store
	viewer doctor.ViewerFunc
	config *config.Config
}

// NewDoctorService creates a new DoctorService.
func NewDoctorService(store tab.Store, viewer doctor.ViewerFunc, cfg *config.Config) *DoctorService {
	return &DoctorService{
		store:  store,
		viewer: viewer,
		config: cfg,
	}
}

// RunChecks executes all doctor checks and returns results.
func (d *DoctorService) RunChecks(ctx context.Context, configPath string) []doctor.Result {
	checks := []doctor.Check{
		doctor.NewConfigCheck(d.config, configPath),
		doctor.NewGitHubCheck(d.config.GitHub.TokenEnv, d.config.Token(), d.viewer),
		doctor.NewTabsCheck(d.store),
	}
	return doctor.RunAll(ctx, checks)
}
