// Package revu wires the review core to its stores, the GitHub client and
// the terminal view.
package revu

import (
	"github.com/colonyops/revu/internal/core/config"
	"github.com/colonyops/revu/internal/core/tab"
	"github.com/colonyops/revu/internal/data/db"
)

// App is the central entry point for all revu operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Tabs   *TabService
	Doctor *DoctorService
	Config *config.Config
	DB     *db.DB
}

// NewApp constructs an App from explicit dependencies.
func NewApp(tabs *TabService, store tab.Store, remote Remote, cfg *config.Config, database *db.DB) *App {
	return &App{
		Tabs:   tabs,
		Doctor: NewDoctorService(store, remote.Viewer, cfg),
		Config: cfg,
		DB:     database,
	}
}
