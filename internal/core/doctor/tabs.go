package doctor

import (
	"context"
	"fmt"

	"github.com/colonyops/revu/internal/core/tab"
)

// TabsCheck verifies the tab database is readable.
type TabsCheck struct {
	store tab.Store
}

// NewTabsCheck creates a new tab database check.
func NewTabsCheck(store tab.Store) *TabsCheck {
	return &TabsCheck{store: store}
}

func (c *TabsCheck) Name() string {
	return "Tabs"
}

func (c *TabsCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	tabs, err := c.store.List(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "database",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "database",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d open tab(s)", len(tabs)),
	})

	return result
}
