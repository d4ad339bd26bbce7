package service

import (
	"context"

	"github.com/alexwatever/wept/internal/domain/catalog"
	"github.com/alexwatever/wept/internal/port/inbound"
	"github.com/alexwatever/wept/internal/port/outbound"
)

// NavigationController fetches navigation menus.
type NavigationController struct {
	controller
}

// NewNavigationController creates a NavigationController over exec.
func NewNavigationController(exec outbound.QueryExecutor, opts ...ControllerOption) *NavigationController {
	return &NavigationController{controller: newController(exec, opts)}
}

// GetMenu returns the menu registered under name.
func (c *NavigationController) GetMenu(ctx context.Context, name string) (catalog.Menu, error) {
	var data struct {
		Menu *wireMenu `json:"menu"`
	}
	if err := c.query(ctx, menuQuery, map[string]any{"name": name}, &data, "menu", "name="+name); err != nil {
		return catalog.Menu{}, err
	}
	if data.Menu == nil {
		return catalog.Menu{}, notFound("menu", "menu name="+name)
	}
	return mapMenu(name, *data.Menu), nil
}

// SettingsController fetches site-wide settings.
type SettingsController struct {
	controller
}

// NewSettingsController creates a SettingsController over exec.
func NewSettingsController(exec outbound.QueryExecutor, opts ...ControllerOption) *SettingsController {
	return &SettingsController{controller: newController(exec, opts)}
}

// GetGeneralSettings returns the site title, description, URL and language.
func (c *SettingsController) GetGeneralSettings(ctx context.Context) (catalog.Settings, error) {
	var data struct {
		GeneralSettings *wireSettings `json:"generalSettings"`
	}
	if err := c.query(ctx, generalSettingsQuery, nil, &data, "settings", "general"); err != nil {
		return catalog.Settings{}, err
	}
	if data.GeneralSettings == nil {
		return catalog.Settings{}, notFound("settings", "generalSettings is null")
	}
	return mapSettings(*data.GeneralSettings), nil
}

var (
	_ inbound.MenuReader     = (*NavigationController)(nil)
	_ inbound.SettingsReader = (*SettingsController)(nil)
)
