// Package shell describes the role-scoped navigation chrome: which links each
// role sees, where it lands after login and where logout sends it.
package shell

import (
	"fmt"

	"storerating/internal/models"
)

// LoginPath is the route logout redirects to.
const LoginPath = "/login"

// Link is one navigation entry.
type Link struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

// Layout is everything the chrome of a role needs to render.
type Layout struct {
	Role      models.Role `json:"role"`
	Dashboard string      `json:"dashboard"`
	Links     []Link      `json:"links"`
	Logout    string      `json:"logout"`
}

var navigation = map[models.Role][]Link{
	models.RoleAdmin: {
		{Name: "Dashboard", Href: "/admin/dashboard"},
		{Name: "Users", Href: "/admin/users"},
		{Name: "Stores", Href: "/admin/stores"},
		{Name: "Add User", Href: "/admin/add-user"},
		{Name: "Add Store", Href: "/admin/add-store"},
		{Name: "Settings", Href: "/admin/settings"},
	},
	models.RoleStoreOwner: {
		{Name: "Dashboard", Href: "/store/dashboard"},
		{Name: "Ratings", Href: "/store/ratings"},
		{Name: "Profile", Href: "/store/profile"},
		{Name: "Settings", Href: "/store/settings"},
	},
	models.RoleUser: {
		{Name: "Stores", Href: "/user/dashboard"},
	},
}

// Navigation returns the links for role, the first one being its dashboard.
func Navigation(role models.Role) ([]Link, error) {
	links, ok := navigation[role]
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", models.ErrInvalidInput, role)
	}
	out := make([]Link, len(links))
	copy(out, links)
	return out, nil
}

// DashboardPath is the landing route for role after login.
func DashboardPath(role models.Role) (string, error) {
	links, err := Navigation(role)
	if err != nil {
		return "", err
	}
	return links[0].Href, nil
}

// Logout returns where the client goes after logging out. There is no server
// side session to tear down.
func Logout() string { return LoginPath }

// LayoutFor assembles the full chrome description for role.
func LayoutFor(role models.Role) (Layout, error) {
	links, err := Navigation(role)
	if err != nil {
		return Layout{}, err
	}
	return Layout{Role: role, Dashboard: links[0].Href, Links: links, Logout: Logout()}, nil
}
