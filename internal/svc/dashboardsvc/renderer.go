package dashboardsvc

import (
	"context"

	"github.com/nofilahm/salesdash/internal/domain"
	"github.com/nofilahm/salesdash/internal/svc/analyticssvc"
)

// LoginFailedMessage is shown after a rejected login. It does not say which field was wrong.
const LoginFailedMessage = "Invalid username or password"

// Renderer presents the views computed by the Gate.
type Renderer interface {
	// RenderLogin shows the login form, with the outcome of a failed attempt if any.
	RenderLogin(ctx context.Context, view LoginView) error

	// RenderDashboard shows the selected tab of the dashboard.
	RenderDashboard(ctx context.Context, view DashboardView) error

	// RenderUnavailable shows that the dataset could not be loaded.
	RenderUnavailable(ctx context.Context, view UnavailableView) error
}

// LoginView is the login form.
type LoginView struct {
	Fields  []string `json:"fields"`
	Failed  bool     `json:"failed"`
	Message string   `json:"message,omitempty"`
}

// TabLink is one entry of the dashboard navigation.
type TabLink struct {
	Tab    domain.Tab `json:"tab"`
	Title  string     `json:"title"`
	Active bool       `json:"active"`
}

// DashboardView is one tab of the dashboard. Exactly one of Sales, Customer
// and Product is set, matching Tab.
type DashboardView struct {
	Username string     `json:"username"`
	Tab      domain.Tab `json:"tab"`
	Tabs     []TabLink  `json:"tabs"`
	Records  int        `json:"records"`
	Dropped  int        `json:"dropped"`

	Sales    *analyticssvc.SalesTab    `json:"sales,omitempty"`
	Customer *analyticssvc.CustomerTab `json:"customer,omitempty"`
	Product  *analyticssvc.ProductTab  `json:"product,omitempty"`
}

// UnavailableView replaces the dashboard when the dataset cannot be loaded.
type UnavailableView struct {
	Username string     `json:"username"`
	Tab      domain.Tab `json:"tab"`
	Tabs     []TabLink  `json:"tabs"`
	Source   string     `json:"source"`
	Message  string     `json:"message"`
}

func loginFields() []string {
	return []string{"username", "password", "submit"}
}

func tabLinks(current domain.Tab) []TabLink {
	tabs := domain.Tabs()
	links := make([]TabLink, 0, len(tabs))

	for _, tab := range tabs {
		links = append(links, TabLink{Tab: tab, Title: tab.Title(), Active: tab == current})
	}

	return links
}
