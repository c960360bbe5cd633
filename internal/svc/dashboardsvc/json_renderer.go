package dashboardsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Names of the views in a JSON response.
const (
	ViewLogin       = "login"
	ViewDashboard   = "dashboard"
	ViewUnavailable = "unavailable"
)

// ViewResponse is the JSON document written by JSONRenderer.
type ViewResponse struct {
	View        string           `json:"view"`
	Error       string           `json:"error,omitempty"`
	Login       *LoginView       `json:"login,omitempty"`
	Dashboard   *DashboardView   `json:"dashboard,omitempty"`
	Unavailable *UnavailableView `json:"unavailable,omitempty"`
}

// JSONRenderer implements Renderer by writing one ViewResponse to an HTTP response.
type JSONRenderer struct {
	w      http.ResponseWriter
	status int
	errMsg string
}

var _ Renderer = (*JSONRenderer)(nil)

// NewJSONRenderer creates a JSONRenderer answering with status.
// An unavailable dataset is always answered with 503.
func NewJSONRenderer(w http.ResponseWriter, status int) *JSONRenderer {
	return &JSONRenderer{w: w, status: status}
}

// WithError attaches a message about the rejected request to the response.
func (jr *JSONRenderer) WithError(msg string) *JSONRenderer {
	jr.errMsg = msg

	return jr
}

// RenderLogin implements Renderer.RenderLogin.
func (jr *JSONRenderer) RenderLogin(_ context.Context, view LoginView) error {
	return jr.write(jr.status, ViewResponse{View: ViewLogin, Login: &view})
}

// RenderDashboard implements Renderer.RenderDashboard.
func (jr *JSONRenderer) RenderDashboard(_ context.Context, view DashboardView) error {
	return jr.write(jr.status, ViewResponse{View: ViewDashboard, Dashboard: &view})
}

// RenderUnavailable implements Renderer.RenderUnavailable.
func (jr *JSONRenderer) RenderUnavailable(_ context.Context, view UnavailableView) error {
	return jr.write(http.StatusServiceUnavailable, ViewResponse{View: ViewUnavailable, Unavailable: &view})
}

func (jr *JSONRenderer) write(status int, resp ViewResponse) error {
	resp.Error = jr.errMsg

	jr.w.Header().Set("Content-Type", "application/json")
	jr.w.Header().Set("Cache-Control", "no-store")
	jr.w.WriteHeader(status)

	if err := json.NewEncoder(jr.w).Encode(resp); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}
