package client

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// FlyerRow is a flyer as shown in a dashboard table.
type FlyerRow struct {
	Flyer
	CompanyName string
}

// Dashboard is the role-specific main view.
type Dashboard interface {
	Route() Route
	// Flyers returns the rows the view shows.
	Flyers(ctx context.Context) ([]FlyerRow, error)
	Delete(ctx context.Context, id uint) error
}

// NewDashboard returns the dashboard for the session's role, or
// ErrRedirectToLogin.
func NewDashboard(c *Client) (Dashboard, error) {
	switch RouteFor(c.Session().Identity()) {
	case RouteAdmin:
		return &AdminDashboard{client: c}, nil
	case RouteCompany:
		return &CompanyDashboard{client: c}, nil
	default:
		return nil, ErrRedirectToLogin
	}
}

// AdminDashboard shows every company's flyers and allows uploads.
type AdminDashboard struct {
	client *Client
	// CompanyFilter restricts the table to one company when set.
	CompanyFilter *uint
}

var _ Dashboard = (*AdminDashboard)(nil)

// NewAdminDashboard creates the admin view.
func NewAdminDashboard(c *Client) *AdminDashboard {
	return &AdminDashboard{client: c}
}

func (d *AdminDashboard) Route() Route {
	return RouteAdmin
}

// Companies lists the companies an upload can target.
func (d *AdminDashboard) Companies(ctx context.Context) ([]Company, error) {
	if _, err := Require(d.client.Session(), RouteAdmin); err != nil {
		return nil, err
	}
	return d.client.Companies(ctx)
}

// Flyers fetches each company's flyers concurrently. Rows are grouped by
// company in directory order; any failed fetch fails the whole view.
func (d *AdminDashboard) Flyers(ctx context.Context) ([]FlyerRow, error) {
	companies, err := d.Companies(ctx)
	if err != nil {
		return nil, err
	}
	if d.CompanyFilter != nil {
		filtered := companies[:0:0]
		for _, company := range companies {
			if company.ID == *d.CompanyFilter {
				filtered = append(filtered, company)
			}
		}
		companies = filtered
	}

	results := make([][]Flyer, len(companies))
	g, gctx := errgroup.WithContext(ctx)
	for i, company := range companies {
		g.Go(func() error {
			flyers, err := d.client.Flyers(gctx, company.ID, nil)
			if err != nil {
				return fmt.Errorf("flyers of %s: %w", company.Name, err)
			}
			results[i] = flyers
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := []FlyerRow{}
	for i, company := range companies {
		for _, flyer := range results[i] {
			rows = append(rows, FlyerRow{Flyer: flyer, CompanyName: company.Name})
		}
	}
	return rows, nil
}

// Upload sends a new flyer for a company.
func (d *AdminDashboard) Upload(ctx context.Context, title string, companyID uint, filename string, content io.Reader) (*Flyer, error) {
	if _, err := Require(d.client.Session(), RouteAdmin); err != nil {
		return nil, err
	}
	return d.client.Upload(ctx, title, companyID, filename, content)
}

func (d *AdminDashboard) Delete(ctx context.Context, id uint) error {
	if _, err := Require(d.client.Session(), RouteAdmin); err != nil {
		return err
	}
	return d.client.Delete(ctx, id)
}

// CompanyDashboard shows the flyers of the user's own company.
type CompanyDashboard struct {
	client *Client
	// Month restricts the list to one calendar month when set.
	Month *Month
}

var _ Dashboard = (*CompanyDashboard)(nil)

// NewCompanyDashboard creates the company view.
func NewCompanyDashboard(c *Client) *CompanyDashboard {
	return &CompanyDashboard{client: c}
}

func (d *CompanyDashboard) Route() Route {
	return RouteCompany
}

func (d *CompanyDashboard) Flyers(ctx context.Context) ([]FlyerRow, error) {
	state, err := Require(d.client.Session(), RouteCompany)
	if err != nil {
		return nil, err
	}
	flyers, err := d.client.Flyers(ctx, *state.Identity.CompanyID, d.Month)
	if err != nil {
		return nil, err
	}
	name := companyName(&state.Identity)
	rows := make([]FlyerRow, 0, len(flyers))
	for _, flyer := range flyers {
		rows = append(rows, FlyerRow{Flyer: flyer, CompanyName: name})
	}
	return rows, nil
}

// Download fetches a flyer image.
func (d *CompanyDashboard) Download(ctx context.Context, id uint) (*File, error) {
	if _, err := Require(d.client.Session(), RouteCompany); err != nil {
		return nil, err
	}
	return d.client.Download(ctx, id)
}

// Share fetches the flyer image and hands it to the first sharer that
// accepts it. It returns the sharer that succeeded.
func (d *CompanyDashboard) Share(ctx context.Context, flyer Flyer, sharers ...Sharer) (Sharer, error) {
	state, err := Require(d.client.Session(), RouteCompany)
	if err != nil {
		return nil, err
	}
	file, err := d.client.Download(ctx, flyer.ID)
	if err != nil {
		return nil, err
	}
	item := &ShareItem{
		Title:       flyer.Title,
		Message:     ShareMessage(flyer.Title, companyName(&state.Identity)),
		URL:         d.client.ImageURL(flyer),
		FileName:    ShareFileName(flyer.Title, flyer.ImagePath),
		ContentType: file.ContentType,
		Data:        file.Data,
	}
	return Share(ctx, item, sharers...)
}

func (d *CompanyDashboard) Delete(ctx context.Context, id uint) error {
	if _, err := Require(d.client.Session(), RouteCompany); err != nil {
		return err
	}
	return d.client.Delete(ctx, id)
}

func companyName(id *Identity) string {
	if id.CompanyName == nil {
		return ""
	}
	return *id.CompanyName
}
