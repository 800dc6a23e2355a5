package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"flyerhub/internal/client"
)

func (a *app) loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			id, err := a.client.Login(cmd.Context(), args[0], password)
			if err != nil {
				if client.IsUnauthorized(err) {
					return errors.New("invalid email or password")
				}
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatSuccess("Logged in as "+id.Email))
			fmt.Fprintln(out, formatInfo(describe(id)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session tokens and forget the login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.Logout(cmd.Context()); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), formatMuted("(server logout failed: "+err.Error()+")"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatSuccess("Logged out"))
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id := a.session.Identity()
			if id == nil {
				return client.ErrRedirectToLogin
			}
			if remote {
				var err error
				if id, err = a.client.Me(cmd.Context()); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), id.Email)
			fmt.Fprintln(cmd.OutOrStdout(), formatInfo(describe(id)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "ask the server instead of the local session")
	return cmd
}

func (a *app) companiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "companies",
		Short: "List companies (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			companies, err := client.NewAdminDashboard(a.client).Companies(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(companies))
			for _, c := range companies {
				rows = append(rows, []string{strconv.FormatUint(uint64(c.ID), 10), c.Name})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name"}, rows))
			return nil
		},
	}
}

func (a *app) flyersCmd() *cobra.Command {
	var (
		companyID uint
		month     string
	)
	cmd := &cobra.Command{
		Use:     "flyers",
		Aliases: []string{"dashboard"},
		Short:   "Show the dashboard for the logged-in role",
		Long: `Admins see every company's flyers, optionally filtered with --company.
Company users see their own company's flyers, optionally for one --month (YYYY-MM).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dash, err := client.NewDashboard(a.client)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var selected *client.Month
			switch d := dash.(type) {
			case *client.AdminDashboard:
				if companyID != 0 {
					d.CompanyFilter = &companyID
				}
				fmt.Fprintln(out, formatTitle("All flyers"))
			case *client.CompanyDashboard:
				if month != "" {
					m, err := client.ParseMonth(month)
					if err != nil {
						return err
					}
					d.Month = &m
					selected = &m
				}
				fmt.Fprintln(out, formatTitle(companyLabel(a.session.Identity())))
			}

			rows, err := dash.Flyers(cmd.Context())
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, formatMuted("No flyers available yet."))
			} else {
				fmt.Fprintln(out, renderFlyers(a.client, rows))
			}
			if selected != nil {
				fmt.Fprintln(out, formatMuted(fmt.Sprintf("← %s   %s   %s →", selected.Prev(), selected, selected.Next())))
			}
			return nil
		},
	}
	cmd.Flags().UintVar(&companyID, "company", 0, "only this company (admin)")
	cmd.Flags().StringVar(&month, "month", "", "only this month, YYYY-MM (company)")
	return cmd
}

func (a *app) uploadCmd() *cobra.Command {
	var (
		title     string
		companyID uint
	)
	cmd := &cobra.Command{
		Use:   "upload <image>",
		Short: "Upload a PNG or JPG flyer for a company (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			flyer, err := client.NewAdminDashboard(a.client).Upload(cmd.Context(), title, companyID, filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatSuccess(fmt.Sprintf("Uploaded flyer %d: %s", flyer.ID, a.client.ImageURL(*flyer))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "flyer title")
	cmd.Flags().UintVarP(&companyID, "company", "c", 0, "company ID")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}

func (a *app) downloadCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "download <flyer-id>",
		Short: "Save a flyer image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseFlyerID(args[0])
			if err != nil {
				return err
			}
			file, err := a.client.Download(cmd.Context(), id)
			if err != nil {
				return err
			}
			name := file.Name
			if name == "" {
				name = args[0] + ".jpg"
			}
			target := filepath.Join(dir, filepath.Base(name))
			if err := os.WriteFile(target, file.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatSuccess("Saved "+target))
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "out", "o", ".", "target directory")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <flyer-id>",
		Short: "Delete a flyer and its image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseFlyerID(args[0])
			if err != nil {
				return err
			}
			dash, err := client.NewDashboard(a.client)
			if err != nil {
				return err
			}
			if err := dash.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatSuccess(fmt.Sprintf("Deleted flyer %d", id)))
			return nil
		},
	}
}

func (a *app) shareCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "share <flyer-id>",
		Short: "Share a flyer (clipboard, falling back to a saved file)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseFlyerID(args[0])
			if err != nil {
				return err
			}
			dash := client.NewCompanyDashboard(a.client)
			rows, err := dash.Flyers(cmd.Context())
			if err != nil {
				return err
			}
			var flyer *client.Flyer
			for i := range rows {
				if rows[i].ID == id {
					flyer = &rows[i].Flyer
					break
				}
			}
			if flyer == nil {
				return fmt.Errorf("flyer %d not found", id)
			}

			downloads := &client.DownloadSharer{Dir: dir}
			used, err := dash.Share(cmd.Context(), *flyer, client.NewClipboardSharer(), downloads)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if used == client.Sharer(downloads) {
				fmt.Fprintln(out, formatSuccess("Image saved: "+downloads.Saved))
				fmt.Fprintln(out, formatInfo("Attach it in your messenger to share"))
				return nil
			}
			fmt.Fprintln(out, formatSuccess("Copied message and image link to the clipboard"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "out", "o", ".", "directory for the fallback download")
	return cmd
}

func renderFlyers(c *client.Client, rows []client.FlyerRow) string {
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, []string{
			strconv.FormatUint(uint64(row.ID), 10),
			row.Title,
			row.CompanyName,
			row.CreatedAt.Local().Format("2006-01-02"),
			c.ImageURL(row.Flyer),
		})
	}
	return renderTable([]string{"ID", "Title", "Company", "Created", "Image"}, cells)
}

func describe(id *client.Identity) string {
	if id.IsAdmin() {
		return "Role: Admin"
	}
	return "Role: " + id.Role + ", " + companyLabel(id)
}

func companyLabel(id *client.Identity) string {
	if id == nil || id.CompanyName == nil {
		return "Your flyers"
	}
	return *id.CompanyName
}

func parseFlyerID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid flyer id %q", raw)
	}
	return uint(id), nil
}
