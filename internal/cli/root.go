// Package cli implements flyerctl, a terminal front end for the flyer API.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flyerhub/internal/client"
)

const defaultServer = "http://localhost:8080"

// app is the state shared by all commands of one invocation.
type app struct {
	server      string
	sessionPath string

	session *client.Session
	client  *client.Client
}

// NewRootCmd builds the flyerctl command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "flyerctl",
		Short: "Distribute company flyers from the terminal",
		Long: formatTitle("flyerctl") + " - flyer distribution client\n\n" +
			"Admins upload flyers per company; company users list, download and share\n" +
			"the flyers of their own company.",
		SilenceUsage:      true,
		PersistentPreRunE: a.initialize,
	}

	server := os.Getenv("FLYER_SERVER")
	if server == "" {
		server = defaultServer
	}
	root.PersistentFlags().StringVar(&a.server, "server", server, "API base URL (env FLYER_SERVER)")
	root.PersistentFlags().StringVar(&a.sessionPath, "session", DefaultSessionPath(), "session file")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.companiesCmd(),
		a.flyersCmd(),
		a.uploadCmd(),
		a.downloadCmd(),
		a.deleteCmd(),
		a.shareCmd(),
	)
	return root
}

// Execute runs flyerctl and exits non-zero on failure.
func Execute() {
	root := NewRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err.Error()))
		os.Exit(1)
	}
}

func (a *app) initialize(cmd *cobra.Command, _ []string) error {
	a.session = client.NewSession(&FileSessionStore{Path: a.sessionPath})
	if err := a.session.Restore(); err != nil {
		return err
	}
	a.client = client.New(a.server, a.session)
	return nil
}
