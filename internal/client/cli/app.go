// Package cli implements the interactive messagely client: a small REPL over
// the server's HTTP API for registering, logging in, browsing the user
// directory and exchanging messages.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/dmitrijs2005/messagely/internal/client/api"
	"github.com/dmitrijs2005/messagely/internal/client/config"
)

type App struct {
	config   *config.Config
	client   api.Client
	userName string
	reader   *bufio.Reader
}

func NewApp(c *config.Config) *App {
	apiClient := api.NewClient(c.ServerEndpointAddr, c.RequestTimeout)
	return &App{config: c, client: apiClient, reader: bufio.NewReader(os.Stdin)}
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

// setSession stores the bearer token and the identity it was issued for.
func (a *App) setSession(username, token string) {
	a.userName = username
	a.client.SetToken(token)
}

func (a *App) Run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, func() string {
		if a.isLoggedIn() {
			return a.userName
		}
		return "not logged in"
	}, scanner)
}
