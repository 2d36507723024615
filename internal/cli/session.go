package cli

import (
	"context"
	"fmt"

	"github.com/evcraddock/gatepass/internal/client"
	"github.com/evcraddock/gatepass/internal/lobby"
	"github.com/evcraddock/gatepass/internal/notify"
	"github.com/evcraddock/gatepass/internal/visit"
)

// session bundles what the notification and console commands share: the API
// client, the logged-in user, their visitor source and the local database.
type session struct {
	client *client.Client
	user   *visit.User
	source lobby.Source
	center *notify.Center
	repo   *visit.Repository
	close  func()
}

func openSession(ctx context.Context) (*session, error) {
	c, done := newAPIClient()

	u, err := c.CurrentUser(ctx)
	if err != nil {
		done()
		return nil, err
	}
	if !u.IsLobbyAttendant() && !u.IsEmployee() {
		done()
		return nil, fmt.Errorf("user %s has neither the lobby attendant nor the employee role", u.Username)
	}

	database, err := openDB()
	if err != nil {
		done()
		return nil, err
	}

	return &session{
		client: c,
		user:   u,
		source: lobby.SourceFor(c, u),
		center: notify.NewCenter(notify.NewSQLiteReadStore(database), u, logger),
		repo:   visit.NewRepository(database),
		close: func() {
			closeDB(database)
			done()
		},
	}, nil
}
