package cli

import (
	"context"
	"fmt"
)

// Users prints the directory of registered users.
func (a *App) Users(ctx context.Context) error {
	list, err := a.client.Users(ctx)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	if len(list) == 0 {
		printlnFn("No users yet")
		return nil
	}

	for _, u := range list {
		printlnFn(fmt.Sprintf("%s (%s %s)", u.Username, u.FirstName, u.LastName))
	}
	return nil
}

// Me prints the profile of the logged-in user.
func (a *App) Me(ctx context.Context) error {
	user, err := a.client.User(ctx, a.userName)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("%s: %s %s, phone %s, joined %s",
		user.Username, user.FirstName, user.LastName, user.Phone,
		user.JoinAt.Format("2006-01-02 15:04")))
	if user.LastLoginAt != nil {
		printlnFn("Last login:", user.LastLoginAt.Format("2006-01-02 15:04"))
	}
	return nil
}
