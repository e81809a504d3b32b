package cli

import (
	"context"
	"os"

	"github.com/dmitrijs2005/messagely/internal/client/api"
)

// Register creates an account and starts a session with the returned token.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter user name", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	firstName, err := getSimpleText(a.reader, "Enter first name", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	lastName, err := getSimpleText(a.reader, "Enter last name", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	phone, err := getSimpleText(a.reader, "Enter phone", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	token, err := a.client.Register(ctx, api.RegisterParams{
		Username:  username,
		Password:  string(password),
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
	})
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	a.setSession(username, token)
	printlnFn("Registered and logged in as", username)
	return nil
}

// Login authenticates and stores the session token.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter user name", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	token, err := a.client.Login(ctx, username, password)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	a.setSession(username, token)
	printlnFn("Logged in as", username)
	return nil
}

// Logout drops the session. The token itself is stateless and simply forgotten.
func (a *App) Logout(ctx context.Context) error {
	a.userName = ""
	a.client.SetToken("")
	printlnFn("Logged out")
	return nil
}
