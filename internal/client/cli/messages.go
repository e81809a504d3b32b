package cli

import (
	"context"
	"fmt"
	"os"
	"time"
)

func formatReadMark(readAt *time.Time) string {
	if readAt == nil {
		return "unread"
	}
	return "read " + readAt.Format("2006-01-02 15:04")
}

// Send prompts for a recipient and a body and posts the message.
func (a *App) Send(ctx context.Context) error {
	toUsername, err := getSimpleText(a.reader, "Send to (username)", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	body, err := getMultiline(a.reader, "Message body", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	msg, err := a.client.Send(ctx, toUsername, body)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Sent", msg.ID)
	return nil
}

// Inbox lists messages received by the logged-in user, oldest first.
func (a *App) Inbox(ctx context.Context) error {
	list, err := a.client.Inbox(ctx, a.userName)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	if len(list) == 0 {
		printlnFn("Inbox is empty")
		return nil
	}

	for _, m := range list {
		printlnFn(fmt.Sprintf("%s | %s | from %s (%s %s) | %s",
			m.ID, m.SentAt.Format("2006-01-02 15:04"),
			m.FromUser.Username, m.FromUser.FirstName, m.FromUser.LastName,
			formatReadMark(m.ReadAt)))
	}
	return nil
}

// Sent lists messages sent by the logged-in user, oldest first.
func (a *App) Sent(ctx context.Context) error {
	list, err := a.client.Sent(ctx, a.userName)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	if len(list) == 0 {
		printlnFn("Nothing sent yet")
		return nil
	}

	for _, m := range list {
		printlnFn(fmt.Sprintf("%s | %s | to %s (%s %s) | %s",
			m.ID, m.SentAt.Format("2006-01-02 15:04"),
			m.ToUser.Username, m.ToUser.FirstName, m.ToUser.LastName,
			formatReadMark(m.ReadAt)))
	}
	return nil
}

// Show prompts for a message id and prints the full message.
func (a *App) Show(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter message id", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	msg, err := a.client.Message(ctx, id)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("From: %s (%s %s)", msg.FromUser.Username, msg.FromUser.FirstName, msg.FromUser.LastName))
	printlnFn(fmt.Sprintf("To:   %s (%s %s)", msg.ToUser.Username, msg.ToUser.FirstName, msg.ToUser.LastName))
	printlnFn("Sent:", msg.SentAt.Format("2006-01-02 15:04"))
	printlnFn("Status:", formatReadMark(msg.ReadAt))
	printlnFn("")
	printlnFn(msg.Body)
	return nil
}

// MarkRead prompts for a message id and marks it read. Only the recipient
// may do this; the server rejects everyone else.
func (a *App) MarkRead(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter message id", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	receipt, err := a.client.MarkRead(ctx, id)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Marked read at", receipt.ReadAt.Format("2006-01-02 15:04"))
	return nil
}
