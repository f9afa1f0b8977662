package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/suPer8Hu/jewelry-assistant/internal/catalog"
	"github.com/suPer8Hu/jewelry-assistant/internal/chat"
)

func (c *cli) print(cmd *cobra.Command, v any, text string) error {
	if c.outputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}

// --- ask ---

func (c *cli) newAskCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send one message to the assistant",
		Long: `Send one message through the full chat lifecycle: session, rate limit,
reply, and history/attempt/analytics rows.

Examples:
  chatctl ask "do you have any gold rings?"
  chatctl ask --session guest_1b9d... "how much is it?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := c.app.Service(chat.NewDirectRecorder(c.app.ChatRepo, c.logger()))
			res, err := svc.SendMessage(cmd.Context(), chat.SendRequest{
				SessionID: sessionID,
				Message:   strings.Join(args, " "),
			})
			switch {
			case errors.Is(err, chat.ErrRateLimited):
				return c.print(cmd, res, fmt.Sprintf("%s\n(session %s)", res.Reply, res.SessionID))
			case err != nil:
				return err
			}
			return c.print(cmd, res, fmt.Sprintf("%s\n(session %s, intent %s)", res.Reply, res.SessionID, res.Intent))
		},
	}
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "continue this session id")
	return cmd
}

// --- seed ---

func (c *cli) newSeedCmd() *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in product list into the catalog",
		Long: `Insert the built-in product list with inventory rows. Products whose
name already exists are left alone, so running it twice is safe.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := c.app.Catalog.Seed(cmd.Context(), catalog.StaticProducts(), quantity)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			return c.print(cmd, map[string]int{"inserted": n}, fmt.Sprintf("inserted %d products", n))
		},
	}
	cmd.Flags().IntVar(&quantity, "quantity", 5, "stock quantity for each inserted product")
	return cmd
}

// --- expire ---

func (c *cli) newExpireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Archive and delete sessions idle longer than SESSION_TTL",
		RunE: func(cmd *cobra.Command, args []string) error {
			n := c.app.Sessions.ExpireStaleSessions(cmd.Context())
			return c.print(cmd, map[string]int{"expired": n}, fmt.Sprintf("expired %d sessions", n))
		},
	}
}

// --- purge ---

func (c *cli) newPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete archived messages older than ARCHIVE_RETENTION",
		RunE: func(cmd *cobra.Command, args []string) error {
			n := c.app.Sessions.PurgeOldArchives(cmd.Context())
			return c.print(cmd, map[string]int64{"purged": n}, fmt.Sprintf("purged %d archive rows", n))
		},
	}
}
