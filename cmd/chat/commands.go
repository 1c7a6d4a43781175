package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/common"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/domain"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/service"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/internal/tui"
)

// runTUI starts the interactive chat view
func runTUI(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requireSession(); err != nil {
		return err
	}

	model := tui.New(cmd.Context(), tui.Options{
		Messenger:       a.messenger(),
		RefreshInterval: a.cfg.Chat.RefreshInterval,
	})
	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if m, ok := final.(tui.Model); ok && m.Expired() {
		return errLoginRequired
	}
	return nil
}

func newLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.close()

			in := bufio.NewReader(os.Stdin)
			if email == "" {
				if email, err = prompt(in, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				password = os.Getenv("CHAT_PASSWORD")
			}
			if password == "" {
				if password, err = prompt(in, "Password: "); err != nil {
					return err
				}
			}

			s, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			name := "unknown"
			if s.User != nil {
				name = s.User.DisplayName()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (or CHAT_PASSWORD)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newConversationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"ls"},
		Short:   "List recent conversations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, m, err := mounted(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			snap := m.Snapshot()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tWITH\tUNREAD\tLAST MESSAGE")
			for _, conv := range snap.Conversations {
				name := domain.UnknownUserName
				if other, ok := conv.OtherParticipant(snap.Self.ID); ok {
					name = other.DisplayName()
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", conv.ID, name, conv.UnreadCount, conv.Preview())
			}
			return w.Flush()
		},
	}
}

func newThreadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "thread <conversation-id>",
		Short: "Print the messages of a conversation, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseConversationID(args[0])
			if err != nil {
				return err
			}
			a, m, err := mounted(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if err := m.SelectConversation(cmd.Context(), id); err != nil {
				return err
			}
			printThread(cmd, m.Snapshot())
			return nil
		},
	}
}

func newSendCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "send [conversation-id] <message>",
		Short: "Send a message to a conversation, or to a user with --user",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, m, err := mounted(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if userID > 0 {
				user, err := a.client.GetUser(cmd.Context(), userID)
				if err != nil {
					return fmt.Errorf("look up user %d: %w", userID, err)
				}
				if _, err := m.StartConversation(cmd.Context(), user); err != nil {
					return err
				}
			} else {
				if len(args) < 2 {
					return errors.New("need a conversation id and a message, or --user")
				}
				id, err := domain.ParseConversationID(args[0])
				if err != nil {
					return err
				}
				if err := m.SelectConversation(cmd.Context(), id); err != nil {
					return err
				}
				args = args[1:]
			}

			msg, err := m.Send(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent message %s\n", msg.ID)
			return nil
		},
	}
	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "recipient user id (starts a conversation when needed)")
	return cmd
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <handle>",
		Short: "Find users to message by handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.requireSession(); err != nil {
				return err
			}

			users, err := a.messenger().SearchUsers(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tHANDLE\tROLE")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t@%s\t%s\n", strconv.FormatInt(u.ID, 10), u.DisplayName(), u.Handle, u.Role)
			}
			return w.Flush()
		},
	}
}

// mounted bootstraps a signed-in messenger with its conversation list loaded
func mounted(cmd *cobra.Command) (*app, service.MessengerService, error) {
	a, err := bootstrap(cmd.Context(), false)
	if err != nil {
		return nil, nil, err
	}
	if err := a.requireSession(); err != nil {
		a.close()
		return nil, nil, err
	}
	m := a.messenger()
	if err := m.Mount(cmd.Context()); err != nil {
		a.close()
		if errors.Is(err, common.ErrSessionExpired) {
			return nil, nil, errLoginRequired
		}
		return nil, nil, err
	}
	return a, m, nil
}

func printThread(cmd *cobra.Command, snap service.Snapshot) {
	names := map[int64]string{}
	if conv, ok := snap.SelectedConversation(); ok {
		for _, p := range conv.Participants {
			names[p.ID] = p.DisplayName()
		}
	}
	if snap.Self != nil {
		names[snap.Self.ID] = "You"
	}

	out := cmd.OutOrStdout()
	if len(snap.Thread.Messages) == 0 {
		fmt.Fprintln(out, "No messages yet")
		return
	}
	for _, msg := range snap.Thread.Messages {
		name, ok := names[msg.SenderID]
		if !ok {
			name = domain.UnknownUserName
		}
		stamp := ""
		if !msg.CreatedAt.IsZero() {
			stamp = msg.CreatedAt.Local().Format("2006-01-02 15:04") + "  "
		}
		fmt.Fprintf(out, "%s%s: %s\n", stamp, name, msg.Content)
	}
}

func prompt(in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
