package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/clawdeck/internal/openclaw"
	"github.com/user/clawdeck/internal/transport"
	"github.com/user/clawdeck/internal/types"
)

var (
	chatAgentID   string
	chatSessionID string
	chatThreadID  string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Send messages and follow session logs",
}

var chatSendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send a message to the agent",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		tr, link, _ := buildTransport(cfg)

		if tr.RemoteMode() {
			if err := link.Connect(); err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer link.Disconnect()
		}

		text := strings.Join(args, " ")

		// Thread-aware send: the thread resolves the session, gets touched,
		// and is auto-titled on its first reply.
		if chatThreadID != "" {
			threads, _, _, _ := buildStores(cfg)
			var titler transport.Titler
			if agent, err := openclaw.NewAgent(); err == nil {
				titler = agent
			}
			sender := transport.NewThreadSender(threads, tr, titler)
			reply, err := sender.Send(cmd.Context(), types.ThreadID(chatThreadID), text)
			if err != nil {
				return err
			}
			if reply == nil {
				fmt.Println("Sent. The remote agent will write its reply to the session log.")
				return nil
			}
			fmt.Println(reply.Content)
			return nil
		}

		key := types.SessionKey{AgentID: chatAgentID, SessionID: chatSessionID}
		if key.SessionID == "" {
			key.SessionID = types.NewSessionID()
			fmt.Printf("Session: %s\n", key.SessionID)
		}

		reply, err := tr.Send(cmd.Context(), key, text)
		if err != nil {
			return err
		}
		if reply == nil {
			fmt.Println("Sent. The remote agent will write its reply to the session log.")
			return nil
		}
		fmt.Println(reply.Content)
		return nil
	},
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Print a session's message history",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		tr, link, _ := buildTransport(cfg)

		if chatSessionID == "" {
			return fmt.Errorf("--session is required")
		}
		key := types.SessionKey{AgentID: chatAgentID, SessionID: chatSessionID}

		if tr.RemoteMode() {
			if err := link.Connect(); err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer link.Disconnect()
		}

		messages, err := tr.LoadHistory(cmd.Context(), key)
		if err != nil {
			return err
		}
		for _, msg := range messages {
			printMessage(msg)
		}
		return nil
	},
}

var chatWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a session log, printing new messages until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		tr, link, watches := buildTransport(cfg)

		if chatSessionID == "" {
			return fmt.Errorf("--session is required")
		}
		key := types.SessionKey{AgentID: chatAgentID, SessionID: chatSessionID}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

		if tr.RemoteMode() {
			if err := link.Connect(); err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer link.Disconnect()
			stop, err := link.StreamSessionFile(key, func(line string) {
				if msg, ok := openclaw.ParseLine(line); ok {
					printMessage(msg)
				}
			})
			if err != nil {
				return err
			}
			defer stop()
			<-sig
			return nil
		}

		if err := tr.Watch(key, printMessage); err != nil {
			return err
		}
		defer watches.StopAll()
		<-sig
		return nil
	},
}

func printMessage(msg openclaw.ChatMessage) {
	prefix := "agent"
	if msg.Role == openclaw.RoleUser {
		prefix = "you"
	}
	fmt.Printf("[%s] %s\n", prefix, msg.Content)
}

func init() {
	chatCmd.PersistentFlags().StringVar(&chatAgentID, "agent", "main", "agent ID")
	chatCmd.PersistentFlags().StringVar(&chatSessionID, "session", "", "session ID")
	chatSendCmd.Flags().StringVar(&chatThreadID, "thread", "", "thread ID; resolves the session and keeps the thread updated")
	chatCmd.AddCommand(chatSendCmd)
	chatCmd.AddCommand(chatHistoryCmd)
	chatCmd.AddCommand(chatWatchCmd)
	rootCmd.AddCommand(chatCmd)
}
