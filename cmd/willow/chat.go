// ABOUTME: Chat command for talking to the bot from a terminal
// ABOUTME: Feeds each input line to the engine as one message and prints the reply

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/willow/internal/chat"
	"github.com/harper/willow/internal/ui"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send messages to the bot as a chat user",
	Long: `Send messages to the bot as if typed in a community channel.

With a message argument, sends that one message. Without one, reads
messages from stdin, one per line.

Examples:
  willow chat --server home "?addstop Clock Tower 42.46 -76.51"
  willow chat --server home --admin "?settimezone America/New_York"
  willow chat --server home --author alice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := cmd.Flags().GetString("server")
		author, _ := cmd.Flags().GetString("author")
		admin, _ := cmd.Flags().GetBool("admin")

		out := cmd.OutOrStdout()
		send := func(text string) {
			reply := engine.Handle(chat.Message{
				ServerID: server,
				AuthorID: author,
				Text:     text,
				Admin:    admin,
			})
			if s := ui.FormatReply(reply); s != "" {
				fmt.Fprintln(out, s)
			}
		}

		if len(args) > 0 {
			send(strings.Join(args, " "))
			return nil
		}
		return readMessages(cmd.InOrStdin(), send)
	},
}

func readMessages(r io.Reader, send func(string)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		send(line)
	}
	return scanner.Err()
}

func init() {
	chatCmd.Flags().StringP("server", "s", "local", "server the messages are sent in")
	chatCmd.Flags().StringP("author", "a", "cli", "author of the messages")
	chatCmd.Flags().Bool("admin", false, "send as a server admin")

	rootCmd.AddCommand(chatCmd)
}
