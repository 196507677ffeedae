package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/atrium-dev/atrium/internal/client"
)

// NewChatCmd creates the chat command group
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with a project's documents",
	}

	cmd.AddCommand(newChatListCmd())
	cmd.AddCommand(newChatNewCmd())
	cmd.AddCommand(newChatHistoryCmd())
	cmd.AddCommand(newChatSendCmd())

	return cmd
}

func newChatListCmd() *cobra.Command {
	var serverAlias, projectID string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatList(projectID, serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")
	cmd.Flags().StringVar(&projectID, "project", "", "Only show conversations for this project")

	return cmd
}

func runChatList(projectID, serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAuth(ctx); err != nil {
		return err
	}

	var conversations []client.Conversation
	if projectID != "" {
		conversations, err = ws.api.ListProjectConversations(ctx, projectID)
	} else {
		conversations, err = ws.api.ListConversations(ctx)
	}
	if err != nil {
		return err
	}

	if len(conversations) == 0 {
		fmt.Println("No conversations found.")
		fmt.Println("\nStart one with: atrium chat new <project-id>")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPROJECT")
	fmt.Fprintln(w, "──\t─────\t───────")

	for _, conv := range conversations {
		fmt.Fprintf(w, "%s\t%s\t%s\n", conv.ID, conv.Title, conv.ProjectID)
	}

	w.Flush()

	return nil
}

func newChatNewCmd() *cobra.Command {
	var serverAlias, title string

	cmd := &cobra.Command{
		Use:   "new <project-id>",
		Short: "Start a new conversation in a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatNew(args[0], title, serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")
	cmd.Flags().StringVar(&title, "title", "", "Conversation title")

	return cmd
}

func runChatNew(projectID, title, serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAuth(ctx); err != nil {
		return err
	}

	conv, err := ws.api.CreateConversation(ctx, client.CreateConversationRequest{
		ProjectID: projectID,
		Title:     title,
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Started conversation %s (%s)\n", conv.Title, conv.ID)
	fmt.Println("Send a message with: atrium chat send " + conv.ID + " \"your question\"")

	return nil
}

func newChatHistoryCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "history <conversation-id>",
		Short: "Show a conversation's messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatHistory(args[0], serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")

	return cmd
}

func runChatHistory(conversationID, serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAuth(ctx); err != nil {
		return err
	}

	messages, err := ws.api.ListMessages(ctx, conversationID)
	if err != nil {
		return err
	}

	if len(messages) == 0 {
		fmt.Println("No messages yet.")
		return nil
	}

	for _, msg := range messages {
		fmt.Printf("[%s] %s\n\n", msg.Role, msg.Content)
	}

	return nil
}

func newChatSendCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "send <conversation-id> <message>",
		Short: "Send a message and print the reply",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChatSend(args[0], args[1], serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")

	return cmd
}

func runChatSend(conversationID, message, serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAuth(ctx); err != nil {
		return err
	}

	reply, err := ws.api.SendMessage(ctx, conversationID, client.SendMessageRequest{
		Content: message,
	})
	if err != nil {
		return err
	}

	fmt.Println(reply.Content)
	return nil
}
