package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/atrium-dev/atrium/internal/client"
)

// NewItemsCmd creates the items command group
func NewItemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage items",
	}

	cmd.AddCommand(newItemsListCmd())
	cmd.AddCommand(newItemsCreateCmd())
	cmd.AddCommand(newItemsUpdateCmd())
	cmd.AddCommand(newItemsDeleteCmd())

	return cmd
}

func newItemsListCmd() *cobra.Command {
	var serverAlias string
	var skip, limit int

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List your items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItemsList(serverAlias, skip, limit)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")
	cmd.Flags().IntVar(&skip, "skip", 0, "Number of items to skip")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of items to return")

	return cmd
}

func runItemsList(serverAlias string, skip, limit int) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAuth(ctx); err != nil {
		return err
	}

	page, err := ws.api.ListItems(ctx, skip, limit)
	if err != nil {
		return err
	}

	if len(page.Data) == 0 {
		fmt.Println("No items found.")
		fmt.Println("\nCreate one with: atrium items create <title>")
		return nil
	}

	fmt.Printf("Items on %s (%d total):\n\n", ws.server.Alias, page.Count)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDESCRIPTION")
	fmt.Fprintln(w, "──\t─────\t───────────")

	for _, item := range page.Data {
		fmt.Fprintf(w, "%s\t%s\t%s\n", item.ID, item.Title, item.Description)
	}

	w.Flush()

	return nil
}

func newItemsCreateCmd() *cobra.Command {
	var serverAlias, description string

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a new item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItemsCreate(args[0], description, serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")
	cmd.Flags().StringVar(&description, "description", "", "Item description")

	return cmd
}

func runItemsCreate(title, description, serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAuth(ctx); err != nil {
		return err
	}

	item, err := ws.api.CreateItem(ctx, client.CreateItemRequest{
		Title:       title,
		Description: description,
	})
	if err != nil {
		return err
	}

	fmt.Printf("✓ Created item %s (%s)\n", item.Title, item.ID)
	return nil
}

func newItemsUpdateCmd() *cobra.Command {
	var serverAlias, title, description string

	cmd := &cobra.Command{
		Use:   "update <item-id>",
		Short: "Update an item's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client.UpdateItemRequest{}
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if req.Title == nil && req.Description == nil {
				return fmt.Errorf("nothing to update: pass --title or --description")
			}
			return runItemsUpdate(args[0], req, serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")

	return cmd
}

func runItemsUpdate(itemID string, req client.UpdateItemRequest, serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAuth(ctx); err != nil {
		return err
	}

	item, err := ws.api.UpdateItem(ctx, itemID, req)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Updated item %s (%s)\n", item.Title, item.ID)
	return nil
}

func newItemsDeleteCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:     "rm <item-id>",
		Aliases: []string{"delete"},
		Short:   "Delete an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItemsDelete(args[0], serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")

	return cmd
}

func runItemsDelete(itemID, serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAuth(ctx); err != nil {
		return err
	}

	if err := ws.api.DeleteItem(ctx, itemID); err != nil {
		return err
	}

	fmt.Printf("✓ Deleted item %s\n", itemID)
	return nil
}
