package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewDocumentsCmd creates the documents command group
func NewDocumentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "Manage project documents",
	}

	cmd.AddCommand(newDocumentsListCmd())
	cmd.AddCommand(newDocumentsUploadCmd())
	cmd.AddCommand(newDocumentsStatusCmd())
	cmd.AddCommand(newDocumentsRetryCmd())
	cmd.AddCommand(newDocumentsDeleteCmd())

	return cmd
}

func newDocumentsListCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:     "ls <project-id>",
		Aliases: []string{"list"},
		Short:   "List a project's documents",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocumentsList(args[0], serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")

	return cmd
}

func runDocumentsList(projectID, serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAuth(ctx); err != nil {
		return err
	}

	docs, err := ws.api.ListDocuments(ctx, projectID)
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		fmt.Println("No documents found.")
		fmt.Println("\nUpload one with: atrium documents upload <project-id> <file>")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILENAME\tSTATUS\tCHUNKS\tSIZE")
	fmt.Fprintln(w, "──\t────────\t──────\t──────\t────")

	for _, doc := range docs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
			doc.ID,
			doc.Filename,
			doc.Status,
			doc.ChunkCount,
			doc.SizeBytes,
		)
	}

	w.Flush()

	return nil
}

func newDocumentsUploadCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "upload <project-id> <file>",
		Short: "Upload a file into a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocumentsUpload(args[0], args[1], serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")

	return cmd
}

func runDocumentsUpload(projectID, path, serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAuth(ctx); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	fmt.Printf("Uploading %s...\n", path)

	doc, err := ws.api.UploadDocument(ctx, projectID, filepath.Base(path), f)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	fmt.Printf("✓ Uploaded %s (%s), status: %s\n", doc.Filename, doc.ID, doc.Status)
	fmt.Println("Check progress with: atrium documents status " + doc.ID)

	return nil
}

func newDocumentsStatusCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "status <document-id>",
		Short: "Show a document's processing status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocumentsStatus(args[0], serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")

	return cmd
}

func runDocumentsStatus(documentID, serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAuth(ctx); err != nil {
		return err
	}

	progress, err := ws.api.GetDocumentProgress(ctx, documentID)
	if err != nil {
		return err
	}

	fmt.Printf("Status: %s\n", progress.Status)
	if progress.ChunkCount > 0 {
		fmt.Printf("Chunks: %d\n", progress.ChunkCount)
	}
	if progress.Error != "" {
		fmt.Printf("Error:  %s\n", progress.Error)
	}

	return nil
}

func newDocumentsRetryCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "retry <document-id>",
		Short: "Re-run processing for a failed document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocumentsRetry(args[0], serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")

	return cmd
}

func runDocumentsRetry(documentID, serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAuth(ctx); err != nil {
		return err
	}

	doc, err := ws.api.RetryDocument(ctx, documentID)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Re-queued %s, status: %s\n", doc.Filename, doc.Status)
	return nil
}

func newDocumentsDeleteCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:     "rm <document-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a document",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocumentsDelete(args[0], serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias from atrium.json")

	return cmd
}

func runDocumentsDelete(documentID, serverAlias string) error {
	ws, err := newWorkspace(serverAlias)
	if err != nil {
		return err
	}

	ctx := cmdContext()
	if err := ws.requireAuth(ctx); err != nil {
		return err
	}

	if err := ws.api.DeleteDocument(ctx, documentID); err != nil {
		return err
	}

	fmt.Printf("✓ Deleted document %s\n", documentID)
	return nil
}
