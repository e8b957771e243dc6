package cli

import (
	"github.com/spf13/cobra"

	"github.com/crestline-labs/backoffice/pkg/console"
)

var contentsCmd = &cobra.Command{
	Use:   "contents",
	Short: "Manage content entries",
}

var contentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List content entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient(cmd)
		if err != nil {
			return err
		}

		page, err := listPage[console.Content](cmd, client, "contents")
		if err != nil {
			return err
		}

		return render(outputFormat(cmd), page, func() {
			t := newTable("ID", "TITLE", "SLUG", "STATUS", "UPDATED")
			for _, c := range page.Items {
				t.addRow(c.ID, c.Title, c.Slug, c.Status, c.UpdatedAt.Format("2006-01-02 15:04"))
			}
			t.render()
			pageFooter(page.PageIndex, page.TotalPages, page.TotalCount)
		})
	},
}

var contentsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient(cmd)
		if err != nil {
			return err
		}

		title, _ := cmd.Flags().GetString("title")
		slug, _ := cmd.Flags().GetString("slug")
		body, _ := cmd.Flags().GetString("body")

		content, err := client.CreateContent(cmd.Context(), console.CreateContentRequest{
			Title: title,
			Slug:  slug,
			Body:  body,
		})
		if err != nil {
			return err
		}
		success("Created draft %q (%s)", content.Title, content.ID)
		return nil
	},
}

var contentsPublishCmd = &cobra.Command{
	Use:   "publish <id>",
	Short: "Publish a draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient(cmd)
		if err != nil {
			return err
		}

		content, err := client.PublishContent(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		success("Published %q at %s", content.Title, content.PublishedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var contentsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a content entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient(cmd)
		if err != nil {
			return err
		}
		if err := client.DeleteContent(cmd.Context(), args[0]); err != nil {
			return err
		}
		success("Deleted content %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(contentsCmd)
	contentsCmd.AddCommand(contentsListCmd)
	contentsCmd.AddCommand(contentsCreateCmd)
	contentsCmd.AddCommand(contentsPublishCmd)
	contentsCmd.AddCommand(contentsDeleteCmd)

	addListFlags(contentsListCmd, "title")

	contentsCreateCmd.Flags().String("title", "", "Title")
	contentsCreateCmd.Flags().String("slug", "", "URL slug")
	contentsCreateCmd.Flags().String("body", "", "Body text")
	contentsCreateCmd.MarkFlagRequired("title")
	contentsCreateCmd.MarkFlagRequired("slug")
}
