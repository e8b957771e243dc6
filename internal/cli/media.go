package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crestline-labs/backoffice/pkg/console"
)

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Manage media assets",
}

var mediaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List media assets",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient(cmd)
		if err != nil {
			return err
		}

		page, err := listPage[console.MediaAsset](cmd, client, "media")
		if err != nil {
			return err
		}

		return render(outputFormat(cmd), page, func() {
			t := newTable("ID", "FILE", "TYPE", "SIZE", "UPLOADED")
			for _, a := range page.Items {
				t.addRow(a.ID, a.FileName, a.ContentType,
					formatBytes(a.SizeBytes), a.CreatedAt.Format("2006-01-02 15:04"))
			}
			t.render()
			pageFooter(page.PageIndex, page.TotalPages, page.TotalCount)
		})
	},
}

var mediaRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register an uploaded asset",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient(cmd)
		if err != nil {
			return err
		}

		fileName, _ := cmd.Flags().GetString("file-name")
		contentType, _ := cmd.Flags().GetString("content-type")
		sizeBytes, _ := cmd.Flags().GetInt64("size")
		assetURL, _ := cmd.Flags().GetString("url")

		asset, err := client.CreateMedia(cmd.Context(), console.CreateMediaRequest{
			FileName:    fileName,
			ContentType: contentType,
			SizeBytes:   sizeBytes,
			URL:         assetURL,
		})
		if err != nil {
			return err
		}
		success("Registered %s (%s)", asset.FileName, asset.ID)
		return nil
	},
}

var mediaDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a media asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient(cmd)
		if err != nil {
			return err
		}
		if err := client.DeleteMedia(cmd.Context(), args[0]); err != nil {
			return err
		}
		success("Deleted media %s", args[0])
		return nil
	},
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func init() {
	rootCmd.AddCommand(mediaCmd)
	mediaCmd.AddCommand(mediaListCmd)
	mediaCmd.AddCommand(mediaRegisterCmd)
	mediaCmd.AddCommand(mediaDeleteCmd)

	addListFlags(mediaListCmd, "fileName")

	mediaRegisterCmd.Flags().String("file-name", "", "Original file name")
	mediaRegisterCmd.Flags().String("content-type", "application/octet-stream", "MIME type")
	mediaRegisterCmd.Flags().Int64("size", 0, "Size in bytes")
	mediaRegisterCmd.Flags().String("url", "", "Public URL of the asset")
	mediaRegisterCmd.MarkFlagRequired("file-name")
	mediaRegisterCmd.MarkFlagRequired("url")
}
