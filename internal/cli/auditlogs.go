package cli

import (
	"github.com/spf13/cobra"

	"github.com/crestline-labs/backoffice/pkg/console"
)

var auditlogsCmd = &cobra.Command{
	Use:   "auditlogs",
	Short: "Browse the audit trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient(cmd)
		if err != nil {
			return err
		}

		page, err := listPage[console.AuditLog](cmd, client, "auditlogs")
		if err != nil {
			return err
		}

		return render(outputFormat(cmd), page, func() {
			t := newTable("TIME", "USER", "ACTION", "ENTITY", "DETAILS")
			for _, entry := range page.Items {
				t.addRow(entry.Timestamp.Format("2006-01-02 15:04:05"),
					entry.User, entry.Action, entry.Entity, entry.Details)
			}
			t.render()
			pageFooter(page.PageIndex, page.TotalPages, page.TotalCount)
		})
	},
}

func init() {
	rootCmd.AddCommand(auditlogsCmd)
	addListFlags(auditlogsCmd, "details")
}
