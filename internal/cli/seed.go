package cli

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"

	"github.com/crestline-labs/backoffice/pkg/console"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the console with fake data",
	Long:  "Generate realistic accounts and content for demos and load testing the list views.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient(cmd)
		if err != nil {
			return err
		}

		userCount, _ := cmd.Flags().GetInt("users")
		contentCount, _ := cmd.Flags().GetInt("contents")
		mediaCount, _ := cmd.Flags().GetInt("media")
		seed, _ := cmd.Flags().GetInt64("seed")

		faker := gofakeit.New(seed)

		created := 0
		for i := 0; i < userCount; i++ {
			_, err := client.CreateUser(cmd.Context(), console.CreateUserRequest{
				Email:     faker.Email(),
				FirstName: faker.FirstName(),
				LastName:  faker.LastName(),
				Password:  faker.Password(true, true, true, false, false, 16),
			})
			if err != nil {
				// Duplicate emails are expected with a fixed seed; skip them.
				if console.IsValidation(err) {
					continue
				}
				return fmt.Errorf("seed user %d: %w", i, err)
			}
			created++
		}
		if userCount > 0 {
			success("Created %d users", created)
		}

		created = 0
		for i := 0; i < contentCount; i++ {
			title := faker.Sentence(4)
			slug := slugify(fmt.Sprintf("%s %d", title, i))
			content, err := client.CreateContent(cmd.Context(), console.CreateContentRequest{
				Title: strings.TrimSuffix(title, "."),
				Slug:  slug,
				Body:  faker.Paragraph(2, 4, 12, "\n"),
			})
			if err != nil {
				if console.IsValidation(err) {
					continue
				}
				return fmt.Errorf("seed content %d: %w", i, err)
			}
			// Publish roughly half so both statuses show up in the lists.
			if i%2 == 0 {
				if _, err := client.PublishContent(cmd.Context(), content.ID); err != nil {
					return fmt.Errorf("publish seeded content: %w", err)
				}
			}
			created++
		}
		if contentCount > 0 {
			success("Created %d content entries", created)
		}

		created = 0
		for i := 0; i < mediaCount; i++ {
			name := fmt.Sprintf("%s-%d.png", strings.ToLower(faker.Word()), i)
			_, err := client.CreateMedia(cmd.Context(), console.CreateMediaRequest{
				FileName:    name,
				ContentType: "image/png",
				SizeBytes:   int64(faker.Number(1024, 4*1024*1024)),
				URL:         "https://cdn.example.com/" + name,
			})
			if err != nil {
				return fmt.Errorf("seed media %d: %w", i, err)
			}
			created++
		}
		if mediaCount > 0 {
			success("Created %d media assets", created)
		}
		return nil
	},
}

func slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().Int("users", 10, "number of users to create")
	seedCmd.Flags().Int("contents", 20, "number of content entries to create")
	seedCmd.Flags().Int("media", 10, "number of media assets to create")
	seedCmd.Flags().Int64("seed", 0, "random seed (0 = random)")
}
