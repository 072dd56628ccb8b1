package cli

import (
	"agenda-cli/internal/activity"
	"agenda-cli/internal/model"

	"github.com/spf13/cobra"
)

func newCategoriesCmd(app *App) *cobra.Command {
	var static bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List activity categories (localized ids, both languages)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if static {
				return writeOut(cmd, app, map[string]any{"data": activity.StaticCategoryOptions()})
			}
			b, closeFn, err := openBackend(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()

			list, err := b.ListCategories(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if list == nil {
				list = []model.CategoryOption{}
			}
			return writeOut(cmd, app, map[string]any{
				"data": list,
				"_hints": []string{
					"agenda activity add --date <YYYY-MM-DD> --type <id> ...",
				},
			})
		},
	}
	cmd.Flags().BoolVar(&static, "static", false, "Print the built-in table without asking the backend")
	return cmd
}
