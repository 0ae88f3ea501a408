package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/directory"
	"github.com/MrSnakeDoc/shelf/internal/domain"
)

var (
	listCategory string
	listSearch   string
	listTag      string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the ranked directory",
	Long: `Print the directory in display order: pinned first, then most clicked,
then newest. --tag replaces --category and --search, like clicking a tag.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, _, core, err := openCore(cmd.Context())
		if err != nil {
			return err
		}
		defer core.Close()

		f := domain.Filter{Category: strings.ToLower(listCategory), Query: listSearch}
		if listTag != "" {
			f = domain.TagFilter(listTag)
		}
		view, err := core.Directory.View(cmd.Context(), f)
		if err != nil {
			return err
		}
		return printView(cmd.OutOrStdout(), view)
	},
}

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", domain.CategoryAll, "Only show this category")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Case-insensitive search over name, description and tags")
	listCmd.Flags().StringVarP(&listTag, "tag", "t", "", "Only show resources carrying this tag")
}

func printView(w io.Writer, view directory.View) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PIN\tCLICKS\tCATEGORY\tNAME\tURL\tTAGS")
	for _, item := range view.Items {
		pin := ""
		if item.IsPinned {
			pin = "📌"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			pin, item.ClickCount, item.Category, item.Name, item.URL, strings.Join(item.Tags, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d of %d resources\n", len(view.Items), view.Total)
	return err
}
