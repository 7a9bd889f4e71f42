package commands

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"tagaudit/internal/collector"
	"tagaudit/internal/components/chrono"
	"tagaudit/internal/components/telemetry"
	"tagaudit/internal/export"
	"tagaudit/internal/posts"
	"tagaudit/internal/store"
	"tagaudit/internal/tumblr"

	"github.com/spf13/cobra"
)

var (
	collectMaxPages         *int
	collectIncludeOriginals *bool
)

func init() {
	collectMaxPages = collectCmd.Flags().Int("max-pages", -1, "Pages to fetch per tag, overrides max_pages from the config.")
	collectIncludeOriginals = collectCmd.Flags().Bool("include-originals", false, "Keep posts that were not reblogged from another blog.")
	rootCmd.AddCommand(collectCmd)
}

func newTumblrClient() (*tumblr.Client, error) {
	if config.ApiKey == "" {
		return nil, fmt.Errorf("api_key is not set in the config")
	}

	var output telemetry.MessageOutput
	if *dumpHttp != "" {
		fsOutput, err := telemetry.NewFilesystemOutput(*dumpHttp, tel)
		if err != nil {
			return nil, err
		}
		output = fsOutput
	}

	return tumblr.NewClient(tumblr.ClientOptions{
		BaseUrl:          config.BaseUrl,
		ApiKey:           config.ApiKey,
		CloudflareBypass: config.CloudflareBypass,
		MessageOutput:    output,
	}, tel)
}

var collectCmd = &cobra.Command{
	Use:   "collect [tags...]",
	Short: "Collects the posts of each tag (the config's tags when none are given), stores them and writes one CSV per tag.",
	RunE: func(cmd *cobra.Command, args []string) error {
		tagList := args
		if len(tagList) == 0 {
			tagList = config.Tags
		}
		if len(tagList) == 0 {
			return fmt.Errorf("nothing to collect: no tags were given")
		}

		maxPages := config.MaxPages
		if *collectMaxPages >= 0 {
			maxPages = *collectMaxPages
		}
		filter := posts.ReblogsOnly
		if config.IncludeOriginals || *collectIncludeOriginals {
			filter = posts.AllPosts
		}

		client, err := newTumblrClient()
		if err != nil {
			return fmt.Errorf("create tumblr client: %w", err)
		}
		database, err := config.Database.OpenDB()
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer database.Close()

		out := store.NewStore(database)
		c := collector.New(client, chrono.NewStandardImpl(), tel)

		for _, tag := range tagList {
			t1 := time.Now()
			result, err := c.Collect(cmd.Context(), collector.Request{
				Tag:      tag,
				MaxPages: maxPages,
				Filter:   filter,
			})
			if err != nil {
				return fmt.Errorf("collect %s: %w", tag, err)
			}
			if result.Empty {
				slog.Warn("no posts found", "tag", tag)
			}

			err = out.SaveRun(cmd.Context(), result)
			if err != nil {
				return fmt.Errorf("save run of %s: %w", tag, err)
			}
			path, err := writeFile(config.outputDir(), filenameFor(tag, ".csv"), func(w io.Writer) error {
				return export.WriteRecords(w, result.Records)
			})
			if err != nil {
				return fmt.Errorf("write records of %s: %w", tag, err)
			}

			slog.Info(
				"collected tag",
				"tag", tag,
				"run", result.RunId,
				"pages", result.Pages,
				"records", len(result.Records),
				"filtered", result.Filtered,
				"skipped", result.Skipped,
				"missing", result.Missing,
				"file", path,
				"seconds", time.Since(t1).Seconds(),
			)
		}
		return nil
	},
}
