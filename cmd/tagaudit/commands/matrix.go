package commands

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"tagaudit/internal/export"
	"tagaudit/internal/posts"
	"tagaudit/internal/store"
	"tagaudit/internal/tags"

	"github.com/spf13/cobra"
)

var (
	matrixSeed      *[]string
	matrixSeedFile  *string
	matrixNoExtend  *bool
	matrixPrint     *bool
	matrixSimilar   *float64
	matrixOutputDir *string
)

func init() {
	matrixSeed = matrixCmd.Flags().StringSlice("seed", nil, "Tags that come first in the matrix, in order.")
	matrixSeedFile = matrixCmd.Flags().String("seed-file", "", "A file with one seed tag per line, read before --seed.")
	matrixNoExtend = matrixCmd.Flags().Bool("no-extend", false, "Only use the seed tags instead of adding every tag found in the records.")
	matrixPrint = matrixCmd.Flags().Bool("print", false, "Print the matrix as a table.")
	matrixSimilar = matrixCmd.Flags().Float64("similar", 0, "Print pairs of tags at least this similar (0 to 1), 0 disables.")
	matrixOutputDir = matrixCmd.Flags().String("out", "", "Where to write matrix.csv and edges.csv, defaults to output_dir from the config.")
	rootCmd.AddCommand(matrixCmd)
}

func readSeedFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var seed []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seed = append(seed, line)
	}
	return seed, scanner.Err()
}

var matrixCmd = &cobra.Command{
	Use:   "matrix [query tags...]",
	Short: "Builds the tag co-occurrence matrix of the stored records (of the given query tags, or all of them).",
	RunE: func(cmd *cobra.Command, args []string) error {
		var seed []string
		if *matrixSeedFile != "" {
			fromFile, err := readSeedFile(*matrixSeedFile)
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}
			seed = append(seed, fromFile...)
		}
		seed = append(seed, *matrixSeed...)

		database, err := config.Database.OpenDB()
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer database.Close()

		stored, err := store.NewStore(database).Records(cmd.Context(), args...)
		if err != nil {
			return fmt.Errorf("read records: %w", err)
		}
		records := posts.Distinct(stored)

		universe := tags.NewUniverse(seed...)
		if !*matrixNoExtend {
			universe = tags.Extend(universe, records)
		}
		if universe.Len() == 0 {
			return fmt.Errorf("nothing to build: no tags in seed or records")
		}

		matrix := tags.BuildMatrix(universe, tags.Aggregate(universe, records))

		dir := *matrixOutputDir
		if dir == "" {
			dir = config.outputDir()
		}
		matrixPath, err := writeFile(dir, "matrix.csv", func(w io.Writer) error {
			return export.WriteMatrix(w, matrix)
		})
		if err != nil {
			return fmt.Errorf("write matrix: %w", err)
		}
		edgesPath, err := writeFile(dir, "edges.csv", func(w io.Writer) error {
			return export.WriteEdges(w, matrix)
		})
		if err != nil {
			return fmt.Errorf("write edges: %w", err)
		}

		slog.Info(
			"built matrix",
			"records", len(records),
			"tags", universe.Len(),
			"edges", len(matrix.Edges()),
			"matrix", matrixPath,
			"edges_file", edgesPath,
		)

		if *matrixPrint {
			export.RenderMatrix(cmd.OutOrStdout(), matrix)
		}
		if *matrixSimilar > 0 {
			export.RenderSimilar(cmd.OutOrStdout(), tags.SimilarTags(universe, *matrixSimilar))
		}
		return nil
	},
}
