package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
)

func NewImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk load catalog data from CSV",
		Long: `Bulk load catalog data from CSV files.

Rows that already exist are skipped, so imports can be re-run safely.`,
	}

	cmd.AddCommand(newImportIngredientsCommand())
	cmd.AddCommand(newImportTagsCommand())

	return cmd
}

func newImportIngredientsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingredients",
		Short: "Import ingredients from name,measurement_unit rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readCSVFile(cmd, parseIngredients)
			if err != nil {
				return err
			}
			db, closeDB, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			created, err := service.NewCatalogService(db).ImportIngredients(cmd.Context(), items)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d ingredients\n", created, len(items))
			return nil
		},
	}
	addFileFlags(cmd)
	return cmd
}

func newImportTagsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Import tags from name,slug rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readCSVFile(cmd, parseTags)
			if err != nil {
				return err
			}
			db, closeDB, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			created, err := service.NewCatalogService(db).ImportTags(cmd.Context(), items)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d tags\n", created, len(items))
			return nil
		},
	}
	addFileFlags(cmd)
	return cmd
}

func addFileFlags(cmd *cobra.Command) {
	cmd.Flags().String("file", "", "path to the CSV file")
	cmd.Flags().Bool("header", false, "skip the first row")
	_ = cmd.MarkFlagRequired("file")
}

func readCSVFile[T any](cmd *cobra.Command, parse func(io.Reader, bool) ([]T, error)) ([]T, error) {
	path, _ := cmd.Flags().GetString("file")
	header, _ := cmd.Flags().GetBool("header")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return parse(f, header)
}

func parseIngredients(r io.Reader, header bool) ([]models.Ingredient, error) {
	var items []models.Ingredient
	err := eachRecord(r, header, func(line int, rec []string) error {
		name, unit := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		if name == "" || unit == "" {
			return fmt.Errorf("line %d: name and measurement unit are required", line)
		}
		items = append(items, models.Ingredient{Name: name, MeasurementUnit: unit})
		return nil
	})
	return items, err
}

func parseTags(r io.Reader, header bool) ([]models.Tag, error) {
	var items []models.Tag
	err := eachRecord(r, header, func(line int, rec []string) error {
		name, slug := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		if name == "" || slug == "" {
			return fmt.Errorf("line %d: name and slug are required", line)
		}
		items = append(items, models.Tag{Name: name, Slug: slug})
		return nil
	})
	return items, err
}

func eachRecord(r io.Reader, header bool, fn func(line int, rec []string) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	for line := 1; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if header && line == 1 {
			continue
		}
		if err := fn(line, rec); err != nil {
			return err
		}
	}
}
