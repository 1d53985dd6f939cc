package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"nexora/internal/catalog"
	"nexora/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
)

// productRow is the CSV layout of an exported product.
type productRow struct {
	ID        int64  `csv:"id"`
	Name      string `csv:"name"`
	Gender    string `csv:"gender"`
	Price     string `csv:"price"`
	OldPrice  string `csv:"old_price"`
	Image     string `csv:"image"`
	CreatedAt string `csv:"created_at"`
}

func toRows(products []models.Product) []*productRow {
	rows := make([]*productRow, 0, len(products))
	for _, p := range products {
		row := &productRow{
			ID:        p.ID,
			Name:      p.Name,
			Gender:    p.Gender,
			Price:     formatPrice(p.Price),
			Image:     p.Image,
			CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		}
		if p.OldPrice != nil {
			row.OldPrice = formatPrice(*p.OldPrice)
		}
		rows = append(rows, row)
	}
	return rows
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (c *cli) newProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "List, add, delete and export products",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(cmd); err != nil {
				return err
			}
			return c.requireSession()
		},
	}
	cmd.AddCommand(
		c.newProductsListCmd(),
		c.newProductsAddCmd(),
		c.newProductsDeleteCmd(),
		c.newProductsExportCmd(),
	)
	return cmd
}

func (c *cli) newProductsListCmd() *cobra.Command {
	var gender string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			cat := c.catalog()
			if err := cat.Load(ctx); err != nil {
				return err
			}
			return writeTable(c.out, cat.FilteredBy(gender))
		},
	}
	cmd.Flags().StringVar(&gender, "gender", catalog.FacetAll, "filter by gender (All, Male, Female, Unisex)")
	return cmd
}

func writeTable(out io.Writer, products []models.Product) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tGENDER\tPRICE\tOLD PRICE")
	for _, row := range toRows(products) {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", row.ID, row.Name, row.Gender, row.Price, row.OldPrice)
	}
	return w.Flush()
}

func (c *cli) newProductsAddCmd() *cobra.Command {
	var name, gender, price, oldPrice, image string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			form := catalog.NewAdminForm(c.catalog(), c.session)
			fields := []struct{ field, value string }{
				{catalog.FieldName, name},
				{catalog.FieldGender, gender},
				{catalog.FieldPrice, price},
				{catalog.FieldOldPrice, oldPrice},
				{catalog.FieldImage, image},
			}
			for _, f := range fields {
				if err := form.Set(f.field, f.value); err != nil {
					return err
				}
			}

			product, err := form.Submit(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Product added successfully (id %d)\n", product.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "product name")
	cmd.Flags().StringVar(&gender, "gender", "", "male, female or unisex")
	cmd.Flags().StringVar(&price, "price", "", "price")
	cmd.Flags().StringVar(&oldPrice, "old-price", "", "price before discount")
	cmd.Flags().StringVar(&image, "image", "", "image URL")
	return cmd
}

func (c *cli) newProductsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			if err := c.catalog().Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Product %d deleted\n", id)
			return nil
		},
	}
}

func (c *cli) newProductsExportCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export products as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			cat := c.catalog()
			if err := cat.Load(ctx); err != nil {
				return err
			}
			rows := toRows(cat.Products())

			if outPath == "" || outPath == "-" {
				return gocsv.Marshal(rows, c.out)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outPath, err)
			}
			defer f.Close()
			if err := gocsv.MarshalFile(&rows, f); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			fmt.Fprintf(c.out, "Exported %d products to %s\n", len(rows), outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}
