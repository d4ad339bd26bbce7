package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/alexwatever/wept/internal/adapter/outbound/cel"
	"github.com/alexwatever/wept/internal/domain/catalog"
	"github.com/alexwatever/wept/internal/port/inbound"
	"github.com/alexwatever/wept/internal/service"
)

type keyed interface{ Key() string }

// listOptions are the flags shared by every list command.
type listOptions struct {
	first    int
	after    string
	all      bool
	maxPages int
}

func (o *listOptions) register(c *cobra.Command) {
	c.Flags().IntVar(&o.first, "first", 0, "page size (default: catalog.page_size)")
	c.Flags().StringVar(&o.after, "after", "", "cursor of the page to start after")
	c.Flags().BoolVar(&o.all, "all", false, "load every page")
	c.Flags().IntVar(&o.maxPages, "max-pages", 0, "stop --all after this many pages (0 = no limit)")
	c.MarkFlagsMutuallyExclusive("after", "all")
}

// newListCmd builds "<entity> list". refine, when set, narrows the items
// before printing.
func newListCmd[T keyed](short string, reader func(*app) inbound.EntityReader[T], refine func(context.Context, []T) ([]T, error)) *cobra.Command {
	opts := &listOptions{}
	c := &cobra.Command{
		Use:   "list",
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				r := reader(a)

				if opts.all {
					l := service.NewEntityListLoader[T](r, opts.first)
					if err := l.LoadAll(ctx, opts.maxPages); err != nil {
						return err
					}
					page := l.Snapshot()
					a.logger.Debug("list loaded", "items", page.Len(), "has_more", l.HasMore())
					if refine != nil {
						var err error
						if page.Items, err = refine(ctx, page.Items); err != nil {
							return err
						}
					}
					return printResult(cmd.OutOrStdout(), page)
				}

				page, err := r.GetList(ctx, opts.first, opts.after)
				if err != nil {
					return err
				}
				if refine != nil {
					if page.Items, err = refine(ctx, page.Items); err != nil {
						return err
					}
				}
				return printResult(cmd.OutOrStdout(), page)
			})
		},
	}
	opts.register(c)
	return c
}

// newGetCmd builds "<entity> get SLUG".
func newGetCmd[T any](short string, reader func(*app) inbound.EntityReader[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "get SLUG",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				v, err := reader(a).GetBySlug(ctx, args[0])
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), v)
			})
		},
	}
}

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List or show blog posts",
}

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "List or show pages",
	Long: `List or show pages.

"pages get" accepts a slug or a nested URI such as about/team.`,
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List, show or search products",
	Long: `List, show or search products.

"products list --where" filters the fetched products with a CEL expression.
Available variables: name, slug, sku, kind, status, database_id, price,
has_price, price_text, regular_price, sale_price, on_sale, purchasable,
stock_status, stock_quantity (-1 when unknown) and in_stock.

Examples:
  wept products list --where 'on_sale && price < 20.0'
  wept products list --all --where 'glob(name, "*Mug*")'
  wept products search teapot`,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List or show product categories",
}

var (
	productsWhere    string
	categoryProducts int
	categoryAfter    string
	categoryAllPages bool
	categoryMaxPages int
)

func postReader(a *app) inbound.EntityReader[catalog.Post] { return a.posts }

func pageReader(a *app) inbound.EntityReader[catalog.Page] { return a.pages }

func productReader(a *app) inbound.EntityReader[catalog.Product] { return a.products }

func categoryReader(a *app) inbound.EntityReader[catalog.ProductCategory] { return a.categories }

// filterProducts applies --where.
func filterProducts(ctx context.Context, items []catalog.Product) ([]catalog.Product, error) {
	if productsWhere == "" {
		return items, nil
	}
	f, err := cel.NewProductFilter(productsWhere)
	if err != nil {
		return nil, err
	}
	return f.Filter(ctx, items)
}

var productsSearchCmd = &cobra.Command{
	Use:   "search TERM",
	Short: "Search products by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			res, err := a.products.SearchProducts(ctx, args[0])
			if err != nil {
				return err
			}
			if res.Items, err = filterProducts(ctx, res.Items); err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		})
	},
}

var categoryGetCmd = &cobra.Command{
	Use:   "get SLUG",
	Short: "Show a product category",
	Long: `Show a product category.

With --products N the category's products are included, N per page.
--all keeps loading product pages until the category is exhausted or
--max-pages pages have been fetched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
			slug := args[0]
			if categoryProducts <= 0 {
				if categoryAllPages || categoryAfter != "" || categoryMaxPages != 0 {
					return errors.New("--all, --after and --max-pages require --products")
				}
				cat, err := a.categories.GetBySlug(ctx, slug)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), cat)
			}

			if !categoryAllPages {
				cat, err := a.categories.GetWithProducts(ctx, slug, categoryProducts, categoryAfter)
				if err != nil {
					return err
				}
				return printResult(cmd.OutOrStdout(), cat)
			}

			l := service.NewCategoryProductsLoader(a.categories, slug, categoryProducts)
			if err := l.LoadAll(ctx, categoryMaxPages); err != nil {
				return err
			}
			cat, _ := l.Category()
			if cat.Products != nil {
				a.logger.Debug("category products loaded", "slug", slug, "products", cat.Products.Len(), "has_more", l.HasMore())
			}
			return printResult(cmd.OutOrStdout(), cat)
		})
	},
}

func init() {
	postsCmd.AddCommand(
		newListCmd("List blog posts", postReader, nil),
		newGetCmd("Show a blog post", postReader),
	)
	pagesCmd.AddCommand(
		newListCmd("List pages", pageReader, nil),
		newGetCmd("Show a page", pageReader),
	)

	productsList := newListCmd("List products", productReader, filterProducts)
	productsList.Flags().StringVar(&productsWhere, "where", "", "CEL filter applied to the fetched products")
	productsSearchCmd.Flags().StringVar(&productsWhere, "where", "", "CEL filter applied to the results")
	productsCmd.AddCommand(
		productsList,
		newGetCmd("Show a product", productReader),
		productsSearchCmd,
	)

	categoryGetCmd.Flags().IntVar(&categoryProducts, "products", 0, "include this many products per page")
	categoryGetCmd.Flags().StringVar(&categoryAfter, "after", "", "product cursor to start after")
	categoryGetCmd.Flags().BoolVar(&categoryAllPages, "all", false, "load every product page")
	categoryGetCmd.Flags().IntVar(&categoryMaxPages, "max-pages", 0, "stop --all after this many pages (0 = no limit)")
	categoryGetCmd.MarkFlagsMutuallyExclusive("after", "all")
	categoriesCmd.AddCommand(
		newListCmd("List product categories", categoryReader, nil),
		categoryGetCmd,
	)

	rootCmd.AddCommand(postsCmd, pagesCmd, productsCmd, categoriesCmd)
}
