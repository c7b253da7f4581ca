package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/pharma-portal/internal/models"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse the product catalog",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all products",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := cli.api.Products.List(cmd.Context())
		if err != nil {
			return err
		}
		return cli.print(out)
	},
}

var search models.SearchParams

var productsSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search products",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			search.Query = args[0]
		}
		out, err := cli.api.Products.Search(cmd.Context(), search)
		if err != nil {
			return err
		}
		return cli.print(out)
	},
}

var productsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		out, err := cli.api.Products.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return cli.print(out)
	},
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show or change the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := cli.storefront.FetchCart(cmd.Context())
		if err != nil {
			return err
		}
		return cli.print(out)
	},
}

var cartQuantity int

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		out, err := cli.storefront.AddToCart(cmd.Context(), models.AddToCartRequest{ProductID: id, Quantity: cartQuantity})
		if err != nil {
			return err
		}
		return cli.print(out)
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		out, err := cli.storefront.RemoveFromCart(cmd.Context(), id)
		if err != nil {
			return err
		}
		return cli.print(out)
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := cli.storefront.ClearCart(cmd.Context())
		if err != nil {
			return err
		}
		return cli.print(out)
	},
}

var checkout models.CheckoutRequest

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for the cart contents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := cli.storefront.Checkout(cmd.Context(), checkout)
		if err != nil {
			return err
		}
		return cli.print(out)
	},
}

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "Show bookmarked products",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := cli.storefront.FetchWishlist(cmd.Context())
		if err != nil {
			return err
		}
		return cli.print(out)
	},
}

var bookmarksAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Bookmark a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		out, err := cli.storefront.AddBookmark(cmd.Context(), id)
		if err != nil {
			return err
		}
		return cli.print(out)
	},
}

var bookmarksRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		out, err := cli.storefront.RemoveBookmark(cmd.Context(), id)
		if err != nil {
			return err
		}
		return cli.print(out)
	},
}

func init() {
	productsSearchCmd.Flags().StringVar(&search.Category, "category", "", "category slug")
	productsSearchCmd.Flags().IntVar(&search.Page, "page", 0, "page number")
	productsSearchCmd.Flags().IntVar(&search.Limit, "limit", 0, "page size")
	productsSearchCmd.Flags().StringVar(&search.SortBy, "sort-by", "", "sort field")
	productsSearchCmd.Flags().StringVar(&search.SortOrder, "sort-order", "", "asc or desc")
	productsCmd.AddCommand(productsListCmd, productsSearchCmd, productsGetCmd)

	cartAddCmd.Flags().IntVarP(&cartQuantity, "quantity", "q", 1, "quantity")
	cartCmd.AddCommand(cartAddCmd, cartRemoveCmd, cartClearCmd)

	checkoutCmd.Flags().StringVar(&checkout.PaymentMethod, "payment", "card", "payment method")
	checkoutCmd.Flags().StringVar(&checkout.ShippingAddress, "ship-to", "", "shipping address")
	checkoutCmd.Flags().StringVar(&checkout.Notes, "notes", "", "order notes")

	bookmarksCmd.AddCommand(bookmarksAddCmd, bookmarksRemoveCmd)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
