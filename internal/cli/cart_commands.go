package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/stokai/internal/cart"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Inspect and change the mirrored shopping cart",
}

var cartListPage int

var cartListCmd = &cobra.Command{
	Use:   "list",
	Short: "Fetch the authoritative cart",
	RunE:  runCartList,
}

var (
	cartAddProduct string
	cartAddVariant string
	cartAddQty     int
)

var cartAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a product, merging quantity into an existing line",
	RunE:  runCartAdd,
}

var (
	cartUpdateItem string
	cartUpdateQty  int
)

var cartUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change a line's quantity",
	RunE:  runCartUpdate,
}

var cartRemoveItem string

var cartRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a line",
	RunE:  runCartRemove,
}

var couponCode string

var couponCmd = &cobra.Command{
	Use:   "coupon",
	Short: "Validate a coupon code against the current cart",
	RunE:  runCoupon,
}

func init() {
	cartListCmd.Flags().IntVar(&cartListPage, "page", 1, "cart page")

	cartAddCmd.Flags().StringVar(&cartAddProduct, "product", "", "product id")
	cartAddCmd.Flags().StringVar(&cartAddVariant, "variant", "", "product variant id")
	cartAddCmd.Flags().IntVar(&cartAddQty, "qty", 1, "quantity to add")
	_ = cartAddCmd.MarkFlagRequired("product")

	cartUpdateCmd.Flags().StringVar(&cartUpdateItem, "item", "", "cart item id")
	cartUpdateCmd.Flags().IntVar(&cartUpdateQty, "qty", 1, "new quantity")
	_ = cartUpdateCmd.MarkFlagRequired("item")

	cartRemoveCmd.Flags().StringVar(&cartRemoveItem, "item", "", "cart item id")
	_ = cartRemoveCmd.MarkFlagRequired("item")

	couponCmd.Flags().StringVar(&couponCode, "code", "", "coupon code")
	_ = couponCmd.MarkFlagRequired("code")

	cartCmd.AddCommand(cartListCmd, cartAddCmd, cartUpdateCmd, cartRemoveCmd)
	rootCmd.AddCommand(cartCmd, couponCmd)
}

func runCartList(cmd *cobra.Command, args []string) error {
	app, err := newEnv()
	if err != nil {
		return err
	}

	if err := app.cart.Fetch(cmd.Context(), cartListPage); err != nil {
		return err
	}
	printCart(app.cart)
	return nil
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	app, err := newEnv()
	if err != nil {
		return err
	}

	productID, err := uuid.Parse(cartAddProduct)
	if err != nil {
		return fmt.Errorf("invalid product id: %w", err)
	}

	var variantID *uuid.UUID
	if cartAddVariant != "" {
		id, err := uuid.Parse(cartAddVariant)
		if err != nil {
			return fmt.Errorf("invalid variant id: %w", err)
		}
		variantID = &id
	}

	if err := app.cart.AddToCart(cmd.Context(), productID, variantID, cartAddQty); err != nil {
		return err
	}
	printCart(app.cart)
	return nil
}

func runCartUpdate(cmd *cobra.Command, args []string) error {
	app, err := newEnv()
	if err != nil {
		return err
	}

	itemID, err := uuid.Parse(cartUpdateItem)
	if err != nil {
		return fmt.Errorf("invalid item id: %w", err)
	}

	if err := app.cart.UpdateItem(cmd.Context(), cart.UpdateRequest{ItemID: itemID, Quantity: cartUpdateQty}); err != nil {
		return err
	}
	printCart(app.cart)
	return nil
}

func runCartRemove(cmd *cobra.Command, args []string) error {
	app, err := newEnv()
	if err != nil {
		return err
	}

	itemID, err := uuid.Parse(cartRemoveItem)
	if err != nil {
		return fmt.Errorf("invalid item id: %w", err)
	}

	if err := app.cart.RemoveItem(cmd.Context(), itemID); err != nil {
		return err
	}
	printCart(app.cart)
	return nil
}

func runCoupon(cmd *cobra.Command, args []string) error {
	app, err := newEnv()
	if err != nil {
		return err
	}

	if err := app.cart.ValidateCoupon(cmd.Context(), couponCode); err != nil {
		return err
	}

	state := app.cart.State()
	if state.CouponValidation == nil {
		return nil
	}
	if state.CouponValidation.Valid {
		fmt.Printf("Coupon %s is valid: %s %.2f off. Apply it at checkout.\n",
			state.CouponValidation.Code,
			state.CouponValidation.DiscountType,
			state.CouponValidation.DiscountValue)
	} else {
		fmt.Printf("Coupon %s rejected: %s\n", state.CouponValidation.Code, state.CouponValidation.Message)
	}
	return nil
}

func printCart(store *cart.Store) {
	state := store.State()
	items := state.Items()
	if len(items) == 0 {
		fmt.Println("Cart is empty.")
		return
	}

	for _, item := range items {
		name := "(unknown product)"
		if item.Product != nil {
			name = item.Product.Name
		}
		if item.ProductVariant != nil {
			name = fmt.Sprintf("%s (%s)", name, item.ProductVariant.Label)
		}
		fmt.Printf("%s  x%d  %.2f  [%s]\n", name, item.Quantity, item.SubTotal, item.ID)
	}

	totals, authoritative := store.Totals()
	label := ""
	if !authoritative {
		label = " (estimated)"
	}
	fmt.Printf("Subtotal: %.2f\nTax%s: %.2f\nPayable: %.2f\n",
		totals.SubTotal, label, totals.TotalTax, totals.TotalPayable)
}
