package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fjod/pixelwick/internal/apiclient"
	"github.com/fjod/pixelwick/internal/cart"
	"github.com/fjod/pixelwick/internal/domain"
	"github.com/shopspring/decimal"
)

type ProductsCmd struct{}

func (cmd *ProductsCmd) Run(ctx context.Context, s *session) error {
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return err
	}

	w := table(s.out)
	fmt.Fprintln(w, "ID\tNAME\tSCENT\tBURN TIME\tPRICE")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s %s\t%s\t%s\t$%s\n", p.ID, p.Image, p.Name, p.Scent, p.BurnTime, money(p.Price))
	}
	return w.Flush()
}

type ProductCmd struct {
	ID int64 `arg:"positional,required" help:"product id"`
}

func (cmd *ProductCmd) Run(ctx context.Context, s *session) error {
	p, err := s.api.GetProduct(ctx, cmd.ID)
	if apiclient.IsNotFound(err) {
		return fmt.Errorf("product %d not found", cmd.ID)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "%s %s\n%s\n\nScent: %s\nBurn time: %s\nPrice: $%s\n",
		p.Image, p.Name, p.Description, p.Scent, p.BurnTime, money(p.Price))
	return nil
}

type CartCmd struct{}

func (cmd *CartCmd) Run(ctx context.Context, s *session) error {
	return printCart(s.out, s.cart(ctx))
}

// ItemCmd backs every subcommand that takes a product id.
type ItemCmd struct {
	ID int64 `arg:"positional,required" help:"product id"`
}

func (cmd *ItemCmd) add(ctx context.Context, s *session) error {
	ok, err := s.cart(ctx).AddItem(ctx, cmd.ID)
	if err != nil {
		return err
	}
	if !ok {
		if err := s.catalog.load(); err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		return fmt.Errorf("product %d not found", cmd.ID)
	}
	return nil
}

func (cmd *ItemCmd) remove(ctx context.Context, s *session) error {
	c := s.cart(ctx)
	if err := c.RemoveItem(ctx, cmd.ID); err != nil {
		return err
	}
	return printCart(s.out, c)
}

func (cmd *ItemCmd) step(ctx context.Context, s *session, increase bool) error {
	c := s.cart(ctx)
	if err := c.SetQuantity(ctx, cmd.ID, increase); err != nil {
		return err
	}
	return printCart(s.out, c)
}

type ClearCmd struct{}

func (cmd *ClearCmd) Run(ctx context.Context, s *session) error {
	return s.cart(ctx).Clear(ctx)
}

type CheckoutCmd struct {
	Name    string `arg:"--name"`
	Email   string `arg:"--email"`
	Address string `arg:"--address"`
}

func (cmd *CheckoutCmd) Run(ctx context.Context, s *session) error {
	return placeOrder(ctx, s.out, s.cart(ctx), cmd.customerInfo())
}

// placeOrder prints the order id when the server accepted the order but the
// cart could not be cleared, so the same cart is not ordered twice.
func placeOrder(ctx context.Context, out io.Writer, c *cart.Cart, info json.RawMessage) error {
	receipt, err := c.Checkout(ctx, info)
	if err != nil && receipt.OrderID != 0 {
		fmt.Fprintf(out, "Order %d was placed (total $%s) but the cart could not be cleared. Do not check out again.\n",
			receipt.OrderID, receipt.Total.StringFixed(2))
	}
	return err
}

// customerInfo is nil when no field was given.
func (cmd *CheckoutCmd) customerInfo() json.RawMessage {
	info := map[string]string{}
	for k, v := range map[string]string{"name": cmd.Name, "email": cmd.Email, "address": cmd.Address} {
		if v != "" {
			info[k] = v
		}
	}
	if len(info) == 0 {
		return nil
	}
	raw, _ := json.Marshal(info)
	return raw
}

type ContactCmd struct {
	Name    string `arg:"--name"`
	Email   string `arg:"--email"`
	Subject string `arg:"--subject"`
	Message string `arg:"--message"`
}

func (cmd *ContactCmd) Run(ctx context.Context, s *session) error {
	req := domain.ContactRequest{Name: cmd.Name, Email: cmd.Email, Subject: cmd.Subject, Message: cmd.Message}
	if !req.Complete() {
		return errors.New("please fill in all fields")
	}

	if err := s.api.SubmitContact(ctx, req); err != nil {
		return err
	}

	rec := cart.ContactRecord{
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := cart.RecordContact(ctx, s.storage, rec); err != nil {
		s.log.Warn().Err(err).Msg("failed to record contact history")
	}

	fmt.Fprintln(s.out, "Message sent successfully! We'll get back to you soon.")
	return nil
}

type HistoryCmd struct{}

func (cmd *HistoryCmd) Run(ctx context.Context, s *session) error {
	orders, err := cart.Orders(ctx, s.storage)
	if err != nil {
		return err
	}
	contacts, err := cart.Contacts(ctx, s.storage)
	if err != nil {
		return err
	}

	w := table(s.out)
	fmt.Fprintln(w, "ORDER\tDATE\tITEMS\tTOTAL")
	for _, o := range orders {
		n := 0
		for _, li := range o.Items {
			n += li.Quantity
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t$%s\n", o.ID, o.Date.Format(time.RFC3339), n, money(o.Total))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "\n%d message(s) sent\n", len(contacts))
	for _, c := range contacts {
		fmt.Fprintf(s.out, "  %s  %s\n", c.Timestamp.Format(time.RFC3339), c.Subject)
	}
	return nil
}

type OrdersCmd struct{}

func (cmd *OrdersCmd) Run(ctx context.Context, s *session) error {
	orders, err := s.api.ListOrders(ctx)
	if err != nil {
		return err
	}

	w := table(s.out)
	fmt.Fprintln(w, "ORDER\tSTATUS\tPLACED\tLINES\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t$%s\n", o.ID, o.Status, o.Timestamp.Format(time.RFC3339), len(o.Items), money(o.Total))
	}
	return w.Flush()
}

func printCart(out io.Writer, c *cart.Cart) error {
	items := c.Items()
	if len(items) == 0 {
		_, err := fmt.Fprintln(out, "Your cart is empty")
		return err
	}

	w := table(out)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tQTY\tSUBTOTAL")
	for _, li := range items {
		fmt.Fprintf(w, "%d\t%s\t$%s\t%d\t$%s\n", li.ID, li.Name, money(li.Price), li.Quantity, li.Subtotal().StringFixed(2))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\nItems: %d  Total: $%s\n", c.TotalItems(), c.Total().StringFixed(2))
	return err
}

func table(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
