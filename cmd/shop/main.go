package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/fjod/pixelwick/internal/cart"
	"github.com/fjod/pixelwick/internal/logger"
	"github.com/rs/zerolog"
)

type CLI struct {
	API         string `arg:"--api,env:SHOP_API_URL" default:"http://localhost:3000" help:"storefront API base URL"`
	Storage     string `arg:"--storage,env:SHOP_STORAGE" default:"file" help:"where the session is kept: file, redis or memory"`
	StoragePath string `arg:"--storage-path,env:SHOP_STORAGE_PATH" help:"storage file, defaults to $XDG_DATA_HOME/pixelwick/storage.json"`
	RedisAddr   string `arg:"--redis-addr,env:SHOP_REDIS_ADDR" default:"localhost:6379"`
	Session     string `arg:"--session,env:SHOP_SESSION" default:"default" help:"session name for redis storage"`
	Debug       bool   `arg:"--debug" help:"debugging output"`

	Products *ProductsCmd `arg:"subcommand:products" help:"list the catalog"`
	Product  *ProductCmd  `arg:"subcommand:product" help:"show one product"`
	Cart     *CartCmd     `arg:"subcommand:cart" help:"show the cart"`
	Add      *ItemCmd     `arg:"subcommand:add" help:"add one unit of a product"`
	Remove   *ItemCmd     `arg:"subcommand:remove" help:"remove a product from the cart"`
	Inc      *ItemCmd     `arg:"subcommand:inc" help:"increase a quantity by one"`
	Dec      *ItemCmd     `arg:"subcommand:dec" help:"decrease a quantity by one"`
	Clear    *ClearCmd    `arg:"subcommand:clear" help:"empty the cart"`
	Checkout *CheckoutCmd `arg:"subcommand:checkout" help:"place an order for the cart"`
	Contact  *ContactCmd  `arg:"subcommand:contact" help:"send the contact form"`
	History  *HistoryCmd  `arg:"subcommand:history" help:"show orders and messages sent from this session"`
	Orders   *OrdersCmd   `arg:"subcommand:orders" help:"list every order on the server"`
}

func (CLI) Description() string {
	return "pixelwick: shop the Pixelwick candle store from the terminal"
}

func main() {
	args := &CLI{}
	parser, err := arg.NewParser(arg.Config{}, args)
	abort(parser, err)
	abort(parser, parser.Parse(os.Args[1:]))

	log, err := logger.New(logger.Config{Console: true, Debug: args.Debug}, os.Stderr)
	abort(parser, err)

	abort(parser, Run(context.Background(), parser, args, os.Stdout, log))
}

func abort(parser *arg.Parser, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, arg.ErrHelp):
		parser.WriteHelp(os.Stderr)
		os.Exit(0)
	case errors.Is(err, cart.ErrEmptyCart):
		fmt.Fprintln(os.Stderr, "Your cart is empty!")
		os.Exit(1)
	default:
		fmt.Fprint(os.Stderr, err, "\n")
		os.Exit(1)
	}
}

func Run(ctx context.Context, parser *arg.Parser, args *CLI, out io.Writer, log zerolog.Logger) error {
	if parser.Subcommand() == nil {
		parser.WriteHelp(out)
		return nil
	}

	s, err := newSession(ctx, args, out, log)
	if err != nil {
		return err
	}
	defer s.close()

	switch {
	case args.Products != nil:
		return args.Products.Run(ctx, s)
	case args.Product != nil:
		return args.Product.Run(ctx, s)
	case args.Cart != nil:
		return args.Cart.Run(ctx, s)
	case args.Add != nil:
		return args.Add.add(ctx, s)
	case args.Remove != nil:
		return args.Remove.remove(ctx, s)
	case args.Inc != nil:
		return args.Inc.step(ctx, s, true)
	case args.Dec != nil:
		return args.Dec.step(ctx, s, false)
	case args.Clear != nil:
		return args.Clear.Run(ctx, s)
	case args.Checkout != nil:
		return args.Checkout.Run(ctx, s)
	case args.Contact != nil:
		return args.Contact.Run(ctx, s)
	case args.History != nil:
		return args.History.Run(ctx, s)
	case args.Orders != nil:
		return args.Orders.Run(ctx, s)
	}
	return nil
}
