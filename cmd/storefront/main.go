package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/example/storefront/internal/addressbook"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/payment"
	"github.com/example/storefront/internal/services"
	"github.com/example/storefront/internal/storage"
)

// clientSession bundles the per-session components. Created at start, torn
// down on exit; nothing here is a package global.
type clientSession struct {
	cfg       *config.Config
	session   *auth.Session
	api       *services.Client
	cartStore *cart.Store
	sync      *cart.Synchronizer
	directory *addressbook.Directory
}

func newClientSession(cfg *config.Config) (*clientSession, error) {
	store, err := storage.Open(cfg.StoragePath)
	if err != nil {
		return nil, err
	}

	session := auth.NewSession(store)
	api := services.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, session)
	cartStore := cart.NewStore(store)
	sync := cart.NewSynchronizer(api, session, cfg.SyncDebounce)
	sync.Attach(cartStore)

	return &clientSession{
		cfg:       cfg,
		session:   session,
		api:       api,
		cartStore: cartStore,
		sync:      sync,
		directory: addressbook.NewDirectory(api),
	}, nil
}

func (s *clientSession) close() {
	s.sync.Flush(s.cartStore.Snapshot())
	s.sync.Stop()
}

func main() {
	cfg := config.Load()

	sess, err := newClientSession(cfg)
	if err != nil {
		log.Fatalf("session setup failed: %v", err)
	}
	defer sess.close()

	ctx := context.Background()
	sess.sync.SeedFromRemote(ctx, sess.cartStore)

	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	var cmdErr error
	switch args[0] {
	case "cart":
		cmdErr = runCart(sess, args[1:])
	case "addresses":
		cmdErr = runAddresses(ctx, sess)
	case "orders":
		cmdErr = runOrders(ctx, sess)
	case "checkout":
		cmdErr = runCheckout(ctx, sess, args[1:])
	default:
		usage()
		os.Exit(2)
	}

	if cmdErr != nil {
		log.Fatalf("%s failed: %v", args[0], cmdErr)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: storefront <cart|addresses|orders|checkout> [args]")
	fmt.Fprintln(os.Stderr, "  cart list")
	fmt.Fprintln(os.Stderr, "  cart add <product-id> <title> <price> [qty]")
	fmt.Fprintln(os.Stderr, "  cart remove <product-id>")
	fmt.Fprintln(os.Stderr, "  cart qty <product-id> <qty>")
	fmt.Fprintln(os.Stderr, "  addresses")
	fmt.Fprintln(os.Stderr, "  orders")
	fmt.Fprintln(os.Stderr, "  checkout -mode <cod|online> [-address <id>]")
}

func runCart(sess *clientSession, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		printCart(sess.cartStore.Snapshot())
		return nil
	case "add":
		if len(args) < 4 {
			return fmt.Errorf("cart add needs <product-id> <title> <price> [qty]")
		}
		price, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return fmt.Errorf("invalid price %q", args[3])
		}
		qty := 1
		if len(args) > 4 {
			if qty, err = strconv.Atoi(args[4]); err != nil {
				return fmt.Errorf("invalid quantity %q", args[4])
			}
		}
		sess.cartStore.Add(models.CartLine{ProductID: args[1], Title: args[2], UnitPrice: price}, qty)
		printCart(sess.cartStore.Snapshot())
		return nil
	case "remove":
		if len(args) < 2 {
			return fmt.Errorf("cart remove needs <product-id>")
		}
		sess.cartStore.Remove(args[1])
		printCart(sess.cartStore.Snapshot())
		return nil
	case "qty":
		if len(args) < 3 {
			return fmt.Errorf("cart qty needs <product-id> <qty>")
		}
		qty, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[2])
		}
		sess.cartStore.SetQuantity(args[1], qty)
		printCart(sess.cartStore.Snapshot())
		return nil
	default:
		return fmt.Errorf("unknown cart command %q", args[0])
	}
}

func printCart(snapshot models.Cart) {
	if snapshot.Empty() {
		fmt.Println("cart is empty")
		return
	}
	for _, l := range snapshot.Lines {
		fmt.Printf("%-20s %-30s x%d  %10.2f\n", l.ProductID, l.Title, l.Quantity, l.UnitPrice*float64(l.Quantity))
	}
	totals := cart.Calculate(snapshot)
	fmt.Printf("subtotal %.2f  shipping %.2f  tax %.2f  total %.2f\n",
		totals.Subtotal, totals.Shipping, totals.Tax, totals.Total)
}

func runAddresses(ctx context.Context, sess *clientSession) error {
	if err := sess.directory.Refresh(ctx); err != nil {
		return err
	}
	addresses := sess.directory.Addresses()
	if len(addresses) == 0 {
		fmt.Println("no saved addresses")
		return nil
	}
	selected := sess.directory.Selected()
	for _, a := range addresses {
		marker := " "
		if selected != nil && selected.ID == a.ID {
			marker = "*"
		}
		fmt.Printf("%s %s  %s %s, %s, %s %s %s\n", marker, a.ID, a.FirstName, a.LastName, a.Street, a.City, a.State, a.Pincode)
	}
	return nil
}

func runOrders(ctx context.Context, sess *clientSession) error {
	orders, err := sess.api.ListOrders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("no orders yet")
		return nil
	}
	for _, o := range orders {
		fmt.Printf("%-12s %-10s %-8s %10.2f\n", o.OrderNumber, o.Status, o.PaymentMode, o.Total)
	}
	return nil
}

func runCheckout(ctx context.Context, sess *clientSession, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	mode := fs.String("mode", models.PaymentCashOnDelivery, "payment mode: cod or online")
	addressID := fs.String("address", "", "saved address id (defaults to the selected address)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opener := payment.NewRedirectOpener(sess.cfg.PaymentCallback, func(url string) {
		fmt.Printf("complete payment at: %s\n", url)
	})
	flow := checkout.NewOrchestrator(sess.cartStore, sess.directory, sess.api, sess.session, opener)

	switch flow.Enter() {
	case checkout.SignalRequireLogin:
		return fmt.Errorf("login required before checkout")
	case checkout.SignalReturnToCart:
		return fmt.Errorf("cart is empty, add something first")
	}

	if err := sess.directory.Refresh(ctx); err != nil {
		return err
	}
	if *addressID != "" && !sess.directory.Select(*addressID) {
		return fmt.Errorf("no saved address with id %q", *addressID)
	}
	flow.UseSavedAddress()

	if err := flow.Submit(ctx, *mode); err != nil {
		for field, msg := range flow.FieldErrors() {
			fmt.Fprintf(os.Stderr, "  %s %s\n", field, msg)
		}
		return err
	}

	result := flow.Result()
	fmt.Printf("order %s placed, total %.2f\n", result.Order.OrderNumber, result.Order.Total)
	return nil
}
