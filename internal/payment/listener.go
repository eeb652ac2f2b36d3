package payment

import (
	"context"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/storefront/internal/models"
)

// RedirectOpener implements SessionOpener for a hosted-payment gateway. It
// hands the buyer a checkout URL and runs a loopback HTTP listener for the
// gateway's return redirect: /callback/authorised on success,
// /callback/cancelled on dismissal.
type RedirectOpener struct {
	addr    string
	launch  func(url string)
	results chan result
}

type result struct {
	outcome Outcome
	ref     string
}

// NewRedirectOpener builds an opener listening on addr. launch receives the
// hosted checkout URL; pass something that opens a browser, or a test hook.
func NewRedirectOpener(addr string, launch func(url string)) *RedirectOpener {
	return &RedirectOpener{
		addr:    addr,
		launch:  launch,
		results: make(chan result, 1),
	}
}

// Open starts the listener, launches the hosted checkout page, and waits for
// exactly one terminal redirect or context cancellation.
func (o *RedirectOpener) Open(ctx context.Context, order models.GatewayOrder) (Outcome, error) {
	app := fiber.New(fiber.Config{
		AppName:               "Storefront Payment Callback",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	o.register(app, order)

	errs := make(chan error, 1)
	go func() {
		if err := app.Listen(o.addr); err != nil {
			errs <- err
		}
	}()
	defer func() {
		if err := app.Shutdown(); err != nil {
			log.Printf("[Payment] callback listener shutdown: %v", err)
		}
	}()

	checkoutURL := fmt.Sprintf("http://%s/pay/%s", o.addr, order.ID)
	log.Printf("[Payment] opening payment session %s (%0.2f %s)", order.ID, order.Amount, order.Currency)
	if o.launch != nil {
		o.launch(checkoutURL)
	}

	select {
	case res := <-o.results:
		if res.outcome == OutcomeCancelled {
			return OutcomeCancelled, nil
		}
		log.Printf("[Payment] session %s authorised (ref %s)", order.ID, res.ref)
		return OutcomeSuccess, nil
	case err := <-errs:
		return OutcomeCancelled, fmt.Errorf("callback listener: %w", err)
	case <-ctx.Done():
		return OutcomeCancelled, ctx.Err()
	}
}

func (o *RedirectOpener) register(app *fiber.App, order models.GatewayOrder) {
	app.Get("/callback/authorised", func(c *fiber.Ctx) error {
		o.deliver(result{outcome: OutcomeSuccess, ref: c.Query("ref")})
		return c.JSON(fiber.Map{"success": true, "message": "payment recorded, you may close this window"})
	})

	app.Get("/callback/cancelled", func(c *fiber.Ctx) error {
		o.deliver(result{outcome: OutcomeCancelled})
		return c.JSON(fiber.Map{"success": true, "message": "payment cancelled"})
	})

	// Stand-in page for the gateway's hosted checkout; real deployments put
	// the gateway URL here and never serve this route.
	app.Get("/pay/:id", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"id":       order.ID,
				"amount":   order.Amount,
				"currency": order.Currency,
			},
		})
	})
}

// deliver forwards the first terminal outcome; duplicate redirects (reloads
// of the return page) are dropped.
func (o *RedirectOpener) deliver(res result) {
	select {
	case o.results <- res:
	default:
	}
}
