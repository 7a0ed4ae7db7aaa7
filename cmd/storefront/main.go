// Command storefront is a line-oriented shopping client. It is the "UI
// surface" stack: every cart command goes through the reconciler, so the
// shell itself never checks whether the user is logged in before acting on
// the cart.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/flipcart/storefront/internal/api"
	"github.com/flipcart/storefront/internal/auth"
	"github.com/flipcart/storefront/internal/cart"
	"github.com/flipcart/storefront/internal/config"
	"github.com/flipcart/storefront/internal/logging"
	"github.com/flipcart/storefront/internal/models"
	"github.com/flipcart/storefront/internal/pubsub"
	"github.com/flipcart/storefront/internal/state"
)

type app struct {
	auth *auth.Service
	cart *cart.Service
	api  *api.Client
	bus  *pubsub.Bus
}

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	if err := os.MkdirAll(filepath.Dir(cfg.StatePath), 0o755); err != nil {
		log.Error("create state dir", "error", err)
		os.Exit(1)
	}
	st, err := state.Open(cfg.StatePath, log)
	if err != nil {
		log.Error("open local state", "error", err)
		os.Exit(1)
	}

	bus := pubsub.NewBus()
	client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, log)
	a := &app{
		auth: auth.NewService(st, client, bus, log),
		cart: cart.NewService(st, client, bus, log),
		api:  client,
		bus:  bus,
	}

	// The badge: an independent surface that re-derives its own count on
	// every cart change instead of being handed one.
	bus.Subscribe(func(e pubsub.Event) {
		if e != pubsub.CartChanged {
			return
		}
		if n, err := a.cart.Count(context.Background()); err == nil {
			fmt.Printf("[cart: %d]\n", n)
		}
	})
	bus.Subscribe(func(e pubsub.Event) {
		if e == pubsub.SessionExpired {
			fmt.Println("your session expired, you are browsing as a guest now")
		}
	})

	fmt.Println("storefront — type 'help' for commands")
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			return
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		args := strings.Fields(line)
		if args[0] == "quit" || args[0] == "exit" {
			return
		}
		if err := a.run(context.Background(), args); err != nil {
			printErr(err)
		}
	}
}

func printErr(err error) {
	if apiErr, ok := api.AsError(err); ok && len(apiErr.Fields) > 0 {
		for field, msgs := range apiErr.Fields {
			fmt.Printf("error: %s: %s\n", field, strings.Join(msgs, "; "))
		}
		return
	}
	fmt.Println("error:", err)
}

func (a *app) run(ctx context.Context, args []string) error {
	switch args[0] {
	case "help":
		a.help()
		return nil
	case "products":
		return a.listProducts(ctx, api.ProductQuery{Search: strings.Join(args[1:], " ")})
	case "category":
		if len(args) < 2 {
			return errors.New("usage: category <name>")
		}
		return a.listProducts(ctx, api.ProductQuery{Category: args[1]})
	case "product":
		return a.showProduct(ctx, args[1:])
	case "add":
		return a.add(ctx, args[1:])
	case "cart":
		return a.showCart(ctx)
	case "qty":
		return a.setQuantity(ctx, args[1:])
	case "remove":
		return a.remove(ctx, args[1:])
	case "clear":
		return a.cart.Clear(ctx)
	case "checkout":
		return a.checkout(ctx, args[1:])
	case "orders":
		return a.listOrders(ctx)
	case "order":
		return a.showOrder(ctx, args[1:])
	case "login":
		return a.login(ctx, args[1:])
	case "register":
		return a.register(ctx, args[1:])
	case "logout":
		return a.auth.Logout(ctx)
	case "whoami":
		a.whoami()
		return nil
	case "profile":
		return a.profile(ctx, args[1:])
	case "sell":
		return a.sell(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q, try 'help'", args[0])
	}
}

func (a *app) help() {
	fmt.Print(`commands:
  products [search terms]        list or search the catalog
  category <name>                list one category
  product <id>                   show one product
  add <product-id> [qty]         add to cart
  cart                           show the cart
  qty <product-id> <n>           change a quantity (0 removes)
  remove <product-id>            remove from cart
  clear                          empty the cart
  checkout [payment] [address]   place an order (requires login)
  orders                         order history (requires login)
  order <id>                     show one order (requires login)
  login <username> <password>
  register <username> <email> <password>
  logout
  whoami
  profile [email <address>]      show, or update, the account (requires login)
  sell add <name> <price> <stock> [category]
  sell rm <product-id>
  quit
`)
}

func (a *app) listProducts(ctx context.Context, q api.ProductQuery) error {
	products, err := a.api.Products(ctx, q)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Println("no products found")
		return nil
	}
	for _, p := range products {
		fmt.Printf("%4d  %-30s  ₹%.2f  stock:%d  %s\n", p.ID, p.Name, float64(p.Price), p.Stock, p.Category)
	}
	return nil
}

func (a *app) showProduct(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: product <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return errors.New("product id must be a number")
	}
	p, err := a.api.Product(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("%s — ₹%.2f\n%s\ncategory: %s/%s  stock: %d  rating: %.1f\n",
		p.Name, float64(p.Price), p.Description, p.Category, p.Subcategory, p.Stock, p.Rating)
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: add <product-id> [qty]")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return errors.New("product id must be a number")
	}
	qty := 1
	if len(args) > 1 {
		if qty, err = strconv.Atoi(args[1]); err != nil {
			return errors.New("quantity must be a number")
		}
	}
	// The reconciler needs the product snapshot for the guest path.
	p, err := a.api.Product(ctx, id)
	if err != nil {
		return err
	}
	if err := a.cart.Add(ctx, p, qty); err != nil {
		return err
	}
	fmt.Printf("added %s\n", p.Name)
	return nil
}

func (a *app) showCart(ctx context.Context) error {
	v, err := a.cart.View(ctx)
	if err != nil {
		return err
	}
	if len(v.Lines) == 0 {
		fmt.Println("your cart is empty")
		return nil
	}
	for _, line := range v.Lines {
		fmt.Printf("%4d  %-30s  ₹%.2f x %d\n", line.Product.ID, line.Product.Name, float64(line.Product.Price), line.Quantity)
	}
	fmt.Printf("total: ₹%.2f (%d items)\n", v.Total, v.Count)
	return nil
}

func (a *app) setQuantity(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: qty <product-id> <n>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return errors.New("product id must be a number")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.New("quantity must be a number")
	}
	return a.cart.SetQuantity(ctx, id, n)
}

func (a *app) remove(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: remove <product-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return errors.New("product id must be a number")
	}
	return a.cart.Remove(ctx, id)
}

func (a *app) checkout(ctx context.Context, args []string) error {
	payment := "cod"
	address := ""
	if len(args) > 0 {
		payment = args[0]
	}
	if len(args) > 1 {
		address = strings.Join(args[1:], " ")
	}
	order, err := a.cart.Checkout(ctx, payment, address)
	if err != nil {
		return err
	}
	fmt.Printf("order #%d placed, total ₹%.2f\n", order.ID, float64(order.TotalPrice))
	return nil
}

func (a *app) listOrders(ctx context.Context) error {
	orders, err := a.api.Orders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("no orders yet")
		return nil
	}
	for _, o := range orders {
		fmt.Printf("#%-4d  %-10s  ₹%.2f  %d line(s)\n", o.ID, o.Status, float64(o.TotalPrice), len(o.Items))
	}
	return nil
}

func (a *app) showOrder(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: order <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return errors.New("order id must be a number")
	}
	o, err := a.api.Order(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("order #%d (%s) total ₹%.2f\n", o.ID, o.Status, float64(o.TotalPrice))
	for _, item := range o.Items {
		fmt.Printf("  %-30s  ₹%.2f x %d\n", item.Product.Name, float64(item.Price), item.Quantity)
	}
	return nil
}

// profile reads the account from the backend, unlike whoami's local copy,
// so it also shows edits made from another device.
func (a *app) profile(ctx context.Context, args []string) error {
	if len(args) >= 2 && args[0] == "email" {
		user, err := a.auth.UpdateProfile(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("email updated to %s\n", user.Email)
		return nil
	}
	if len(args) > 0 {
		return errors.New("usage: profile [email <address>]")
	}
	user, err := a.auth.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s> (%s)\n", user.Username, user.Email, user.Role)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: login <username> <password>")
	}
	sess, err := a.auth.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("welcome back, %s (%s)\n", sess.User.Username, sess.User.Role)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: register <username> <email> <password>")
	}
	user, err := a.auth.Register(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	fmt.Printf("account %s created, log in to continue\n", user.Username)
	return nil
}

func (a *app) whoami() {
	sess := a.auth.Current()
	if !sess.Authenticated() {
		fmt.Println("guest")
		return
	}
	fmt.Printf("%s <%s> (%s)\n", sess.User.Username, sess.User.Email, sess.User.Role)
}

func (a *app) sell(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: sell add|rm ...")
	}
	switch args[0] {
	case "add":
		if len(args) < 4 {
			return errors.New("usage: sell add <name> <price> <stock> [category]")
		}
		price, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return errors.New("price must be a number")
		}
		stock, err := strconv.Atoi(args[3])
		if err != nil {
			return errors.New("stock must be a number")
		}
		p := models.Product{Name: args[1], Price: models.Price(price), Stock: stock}
		if len(args) > 4 {
			p.Category = args[4]
		}
		created, err := a.api.CreateProduct(ctx, p)
		if err != nil {
			return err
		}
		fmt.Printf("listed %s as product %d\n", created.Name, created.ID)
		return nil
	case "rm":
		if len(args) < 2 {
			return errors.New("usage: sell rm <product-id>")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.New("product id must be a number")
		}
		return a.api.DeleteProduct(ctx, id)
	default:
		return fmt.Errorf("unknown sell command %q", args[0])
	}
}
