package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/app"
	"github.com/km-arc/go-ioc/framework/container"
	gohttp "github.com/km-arc/go-ioc/framework/http"
	"github.com/km-arc/go-ioc/framework/routing"
)

// Greeter is the contract for the "greeter" service.
type Greeter interface {
	Greet(name string) string
}

type greeter struct{ greeting string }

func (g *greeter) Greet(name string) string { return g.greeting + ", " + name + "!" }

// AppServiceProvider registers the application's own services.
type AppServiceProvider struct{ container.BaseProvider }

func (p *AppServiceProvider) Register(app *container.Container) error {
	if err := app.SetImplementation("greeter", container.InterfaceOf[Greeter]()); err != nil {
		return err
	}
	if err := app.Set(container.NewFactory("greeter", func(inv *container.Invocation) (any, error) {
		return &greeter{greeting: inv.Options.String("greeting", "Hello")}, nil
	})); err != nil {
		return err
	}
	return app.Extend("welcome", "greeter")
}

func (p *AppServiceProvider) Boot(app *container.Container) error {
	router, err := container.Get[*routing.Router](app, "router")
	if err != nil {
		return err
	}

	// GET /hello/{name}?greeting=Hi
	router.Get("/hello/{name}", func(w http.ResponseWriter, r *http.Request) {
		req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)

		opts := container.Options{}
		if g := req.Query("greeting"); g != "" {
			opts["greeting"] = g
		}
		g, err := container.Get[Greeter](app, "welcome", opts)
		if err != nil {
			res.ServerError(err.Error())
			return
		}
		res.Success(map[string]any{"message": g.Greet(req.RouteParam("name"))})
	})
	return nil
}

func main() {
	application, err := app.New() // loads .env automatically
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	restore := container.SetDefault(application.Container)
	defer restore()

	if err := application.Register(&AppServiceProvider{}); err != nil {
		application.Logger().Fatal("register", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		application.Logger().Fatal("server error", zap.Error(err))
	}
}
