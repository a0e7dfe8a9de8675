package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/pos-api/internal/interfaces/http"
	"github.com/jhoicas/pos-api/pkg/config"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// repos agrupa los puertos de persistencia del driver elegido.
type repos struct {
	products    repository.ProductRepository
	transitions repository.StockTransitionRepository
	orders      repository.OrderRepository
	returns     repository.ReturnRepository
	users       repository.UserRepository
	tx          inventory.TxRunner
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Str("stock_guard", cfg.Inventory.StockGuard).
		Str("ledger_mode", cfg.Inventory.LedgerMode).
		Msg("iniciando aplicación")

	ctx := context.Background()
	r, err := openRepos(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer r.close()

	coord := inventory.NewCoordinator(r.tx, r.products, r.transitions, inventory.Options{
		Guard:  inventory.StockGuard(cfg.Inventory.StockGuard),
		Ledger: inventory.LedgerMode(cfg.Inventory.LedgerMode),
	}, log.Component("inventory"))

	authUC := auth.NewAuthUseCase(r.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if cfg.App.StorageDriver == config.StorageDriverPostgres {
		if pwd := os.Getenv("SEED_ADMIN_PASSWORD"); pwd != "" {
			created, err := authUC.EnsureUser(ctx, "admin", pwd, entity.RoleAdmin)
			if err != nil {
				log.Fatal().Err(err).Msg("sembrar usuario admin")
			}
			if created {
				log.Info().Msg("usuario admin creado")
			}
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	// Swagger UI: http://localhost:<port>/docs
	if cfg.App.SwaggerEnabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "POS API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.App.StorageDriver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		ProductUC: usecase.NewProductUseCase(r.products, coord, log.Component("products")),
		OrderUC:   usecase.NewOrderUseCase(r.orders, coord, log.Component("orders")),
		ReturnUC:  usecase.NewReturnUseCase(r.returns, r.products, coord),
		LedgerUC:  inventory.NewLedgerUseCase(coord, r.transitions),
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openRepos(ctx context.Context, cfg *config.Config, log *logger.Logger) (*repos, error) {
	if cfg.App.StorageDriver == config.StorageDriverMemory {
		store, err := memory.NewSeeded(log.Component("memory"))
		if err != nil {
			return nil, err
		}
		return &repos{
			products:    store.Products(),
			transitions: store.Transitions(),
			orders:      store.Orders(),
			returns:     store.Returns(),
			users:       store.Users(),
			tx:          store.TxRunner(),
			close:       func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema verificado")
	}
	return &repos{
		products:    postgres.NewProductRepository(pool),
		transitions: postgres.NewStockTransitionRepository(pool),
		orders:      postgres.NewOrderRepository(pool),
		returns:     postgres.NewReturnRepository(pool),
		users:       postgres.NewUserRepository(pool),
		tx:          postgres.NewTxRunner(pool),
		close:       pool.Close,
	}, nil
}
