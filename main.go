package main

import (
	"context"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"paybill-connector/domain/paybill"
	"paybill-connector/infrastructure/config"
	"paybill-connector/infrastructure/database"
	"paybill-connector/infrastructure/queue"
	"paybill-connector/infrastructure/service"
	"paybill-connector/infrastructure/workflow"
)

const defaultPort = "8080"

func main() {
	log.SetLevel(log.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	app := fiber.New(fiber.Config{
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          paybill.ErrorHandler,
		DisableStartupMessage: true,
		BodyLimit:             1 * 1024 * 1024,
	})

	var store paybill.ICorrelationStore
	if os.Getenv("REDIS_HOST") != "" {
		redisClient, err := database.NewRedis()
		if err != nil {
			log.Fatal(err)
		}
		store = paybill.NewRedisStore(redisClient, cfg.CorrelationTTL)
	} else {
		store = paybill.NewMemoryStore(cfg.CorrelationTTL)
	}

	db, err := database.NewPostgres()
	if err != nil {
		log.Fatal(err)
	}
	journal := paybill.NewTransferJournal(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := journal.EnsureSchema(ctx); err != nil {
		log.Fatal(err)
	}

	workflowQueue, err := queue.NewWorkflowQueue()
	if err != nil {
		log.Fatal(err)
	}
	defer workflowQueue.NatsConn.Close()

	workflowClient := workflow.NewClient(workflowQueue)
	switchClient := service.NewSwitchClient(cfg.SwitchBaseURL, cfg.SwitchTenantID)

	controller := paybill.NewController(
		paybill.NewRequestBuilder(cfg.Ams),
		service.NewChannelClient(),
		switchClient,
		paybill.NewDuplicateGuard(switchClient),
		paybill.NewLauncher(store, workflowClient, cfg.Ams, cfg.ProcessID, cfg.WaitPayRequestPeriod),
		paybill.NewAssembler(store),
		journal,
	)
	controller.InitRoutes(app)

	port := cfg.Port
	if port == "" {
		port = defaultPort
	}

	if err = app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
