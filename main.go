package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	classifyx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/classify"
	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
	dispatchx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/dispatch"
	embeddingx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/embedding"
	faqx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/faq"
	orderx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/order"
	promptx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/prompt"
	refundx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/refund"
	respondx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/respond"
	retrievalx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/retrieval"
	statex "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/state"
	configx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/pkg/config"
	_ "github.com/kritsadas/Feastly-Hybrid-Support-Agent/pkg/logger/autoload"
	openaiclientx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/pkg/openaiclient"
	serverx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/server"
)

type AppConfig struct {
	// OrderSource selects "postgres" or "memory".
	OrderSource string `envconfig:"ORDER_SOURCE" split_words:"true" default:"memory"`
	// SessionStore selects "redis" or "memory".
	SessionStore string `envconfig:"SESSION_STORE" split_words:"true" default:"memory"`
	// FAQPath overrides the embedded FAQ corpus when set.
	FAQPath string `envconfig:"FAQ_PATH" split_words:"true"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("APP")

	openaiCfg := configx.MustNew[openaiclientx.Config]("OPENAI")
	sdkClient := openaiclientx.NewClient(*openaiCfg)

	embedCfg := configx.MustNew[embeddingx.Config]("EMBEDDING")
	embedder, err := embeddingx.NewOpenAIEmbedder(sdkClient, *embedCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init embedder")
	}

	engine, err := retrievalx.NewEngine(embedder, *configx.MustNew[retrievalx.Config]("RETRIEVAL"))
	if err != nil {
		log.Fatal().Err(err).Msg("init retrieval engine")
	}

	corpus, err := loadCorpus(appCfg.FAQPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load faq corpus")
	}
	if err := engine.Rebuild(ctx, corpus); err != nil {
		log.Fatal().Err(err).Msg("build faq index")
	}
	log.Info().Int("entries", engine.Size()).Msg("faq index ready")

	accessor, err := orderx.NewAccessor(newOrderSource(appCfg.OrderSource))
	if err != nil {
		log.Fatal().Err(err).Msg("init order accessor")
	}

	store := newSessionStore(appCfg.SessionStore)

	prompts := promptx.LoadPromptSet()

	classifier, err := classifyx.NewLLMClassifier(ctx, openaiCfg, prompts.Classifier)
	if err != nil {
		log.Fatal().Err(err).Msg("init classifier")
	}

	phraser, err := respondx.NewLLMPhraser(ctx, openaiCfg, prompts.Phraser)
	if err != nil {
		log.Fatal().Err(err).Msg("init phraser")
	}

	evaluator := refundx.NewEvaluator(*configx.MustNew[refundx.Config]("REFUND"))

	dispatcher, err := dispatchx.New(
		store,
		classifier,
		accessor,
		evaluator,
		engine,
		phraser,
		*configx.MustNew[dispatchx.Config]("DISPATCH"),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("init dispatcher")
	}

	srv := serverx.New(dispatcher, engine, accessor, *configx.MustNew[serverx.Config]("HTTP"))
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("http server stopped")
	}
}

func loadCorpus(path string) ([]contractx.FAQEntry, error) {
	if path != "" {
		return faqx.LoadFile(path)
	}
	return faqx.DefaultCorpus()
}

func newOrderSource(kind string) contractx.OrderSource {
	if kind == "postgres" {
		src, err := orderx.NewPostgresSource(*configx.MustNew[orderx.PostgresConfig]("POSTGRES"))
		if err != nil {
			log.Fatal().Err(err).Msg("init postgres order source")
		}
		return src
	}
	log.Info().Msg("using in-memory order source")
	return orderx.NewMemorySource(demoOrders())
}

func newSessionStore(kind string) statex.Store {
	if kind == "redis" {
		store, err := statex.NewUpstashRedisStore(*configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS"))
		if err != nil {
			log.Fatal().Err(err).Msg("init redis session store")
		}
		return store
	}
	log.Info().Msg("using in-memory session store")
	return statex.NewMemoryStore()
}

func demoOrders() []contractx.Order {
	now := time.Now().UTC()
	return []contractx.Order{
		{
			ID:           "FD123456789",
			Status:       contractx.OrderDelivered,
			PlacedAt:     now.Add(-3 * time.Hour),
			DeliveredAt:  timePtr(now.Add(-2 * time.Hour)),
			Amount:       28.50,
			RestaurantID: "rest_thai_01",
		},
		{
			ID:           "FD987654321",
			Status:       contractx.OrderOutForDelivery,
			PlacedAt:     now.Add(-30 * time.Minute),
			Amount:       42.00,
			RestaurantID: "rest_pizza_02",
		},
		{
			ID:           "FD555000111",
			Status:       contractx.OrderDelivered,
			PlacedAt:     now.Add(-50 * time.Hour),
			DeliveredAt:  timePtr(now.Add(-48 * time.Hour)),
			Amount:       15.75,
			RestaurantID: "rest_mex_03",
		},
		{
			ID:           "FD222333444",
			Status:       contractx.OrderCancelled,
			PlacedAt:     now.Add(-1 * time.Hour),
			Amount:       19.90,
			RestaurantID: "rest_sushi_04",
		},
	}
}

func timePtr(t time.Time) *time.Time { return &t }
