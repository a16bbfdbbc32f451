package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/solarsentinel/sentinel-api/internal/adapters/http"
	"github.com/solarsentinel/sentinel-api/internal/adapters/llm"
	"github.com/solarsentinel/sentinel-api/internal/adapters/nasa"
	memstore "github.com/solarsentinel/sentinel-api/internal/adapters/storage/memory"
	"github.com/solarsentinel/sentinel-api/internal/adapters/tle"
	"github.com/solarsentinel/sentinel-api/internal/app/conversation"
	"github.com/solarsentinel/sentinel-api/internal/app/dispatch"
	"github.com/solarsentinel/sentinel-api/internal/app/refresh"
	"github.com/solarsentinel/sentinel-api/internal/app/spacedata"
	"github.com/solarsentinel/sentinel-api/internal/config"
	"github.com/solarsentinel/sentinel-api/internal/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	// Generative backend: mock for local development, Gemini otherwise.
	var (
		llmClient domain.LLMClient
		err       error
	)
	if cfg.UseMockLLM {
		log.Println("[LLM] Using MOCK LLM client")
		llmClient = llm.NewMockLLM()
	} else {
		log.Println("[LLM] Using Gemini LLM client")
		llmClient, err = llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.ModelName)
		if err != nil {
			log.Fatalf("error initializing Gemini LLM client: %v", err)
		}
	}

	// Provider adapters. Credentials and base URLs are handed in once here;
	// adapters never read the environment themselves.
	nasaClient := nasa.NewClient(nasa.Config{
		APIKey:        cfg.NASAAPIKey,
		APODBaseURL:   cfg.APODBaseURL,
		ImagesBaseURL: cfg.ImagesBaseURL,
		DonkiBaseURL:  cfg.DonkiBaseURL,
	})
	tleClient := tle.NewClient(cfg.TLEBaseURL)

	dataSvc := spacedata.NewService(nasaClient, nasaClient, nasaClient, tleClient)
	dispatcher := dispatch.NewDispatcher(dataSvc)

	sessionStore := memstore.NewSessionStore()
	messageStore := memstore.NewMessageStore()

	convSvc := conversation.NewService(llmClient, sessionStore, messageStore, dispatcher)

	// Dashboard refresh: independent of the chat path, 5 minutes by default.
	scheduler := refresh.NewScheduler(cfg.RefreshInterval)
	scheduler.Register(refresh.KeyWeather, func(ctx context.Context) (any, error) {
		return dataSvc.CurrentImpacts(ctx, time.Time{}, time.Time{})
	})
	scheduler.Register(refresh.KeySatellites, func(ctx context.Context) (any, error) {
		return dataSvc.LatestSatellites(ctx, spacedata.MaxResults)
	})
	scheduler.Start(ctx)
	defer scheduler.Close()

	handler := httpadapter.NewServer(convSvc, scheduler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	log.Println("SolarSentinel API listening on port:", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
