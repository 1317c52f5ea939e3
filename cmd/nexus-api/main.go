package main

import (
	"fmt"

	"go.uber.org/zap"

	httpadapter "github.com/nexuspro/nexus/internal/adapters/http"
	"github.com/nexuspro/nexus/internal/adapters/llm"
	"github.com/nexuspro/nexus/internal/adapters/storage/credfile"
	"github.com/nexuspro/nexus/internal/adapters/storage/memory"
	"github.com/nexuspro/nexus/internal/app/conversation"
	"github.com/nexuspro/nexus/internal/config"
	"github.com/nexuspro/nexus/internal/domain"
	"github.com/nexuspro/nexus/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		observability.Logger().Fatalw("invalid configuration", "error", err)
	}

	if cfg.Debug {
		observability.SetLogger(zap.Must(zap.NewDevelopment()).Sugar())
	}
	log := observability.Logger()
	defer log.Sync()

	credStore := credfile.NewStore(cfg.CredentialsFile)
	workspace := memory.NewWorkspaceStore()

	var svc *conversation.Service
	if cfg.UseMockLLM {
		log.Infow("using mock completion streamer")
		svc, err = conversation.NewService(llm.NewMockStreamer(), workspace, credStore)
	} else {
		factory := llm.NewFactory(llm.FactoryConfig{
			OpenAIBaseURL: cfg.OpenAIBaseURL,
			GroqBaseURL:   cfg.GroqBaseURL,
			GeminiAPIKey:  cfg.GeminiAPIKey,
			Timeout:       cfg.RequestTimeout,
		}, func() domain.Credentials {
			return svc.Credentials()
		})
		svc, err = conversation.NewService(factory, workspace, credStore)
	}
	if err != nil {
		log.Fatalw("initializing conversation service", "error", err)
	}

	// The workspace always opens with at least one session.
	svc.EnsureActiveSession()

	e := httpadapter.NewServer(svc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Infow("nexus API listening", "addr", addr)
	if err := e.Start(addr); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}
