package app

import (
	"context"

	"github.com/doeshing/aside/internal/infrastructure/azure"
	"github.com/doeshing/aside/internal/infrastructure/chat"
	"github.com/doeshing/aside/internal/infrastructure/config"
	"github.com/doeshing/aside/internal/infrastructure/transcript"
	"github.com/doeshing/aside/internal/pkg/logger"
	"github.com/doeshing/aside/internal/ports"
	"github.com/doeshing/aside/internal/services"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Session        *services.ChatSession
	Resolver       *services.CredentialResolver
	DoctorService  *services.DoctorService
	SettingsLoader *config.FileLoader
	Transcript     *transcript.SQLiteStore
	Logger         ports.Logger
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	loader := config.NewFileLoader("")
	settings, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)

	tokens, err := azure.NewCliTokenProvider()
	if err != nil {
		return nil, err
	}
	secrets := azure.NewVaultSecretStore(tokens.Credential())

	resolver := &services.CredentialResolver{
		Tokens:  tokens,
		Secrets: secrets,
		Logger:  log,
	}
	factory := chat.NewFactory(log)

	// A broken transcript database degrades to a session without history
	// instead of blocking chat entirely.
	store, err := transcript.NewSQLiteStore()
	var repo ports.TranscriptRepository
	if err != nil {
		log.Warn("transcript store unavailable", map[string]interface{}{"error": err.Error()})
		store = nil
	} else {
		repo = store
	}

	session := services.NewChatSession(settings, resolver, factory, repo, log)

	doctorService := &services.DoctorService{
		SettingsProvider: loader,
		Tokens:           tokens,
		Secrets:          secrets,
		Factory:          factory,
	}

	return &Container{
		Session:        session,
		Resolver:       resolver,
		DoctorService:  doctorService,
		SettingsLoader: loader,
		Transcript:     store,
		Logger:         log,
	}, nil
}
