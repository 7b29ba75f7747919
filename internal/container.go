// Package internal wires the application services through the DI container.
package internal

import (
	"go.uber.org/dig"

	"github.com/blefnk/dler/application"
	"github.com/blefnk/dler/config"
	"github.com/blefnk/dler/domain"
	"github.com/blefnk/dler/infrastructure/registry"
)

// RegisterProviders registers all constructors with the DIG container,
// bottom-up: config -> resolver -> services.
func RegisterProviders(container *dig.Container, cfg *config.Config) error {
	if err := container.Provide(func() *config.Config { return cfg }); err != nil {
		return err
	}
	if err := container.Provide(newResolver); err != nil {
		return err
	}
	if err := container.Provide(application.NewUpdateService); err != nil {
		return err
	}
	if err := container.Provide(application.NewCatalogService); err != nil {
		return err
	}
	return nil
}

func newResolver(cfg *config.Config) domain.Resolver {
	var opts []registry.Option
	if cfg.Registry.Token != "" {
		opts = append(opts, registry.WithToken(cfg.Registry.Token))
	}
	return registry.NewResolver(cfg.Registry.URL, opts...)
}

// InjectUpdateService builds the fully wired update service.
func InjectUpdateService(cfg *config.Config) *application.UpdateService {
	container := dig.New()

	if err := RegisterProviders(container, cfg); err != nil {
		panic(err)
	}

	var service *application.UpdateService
	if err := container.Invoke(func(s *application.UpdateService) {
		service = s
	}); err != nil {
		panic(err)
	}

	return service
}

// InjectCatalogService builds the fully wired catalog service.
func InjectCatalogService(cfg *config.Config) *application.CatalogService {
	container := dig.New()

	if err := RegisterProviders(container, cfg); err != nil {
		panic(err)
	}

	var service *application.CatalogService
	if err := container.Invoke(func(s *application.CatalogService) {
		service = s
	}); err != nil {
		panic(err)
	}

	return service
}
