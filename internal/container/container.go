// Package container builds the dependency injection graph.
package container

import (
	"lingo-load/internal/app"
	"lingo-load/internal/budget"
	"lingo-load/internal/compliance"
	"lingo-load/internal/config"
	"lingo-load/internal/db"
	"lingo-load/internal/glossary"
	"lingo-load/internal/handler"
	"lingo-load/internal/pipeline"
	"lingo-load/internal/router"
	"lingo-load/internal/store"
	"lingo-load/internal/throttle"
	"lingo-load/internal/translator"
	"lingo-load/internal/types"

	"go.uber.org/dig"
	"gorm.io/gorm"
)

// BuildContainer creates and configures the dig container with all providers.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []interface{}{
		config.NewManager,
		store.NewStore,
		db.NewDB,

		glossary.NewResolverFromDB,
		translator.LoadPoolFromDB,

		func(cm types.ConfigManager) *compliance.Gate {
			cc := cm.GetComplianceConfig()
			return compliance.NewGate(
				compliance.WithRegion(cc.Region),
				compliance.WithRequiredCertifications(cc.RequiredCertifications...),
				compliance.WithBannedPhrases(cc.BannedPhrases...),
			)
		},
		func(s store.Store, cm types.ConfigManager) *budget.Ledger {
			return budget.NewLedger(s, cm.GetBudgetConfig().DailyCapPerTenant)
		},
		func(s store.Store, cm types.ConfigManager) *throttle.Throttle {
			tc := cm.GetThrottleConfig()
			return throttle.New(s, tc.MaxConcurrent, int64(tc.TenantPerMinute))
		},
		func(database *gorm.DB) *translator.DBAuditSink {
			return translator.NewDBAuditSink(database)
		},
		func(pool []translator.Backend, gate *compliance.Gate, ledger *budget.Ledger, audit *translator.DBAuditSink) *translator.Router {
			return translator.NewRouter(pool, gate, ledger, audit)
		},
		func(resolver *glossary.Resolver, rt *translator.Router, th *throttle.Throttle, s store.Store, cm types.ConfigManager) *pipeline.Pipeline {
			return pipeline.NewPipeline(resolver, rt, th, s, nil, cm.GetPipelineConfig())
		},

		handler.NewServer,
		router.NewRouter,
		app.NewApp,
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}
