package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"techmart-assistant/internal/config"
	"techmart-assistant/internal/db"
	"techmart-assistant/internal/repository"
	"techmart-assistant/internal/service"
)

// Scenario describe una frase y la regla que deberia responderla con el catalogo configurado.
type Scenario struct {
	Name         string
	Utterance    string
	WantRule     string
	WantProducts bool
}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var catalogRepo repository.CatalogRepository = repository.NewFileCatalogRepository(cfg.CatalogFile)
	if cfg.CatalogSource == config.CatalogSourcePostgres {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			log.Fatalf("db pool: %v", err)
		}
		defer pool.Close()
		if err := db.Ping(ctx, pool); err != nil {
			log.Fatalf("db ping: %v", err)
		}
		catalogRepo = repository.NewPgCatalogRepository(pool)
	}

	catalog, err := service.NewCatalogProvider(ctx, catalogRepo, nil)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	router := service.NewIntentRouter(service.NewRandomSource())

	scenarios := []Scenario{
		{Name: "Saludo", Utterance: "Hello!", WantRule: service.RuleGreeting},
		{Name: "Recomendacion iPhone", Utterance: "Is the iPhone any good?", WantRule: service.RuleIPhoneEndorse, WantProducts: true},
		{Name: "Fotografia", Utterance: "I love photography", WantRule: service.RulePhotography, WantProducts: true},
		{Name: "Busqueda explicita", Utterance: "search for wireless", WantRule: service.RuleExplicitSearch, WantProducts: true},
		{Name: "Laptops", Utterance: "I need a laptop for work", WantRule: service.RuleLaptop, WantProducts: true},
		{Name: "Audio", Utterance: "good audio", WantRule: service.RuleHeadphones, WantProducts: true},
		{Name: "Presupuesto", Utterance: "cheap stuff", WantRule: service.RuleBudget, WantProducts: true},
		{Name: "Gaming", Utterance: "gaming gear", WantRule: service.RuleGaming, WantProducts: true},
		{Name: "Ayuda", Utterance: "what can you do", WantRule: service.RuleHelp},
		{Name: "Sin sentido", Utterance: "qwxz", WantRule: service.RuleTerminal, WantProducts: true},
	}

	passed := 0
	total := len(scenarios)

	fmt.Printf("Catalogo: %d productos\n\n", catalog.Current().Len())
	for _, sc := range scenarios {
		reply, rule := router.Route(catalog.Current(), sc.Utterance)
		hasProducts := len(reply.Products) > 0
		ok := rule == sc.WantRule && hasProducts == sc.WantProducts
		if ok {
			fmt.Printf("✅ PASS [%s] regla=%s productos=%d\n", sc.Name, rule, len(reply.Products))
			passed++
		} else {
			fmt.Printf("❌ FAIL [%s] esperado=%s/%t obtenido=%s/%t\n", sc.Name, sc.WantRule, sc.WantProducts, rule, hasProducts)
		}
	}

	fmt.Printf("\nEscenarios: %d/%d pasaron\n", passed, total)
	if passed != total {
		os.Exit(1)
	}
}
