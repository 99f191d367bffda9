package service

import (
	"strings"

	"techmart-assistant/internal/domain"
)

// Reply es la salida de una estrategia: texto y, opcionalmente, productos.
type Reply struct {
	Text     string
	Products []domain.Product
}

// intentRule es un par predicado/handler. handle devuelve false cuando la regla
// decide ceder el turno a las siguientes (sin resultados).
type intentRule struct {
	name    string
	matches func(msg string) bool
	handle  func(r *IntentRouter, catalog *CatalogIndex, utterance string) (Reply, bool)
}

// IntentRouter clasifica un mensaje recorriendo las reglas en orden; gana la primera que responde.
type IntentRouter struct {
	rules  []intentRule
	random RandomSource
}

func NewIntentRouter(random RandomSource) *IntentRouter {
	if random == nil {
		random = NewRandomSource()
	}
	return &IntentRouter{
		rules:  defaultIntentRules(),
		random: random,
	}
}

// Route nunca falla: la cascada termina siempre en la regla terminal.
// Devuelve tambien el nombre de la regla que respondio.
func (r *IntentRouter) Route(catalog *CatalogIndex, utterance string) (Reply, string) {
	msg := strings.ToLower(utterance)
	for _, rule := range r.rules {
		if !rule.matches(msg) {
			continue
		}
		if reply, ok := rule.handle(r, catalog, utterance); ok {
			return reply, rule.name
		}
	}
	return r.terminalReply(catalog), RuleTerminal
}

// RuleNames expone el orden efectivo de la cascada.
func (r *IntentRouter) RuleNames() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.name
	}
	return names
}

func (r *IntentRouter) terminalReply(catalog *CatalogIndex) Reply {
	return Reply{
		Text:     textTerminal,
		Products: sampleProducts(r.random, catalog.All(), 3),
	}
}

// SearchProducts es la busqueda libre: tokeniza el texto y consulta el indice.
func SearchProducts(catalog *CatalogIndex, text string) []domain.Product {
	return catalog.ByFreeText(Tokenize(text))
}

func containsAny(s string, list ...string) bool {
	for _, x := range list {
		if strings.Contains(s, x) {
			return true
		}
	}
	return false
}

func firstN(products []domain.Product, n int) []domain.Product {
	if len(products) > n {
		return products[:n]
	}
	return products
}
