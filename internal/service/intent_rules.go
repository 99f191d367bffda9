package service

import (
	"fmt"
	"sort"
	"strings"

	"techmart-assistant/internal/domain"
)

const (
	RuleGreeting       = "greeting"
	RuleIPhoneEndorse  = "iphone_endorsement"
	RuleIPhone         = "iphone"
	RulePhotography    = "photography"
	RuleExplicitSearch = "explicit_search"
	RuleLaptop         = "laptop"
	RulePhone          = "phone"
	RuleHeadphones     = "headphones"
	RuleBudget         = "budget"
	RuleGaming         = "gaming"
	RuleCompare        = "compare"
	RuleHelp           = "help"
	RuleMore           = "more"
	RuleFallbackSearch = "fallback_search"
	RuleTerminal       = "terminal"
)

const (
	textGreeting       = "Hello! Welcome to TechMart! I'm here to help you find the perfect products. You can ask me about our electronics, search for specific items, or get recommendations. What are you looking for today?"
	textIPhoneEndorse  = "Yes, iPhones are excellent smartphones! They're known for their premium build quality, excellent cameras, long software support, and seamless ecosystem integration. Here are the iPhones we have available:"
	textIPhone         = "Here are the iPhones we have in stock:"
	textPhotography    = "For photography, I'd recommend these smartphones with excellent camera systems:"
	textSearchFound    = "I found %d products that might interest you:"
	textSearchEmpty    = "I couldn't find any products matching your search. Could you try different keywords? I have electronics like laptops, smartphones, headphones, and more!"
	textLaptop         = "Here are some great laptop options:"
	textPhone          = "Check out these popular smartphones:"
	textHeadphones     = "Here are some excellent headphone options:"
	textBudget         = "Here are some budget-friendly options:"
	textGaming         = "Here are some great gaming products:"
	textCompare        = "Here are some products you can compare:"
	textHelp           = "I can help you with:\n• Finding products by name or category\n• Getting price comparisons\n• Product recommendations\n• Technical specifications\n• Adding items to your cart\n\nJust tell me what you're looking for!"
	textMore           = "Here are some more products you might like:"
	textFallbackSearch = "Based on your message, here are some products that might interest you:"
	textTerminal       = "I'm not sure I understand exactly what you're looking for, but here are some popular products you might like:"
)

const budgetPriceCeiling = 500

// El orden de esta lista es parte del contrato: reordenar cambia el comportamiento.
func defaultIntentRules() []intentRule {
	return []intentRule{
		{
			name:    RuleGreeting,
			matches: func(m string) bool { return containsAny(m, "hello", "hi", "hey") },
			handle:  fixedText(textGreeting),
		},
		{
			name: RuleIPhoneEndorse,
			matches: func(m string) bool {
				return strings.Contains(m, "iphone") && containsAny(m, "good", "recommend", "best")
			},
			handle: func(_ *IntentRouter, c *CatalogIndex, _ string) (Reply, bool) {
				return Reply{Text: textIPhoneEndorse, Products: c.ByNameSubstring("iphone")}, true
			},
		},
		{
			name:    RuleIPhone,
			matches: func(m string) bool { return strings.Contains(m, "iphone") },
			handle: func(_ *IntentRouter, c *CatalogIndex, _ string) (Reply, bool) {
				iphones := c.ByNameSubstring("iphone")
				if len(iphones) == 0 {
					return Reply{}, false
				}
				return Reply{Text: textIPhone, Products: iphones}, true
			},
		},
		{
			name:    RulePhotography,
			matches: func(m string) bool { return containsAny(m, "photography", "camera", "photo") },
			handle: func(_ *IntentRouter, c *CatalogIndex, _ string) (Reply, bool) {
				var cameraPhones []domain.Product
				for _, p := range c.ByCategory("smartphones") {
					if hasCamera(p) {
						cameraPhones = append(cameraPhones, p)
					}
				}
				return Reply{Text: textPhotography, Products: firstN(cameraPhones, 3)}, true
			},
		},
		{
			name:    RuleExplicitSearch,
			matches: func(m string) bool { return containsAny(m, "search", "find", "looking for", "show me") },
			handle: func(_ *IntentRouter, c *CatalogIndex, utterance string) (Reply, bool) {
				results := SearchProducts(c, utterance)
				if len(results) == 0 {
					return Reply{Text: textSearchEmpty}, true
				}
				return Reply{
					Text:     fmt.Sprintf(textSearchFound, len(results)),
					Products: firstN(results, 5),
				}, true
			},
		},
		categoryRule(RuleLaptop, "laptops", textLaptop, "laptop", "computer"),
		categoryRule(RulePhone, "smartphones", textPhone, "phone", "smartphone"),
		categoryRule(RuleHeadphones, "headphones", textHeadphones, "headphone", "audio"),
		{
			name:    RuleBudget,
			matches: func(m string) bool { return containsAny(m, "price", "cost", "cheap", "budget") },
			handle: func(_ *IntentRouter, c *CatalogIndex, _ string) (Reply, bool) {
				var budget []domain.Product
				for _, p := range c.All() {
					if p.Price < budgetPriceCeiling {
						budget = append(budget, p)
					}
				}
				sort.SliceStable(budget, func(i, j int) bool {
					return budget[i].Price < budget[j].Price
				})
				return Reply{Text: textBudget, Products: firstN(budget, 3)}, true
			},
		},
		{
			name:    RuleGaming,
			matches: func(m string) bool { return containsAny(m, "gaming", "game") },
			handle: func(_ *IntentRouter, c *CatalogIndex, _ string) (Reply, bool) {
				var gaming []domain.Product
				for _, p := range c.All() {
					if isGamingProduct(p) {
						gaming = append(gaming, p)
					}
				}
				if len(gaming) == 0 {
					return Reply{}, false
				}
				return Reply{Text: textGaming, Products: firstN(gaming, 3)}, true
			},
		},
		sampleRule(RuleCompare, textCompare, 3, "compare", "vs", "versus"),
		{
			name:    RuleHelp,
			matches: func(m string) bool { return containsAny(m, "help", "what can you do") },
			handle:  fixedText(textHelp),
		},
		sampleRule(RuleMore, textMore, 4, "more"),
		{
			name:    RuleFallbackSearch,
			matches: func(string) bool { return true },
			handle: func(_ *IntentRouter, c *CatalogIndex, utterance string) (Reply, bool) {
				results := SearchProducts(c, utterance)
				if len(results) == 0 {
					return Reply{}, false
				}
				return Reply{Text: textFallbackSearch, Products: firstN(results, 3)}, true
			},
		},
		{
			name:    RuleTerminal,
			matches: func(string) bool { return true },
			handle: func(r *IntentRouter, c *CatalogIndex, _ string) (Reply, bool) {
				return r.terminalReply(c), true
			},
		},
	}
}

func fixedText(text string) func(*IntentRouter, *CatalogIndex, string) (Reply, bool) {
	return func(*IntentRouter, *CatalogIndex, string) (Reply, bool) {
		return Reply{Text: text}, true
	}
}

func categoryRule(name, category, text string, keywords ...string) intentRule {
	return intentRule{
		name:    name,
		matches: func(m string) bool { return containsAny(m, keywords...) },
		handle: func(_ *IntentRouter, c *CatalogIndex, _ string) (Reply, bool) {
			return Reply{Text: text, Products: firstN(c.ByCategory(category), 3)}, true
		},
	}
}

func sampleRule(name, text string, n int, keywords ...string) intentRule {
	return intentRule{
		name:    name,
		matches: func(m string) bool { return containsAny(m, keywords...) },
		handle: func(r *IntentRouter, c *CatalogIndex, _ string) (Reply, bool) {
			return Reply{Text: text, Products: sampleProducts(r.random, c.All(), n)}, true
		},
	}
}

func hasCamera(p domain.Product) bool {
	if strings.Contains(strings.ToLower(p.Description), "camera") {
		return true
	}
	for _, f := range p.Features {
		if strings.Contains(strings.ToLower(f), "camera") {
			return true
		}
	}
	return false
}

func isGamingProduct(p domain.Product) bool {
	name := strings.ToLower(p.Name)
	return strings.Contains(name, "gaming") ||
		strings.Contains(strings.ToLower(p.Description), "gaming") ||
		strings.Contains(name, "rog") ||
		strings.Contains(name, "predator")
}
