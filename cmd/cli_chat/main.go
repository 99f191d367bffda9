package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"techmart-assistant/internal/config"
	"techmart-assistant/internal/domain"
	"techmart-assistant/internal/repository"
	"techmart-assistant/internal/service"
)

const cliUserID = "cli-user"

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	chat, products, err := newChatService(ctx, cfg.CatalogFile, logger)
	if err != nil {
		log.Fatalf("cargar catalogo: %v", err)
	}
	if products == 0 {
		fmt.Printf("Aviso: el catalogo %s esta vacio.\n", cfg.CatalogFile)
	}

	runREPL(ctx, chat, os.Stdin, os.Stdout)
}

// newChatService arma el asistente sobre el catalogo en archivo y sesiones en memoria.
func newChatService(ctx context.Context, catalogPath string, logger *zap.Logger) (*service.ChatService, int, error) {
	catalog, err := service.NewCatalogProvider(ctx, repository.NewFileCatalogRepository(catalogPath), logger)
	if err != nil {
		return nil, 0, err
	}
	chat := service.NewChatService(
		logger,
		catalog,
		service.NewIntentRouter(service.NewRandomSource()),
		service.NewResponseComposer(),
		service.NewSessionManager(repository.NewMemorySessionRepository()),
		service.NewMemorySessionLocker(),
	)
	return chat, catalog.Current().Len(), nil
}

func runREPL(ctx context.Context, chat *service.ChatService, in io.Reader, out io.Writer) {
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "===== TechMart Assistant =====")
	fmt.Fprintln(out, "Comandos: /sessions, /new, exit")

	var sessionID string
	for {
		fmt.Fprint(out, "> ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		input := strings.TrimSpace(line)
		switch strings.ToLower(input) {
		case "":
			continue
		case "exit", "quit":
			return
		case "/new":
			sessionID = ""
			fmt.Fprintln(out, "Nueva conversacion.")
			continue
		case "/sessions":
			printSessions(ctx, out, chat)
			continue
		}

		msg, id, err := chat.HandleMessage(ctx, cliUserID, sessionID, input)
		if err != nil && !errors.Is(err, service.ErrStoreUnavailable) {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if err != nil {
			fmt.Fprintln(out, "(aviso: la respuesta no se guardo)")
		}
		sessionID = id
		printReply(out, msg)
	}
}

func printReply(out io.Writer, msg domain.Message) {
	fmt.Fprintf(out, "\nAsistente: %s\n", msg.Content)
	for i, p := range msg.Products {
		fmt.Fprintf(out, "  %d. %s [%s] $%.2f (rating %.1f, stock %d)\n", i+1, p.Name, p.Category, p.Price, p.Rating, p.Stock)
	}
	fmt.Fprintln(out)
}

func printSessions(ctx context.Context, out io.Writer, chat *service.ChatService) {
	summaries, err := chat.ListSessions(ctx, cliUserID)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No hay conversaciones.")
		return
	}
	for _, s := range summaries {
		fmt.Fprintf(out, "- %s (%s): %s\n", s.ID, s.UpdatedAt.Format("2006-01-02 15:04"), s.LastMessage)
	}
}
