package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/finbotdev/finbot/internal/bot"
	"github.com/finbotdev/finbot/internal/config"
	"github.com/finbotdev/finbot/internal/llm"
	"github.com/finbotdev/finbot/internal/logger"
	"github.com/finbotdev/finbot/internal/memory"
	"github.com/finbotdev/finbot/internal/store"
	"github.com/finbotdev/finbot/internal/tools"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		userID   string
		username string
	)

	cmd := &cobra.Command{
		Use:   "finbot",
		Short: "Interactive financial assistant",
		Long: `finbot starts an interactive chat session with the financial assistant.
Type messages in natural Indonesian; use /help for the command list.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), userID, username)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "local", "user id for this session")
	cmd.Flags().StringVar(&username, "name", "", "display name (defaults to user id)")
	return cmd
}

func runChat(ctx context.Context, userID, username string) error {
	_ = godotenv.Load()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if username == "" {
		username = userID
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	model, err := llm.NewClient(ctx, cfg.GeminiAPIKey, cfg.Model, cfg.ModelTimeout, log)
	if err != nil {
		return fmt.Errorf("creating model client: %w", err)
	}

	exporter, err := tools.NewExporter(cfg.ExportDir)
	if err != nil {
		return fmt.Errorf("creating exporter: %w", err)
	}

	var searcher tools.PriceSearcher
	if cfg.SearchURL != "" {
		searcher = tools.NewHTTPSearcher(cfg.SearchURL, cfg.SearchTimeout)
	}

	mem := memory.NewStore(cfg.HistoryWindow)
	core := bot.New(model, st, mem, exporter, searcher, log)

	fmt.Println("💰 FinancialBot siap! Ketik pesan, atau /help untuk bantuan.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			fmt.Println("Sampai jumpa! 👋")
			return nil
		case "/clear":
			mem.Clear(userID)
			fmt.Println("🧹 Riwayat percakapan dihapus.")
			continue
		case "/help":
			fmt.Println("Perintah: /clear (hapus riwayat), /quit (keluar), /help")
			fmt.Println("Selain itu, ngobrol aja dengan natural 😊")
			continue
		}

		reply := core.Process(ctx, userID, username, line)
		fmt.Println(reply.Text)
		if reply.ArtifactPath != "" {
			fmt.Printf("📎 File tersimpan di: %s\n", reply.ArtifactPath)
		}
	}
	return scanner.Err()
}
