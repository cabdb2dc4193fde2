// jobbigt board
//
// Terminal kanban client for the job-application board. Connects
// straight to the jobs store (PostgreSQL) and the change bus (Redis),
// resolves an identity, and hands the live record set to the TUI.
//
// Identity resolution, in order:
//   - BOARD_USER: a fixed, out-of-band identity (no auth service)
//   - a saved token from BOARD_TOKEN_FILE, resumed against AUTH_URL
//   - BOARD_EMAIL and BOARD_PASSWORD: credential login
//   - BOARD_GUEST=1: an anonymous guest session
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/ragnargulin/jobbigt/internal/board"
	"github.com/ragnargulin/jobbigt/internal/config"
	"github.com/ragnargulin/jobbigt/internal/db"
	"github.com/ragnargulin/jobbigt/internal/gateway"
	"github.com/ragnargulin/jobbigt/internal/session"
	"github.com/ragnargulin/jobbigt/internal/tui"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("BOARD_CONFIG"))
	if err != nil {
		log.Fatalf("[board] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[board] PostgreSQL: %v", err)
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("[board] Migrate: %v", err)
	}

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[board] Redis: %v", err)
	}
	defer rdb.Close()

	provider, err := resolveIdentity(ctx, cfg)
	if err != nil {
		log.Fatalf("[board] Sign-in: %v", err)
	}
	if id, _ := provider.Current(); id == nil {
		log.Fatal("[board] No identity. Set BOARD_USER, BOARD_EMAIL/BOARD_PASSWORD or BOARD_GUEST=1.")
	}

	notices := tui.NewNotices()
	confirm := tui.NewConfirm()
	ctrl := board.NewController(gateway.NewService(pool, rdb), notices, confirm)
	defer ctrl.Close()
	ctrl.OnSnapshot(notices.Forward)

	m := tui.NewModel(ctrl, provider, confirm, tui.NewTheme(cfg.DarkMode))
	p := tea.NewProgram(m, tea.WithAltScreen())
	notices.SetProgram(p)

	if _, err := p.Run(); err != nil {
		log.Fatalf("[board] TUI error: %v", err)
	}
}

// resolveIdentity signs in before the TUI starts, so the board never
// renders in a half-authenticated state.
func resolveIdentity(ctx context.Context, cfg *config.Config) (session.Provider, error) {
	if uid := os.Getenv("BOARD_USER"); uid != "" {
		return &session.Static{ID: &session.Identity{UID: uid}}, nil
	}

	if cfg.AuthURL == "" {
		return nil, fmt.Errorf("AUTH_URL is required unless BOARD_USER is set")
	}
	client := session.NewClient(cfg.AuthURL)

	if cfg.TokenFile != "" {
		if b, err := os.ReadFile(cfg.TokenFile); err == nil {
			if err := client.Resume(ctx, string(b)); err != nil {
				return nil, fmt.Errorf("resume session: %w", err)
			}
			if id, _ := client.Current(); id != nil {
				return client, nil
			}
			// Saved token rejected; fall through to a fresh sign-in.
		}
	}

	email, password := os.Getenv("BOARD_EMAIL"), os.Getenv("BOARD_PASSWORD")
	switch {
	case email != "" && password != "":
		if err := client.Login(ctx, email, password); err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
	case os.Getenv("BOARD_GUEST") == "1":
		if err := client.LoginGuest(ctx); err != nil {
			return nil, fmt.Errorf("guest login: %w", err)
		}
	default:
		return client, nil
	}

	if cfg.TokenFile != "" {
		if err := os.WriteFile(cfg.TokenFile, []byte(client.Token()), 0o600); err != nil {
			log.Printf("[board] Could not save session token: %v", err)
		}
	}
	return client, nil
}
