package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"ai-diet-planner/internal/app"
	"ai-diet-planner/internal/config"
	"ai-diet-planner/internal/logging"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.AppEnv)

	ctx := context.Background()
	application, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer application.Close()

	if err := run(ctx, application.Commands(), cfg, os.Args[1], os.Args[2:]); err != nil {
		application.Close()
		logger.Fatal().Err(err).Str("command", os.Args[1]).Msg("command failed")
	}
}

func run(ctx context.Context, cmds *app.Commands, cfg *config.Config, name string, args []string) error {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	user := fs.String("user", "", "User id")
	date := fs.String("date", "", "Plan date (YYYY-MM-DD), defaults to today")

	switch name {
	case "chat":
		message := fs.String("message", "", "Message text; remaining arguments are used when empty")
		fs.Parse(args)
		if *message == "" {
			*message = strings.Join(fs.Args(), " ")
		}
		if *user == "" || *message == "" {
			return fmt.Errorf("usage: chat -user <id> -message <text> [-date YYYY-MM-DD]")
		}
		return cmds.Chat(ctx, *user, *message, *date)
	case "status":
		fs.Parse(args)
		if *user == "" {
			return fmt.Errorf("usage: status -user <id> [-date YYYY-MM-DD]")
		}
		return cmds.Status(ctx, *user, *date)
	case "confirm":
		token := fs.String("token", "", "Confirmation token")
		pendingID := fs.String("pending", "", "Pending plan id")
		fs.Parse(args)
		switch {
		case *user == "":
		case *token != "":
			return cmds.Confirm(ctx, *user, *token)
		case *pendingID != "":
			return cmds.ConfirmPending(ctx, *user, *pendingID)
		}
		return fmt.Errorf("usage: confirm -user <id> (-token <token> | -pending <id>)")
	case "modify":
		token := fs.String("token", "", "Confirmation token of the pending plan")
		unavailable := fs.String("unavailable", "", "Comma separated items to replace")
		available := fs.String("available", "", "Comma separated items to use instead")
		fs.Parse(args)
		if *user == "" || *token == "" {
			return fmt.Errorf("usage: modify -user <id> -token <token> -unavailable a,b [-available c,d]")
		}
		return cmds.Modify(ctx, *user, *token, splitList(*unavailable), splitList(*available))
	case "feedback":
		text := fs.String("text", "", "Feedback text; remaining arguments are used when empty")
		fs.Parse(args)
		if *text == "" {
			*text = strings.Join(fs.Args(), " ")
		}
		if *user == "" || strings.TrimSpace(*text) == "" {
			return fmt.Errorf("usage: feedback -user <id> -text <text> [-date YYYY-MM-DD]")
		}
		return cmds.Feedback(ctx, *user, *text, *date)
	case "summary":
		days := fs.Int("days", 7, "Number of days to summarize")
		fs.Parse(args)
		if *user == "" {
			return fmt.Errorf("usage: summary -user <id> [-days N]")
		}
		return cmds.Summary(ctx, *user, *days)
	case "usage":
		days := fs.Int("days", 7, "Number of days to report")
		fs.Parse(args)
		return cmds.Usage(ctx, *days)
	case "migrate":
		// Build has already applied migrations and ensured the schema.
		fmt.Println("Database schema is up to date.")
		return nil
	case "metrics-cleanup":
		days := fs.Int("days", cfg.MetricsRetentionDays, "Keep records for the last N days")
		fs.Parse(args)
		return cmds.MetricsCleanup(ctx, *days)
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", name)
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func printUsage() {
	fmt.Println("Usage: ai-diet-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  chat               Send a message to the assistant")
	fmt.Println("  status             Show the daily status and greeting")
	fmt.Println("  confirm            Confirm a pending plan")
	fmt.Println("  modify             Swap items in a pending plan")
	fmt.Println("  feedback           Record feedback on a day's plan")
	fmt.Println("  summary            Summarize recent feedback")
	fmt.Println("  usage              Show model token usage")
	fmt.Println("  migrate            Apply database migrations")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
