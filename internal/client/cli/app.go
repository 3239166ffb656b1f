package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/snipperhq/snipper-cli/internal/client/api"
	"github.com/snipperhq/snipper-cli/internal/client/config"
	"github.com/snipperhq/snipper-cli/internal/client/credstore"
	"github.com/snipperhq/snipper-cli/internal/client/services"
	"github.com/snipperhq/snipper-cli/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config   *config.Config
	session  services.SessionService
	snippets services.SnippetService
	reader   *bufio.Reader

	// loggingOut suppresses the session-expired notice while an explicit
	// logout tears the session down.
	loggingOut bool
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	logger := logging.NewText(os.Stderr, slog.LevelWarn)

	db, err := credstore.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("initializing credential store: %w", err)
	}

	store := credstore.NewSQLiteStore(db)
	clientID, err := store.ClientID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading client id: %w", err)
	}

	authClient := api.NewHTTPAuthClient(c.APIBaseURL, c.RequestTimeout)
	session := services.NewSessionService(authClient, store, logger)
	apiClient := api.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, session, clientID)
	snippets := services.NewSnippetService(apiClient)

	return &App{
		config:   c,
		session:  session,
		snippets: snippets,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Authenticated
}

// Run restores any cached session, then hands control to the REPL. The
// subscription prints a notice when the session drops to unauthenticated
// outside an explicit logout, e.g. when a refresh is rejected mid-command.
func (a *App) Run(ctx context.Context) {

	wasAuthenticated := false
	unsubscribe := a.session.Subscribe(func(snap services.Snapshot) {
		if snap.State == services.StateUnauthenticated && wasAuthenticated && !a.loggingOut {
			printlnFn("Your session has expired, please log in again.")
		}
		wasAuthenticated = snap.State == services.StateAuthenticated
	})
	defer unsubscribe()

	a.session.Initialize(ctx)

	if snap := a.session.Snapshot(); snap.Authenticated {
		fmt.Printf("Welcome back, %s!\n", snap.User.Username)
	} else {
		fmt.Println("Welcome to Snipper (type 'help' for commands)")
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) getStatus() string {
	snap := a.session.Snapshot()
	if snap.Authenticated {
		return fmt.Sprintf("(%s)", snap.User.Username)
	}
	return ""
}
