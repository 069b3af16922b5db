// grantrole is the operator escape hatch over the role and credit
// tables: grant or revoke a role tag, or reset a user's free-credit
// allowance, addressing the user by id or email.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"viralgen/internal/domain"
	"viralgen/internal/infra"
	"viralgen/internal/sqlinline"
)

func main() {
	_ = godotenv.Load()

	var (
		idFlag     string
		emailFlag  string
		roleFlag   string
		revokeFlag bool
		resetFlag  bool
	)

	flag.StringVar(&idFlag, "id", "", "user ID to update (UUID)")
	flag.StringVar(&emailFlag, "email", "", "user email to update")
	flag.StringVar(&roleFlag, "role", "", "role tag to grant (admin, pro, user)")
	flag.BoolVar(&revokeFlag, "revoke", false, "revoke the role instead of granting it")
	flag.BoolVar(&resetFlag, "reset-usage", false, "reset the user's credits to the full allowance")
	flag.Parse()

	userID := strings.TrimSpace(idFlag)
	email := strings.TrimSpace(emailFlag)
	role := strings.TrimSpace(strings.ToLower(roleFlag))

	if userID == "" && email == "" {
		exitWithError(errors.New("either -id or -email must be provided"))
	}
	if role == "" && !resetFlag {
		exitWithError(errors.New("nothing to do: provide -role and/or -reset-usage"))
	}
	if role != "" && !domain.KnownRoleTag(domain.RoleTag(role)) {
		exitWithError(fmt.Errorf("unsupported role %q", role))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "grantrole").Logger()
	runner := infra.NewSQLRunner(pool, logger)

	var user struct {
		ID     string
		Email  string
		Banned bool
	}
	lookupCtx, cancelLookup := context.WithTimeout(context.Background(), 5*time.Second)
	var scanErr error
	if userID != "" {
		scanErr = runner.QueryRow(lookupCtx, sqlinline.QSelectUserByID, userID).Scan(&user.ID, &user.Email, &user.Banned)
	} else {
		scanErr = runner.QueryRow(lookupCtx, sqlinline.QSelectUserByEmail, email).Scan(&user.ID, &user.Email, &user.Banned)
	}
	cancelLookup()
	if scanErr != nil {
		exitWithError(fmt.Errorf("failed to load user: %w", scanErr))
	}

	opCtx, cancelOp := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelOp()

	if role != "" {
		query := sqlinline.QGrantRole
		verb := "granted"
		if revokeFlag {
			query = sqlinline.QRevokeRole
			verb = "revoked"
		}
		if _, err := runner.Exec(opCtx, query, user.ID, role); err != nil {
			exitWithError(fmt.Errorf("failed to update role: %w", err))
		}
		fmt.Printf("role %q %s for %s (%s)\n", role, verb, user.ID, user.Email)
	}

	if resetFlag {
		var remaining, maxCredits int
		row := runner.QueryRow(opCtx, sqlinline.QResetCredits, user.ID, domain.DefaultMaxCredits)
		if err := row.Scan(&remaining, &maxCredits); err != nil {
			exitWithError(fmt.Errorf("failed to reset usage: %w", err))
		}
		fmt.Printf("credits reset to %d/%d for %s (%s)\n", remaining, maxCredits, user.ID, user.Email)
	}

	rows, err := runner.Query(opCtx, sqlinline.QSelectRoles, user.ID)
	if err != nil {
		exitWithError(fmt.Errorf("failed to list roles: %w", err))
	}
	defer rows.Close()
	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			exitWithError(fmt.Errorf("failed to scan role: %w", err))
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		fmt.Println("current roles: none (free tier)")
	} else {
		fmt.Printf("current roles: %s\n", strings.Join(tags, ", "))
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
