package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/thinkful-ei-panda/gage-thingful-server/internal/apperr"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/auth"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/model"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/repository"
	"github.com/thinkful-ei-panda/gage-thingful-server/internal/service"
)

type output struct {
	UserID   string  `json:"user_id"`
	UserName string  `json:"user_name"`
	ThingIDs []int64 `json:"thing_ids"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		userName    = flag.String("user-name", "demo", "User name to register")
		fullName    = flag.String("full-name", "Demo User", "Full name")
		password    = flag.String("password", os.Getenv("SEED_PASSWORD"), "Password (must satisfy the password policy)")
		things      = flag.Int("things", 3, "Number of things to create")
		migrate     = flag.Bool("migrate", true, "Apply migrations first")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if *password == "" {
		fmt.Fprintln(os.Stderr, "-password or SEED_PASSWORD is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *migrate {
		if err := repository.Migrate(ctx, *databaseURL); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	}

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	user, err := ensureUser(ctx, repo, *userName, *fullName, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	out := output{UserID: user.ID, UserName: user.UserName}
	for i := 1; i <= *things; i++ {
		thing := &model.Thing{
			Title:   fmt.Sprintf("Thing %d", i),
			Content: fmt.Sprintf("Seeded thing number %d.", i),
			Image:   fmt.Sprintf("https://loremflickr.com/750/300/landscape?random=%d", i),
			Author:  model.User{ID: user.ID},
		}
		if err := repo.CreateThing(ctx, thing); err != nil {
			fmt.Fprintln(os.Stderr, "create thing:", err)
			os.Exit(1)
		}
		review := &model.Review{
			Rating:  (i-1)%model.MaxRating + model.MinRating,
			Text:    "Seeded review.",
			ThingID: thing.ID,
			Author:  model.User{ID: user.ID},
		}
		if err := repo.CreateReview(ctx, review); err != nil {
			fmt.Fprintln(os.Stderr, "create review:", err)
			os.Exit(1)
		}
		out.ThingIDs = append(out.ThingIDs, thing.ID)
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("user %s (%s), things %v\n", out.UserName, out.UserID, out.ThingIDs)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// ensureUser registers userName through the normal registration path, or
// returns the existing account after checking the password.
func ensureUser(ctx context.Context, repo *repository.Repository, userName, fullName, password string) (*model.User, error) {
	hasher, err := auth.NewPasswordHasher(auth.AlgorithmBcrypt, 0)
	if err != nil {
		return nil, err
	}
	credentials := auth.NewCredentialStore(repo)
	users := service.NewUserService(repo, credentials, hasher, nil)

	user, err := users.Register(ctx, service.RegisterInput{
		FullName: fullName,
		UserName: userName,
		Password: password,
	})
	if err == nil {
		return user, nil
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindConflict {
		return nil, fmt.Errorf("register %s: %w", userName, err)
	}

	existing, err := credentials.FindByUserName(ctx, userName)
	if err != nil || existing == nil {
		return nil, fmt.Errorf("load %s: %w", userName, err)
	}
	if !hasher.Verify(password, existing.PasswordHash) {
		return nil, fmt.Errorf("user %s exists with a different password", userName)
	}
	return existing, nil
}
