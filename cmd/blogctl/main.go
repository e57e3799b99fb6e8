// Command blogctl is the operator tool for the blog platform:
//
//	blogctl create-admin <username> <email>   seed an Admin account
//	blogctl upload-image <path>               push an image to object storage
//
// Admin accounts cannot be created through the public registration
// endpoints, so create-admin talks to the database directly.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"

	"github.com/dmitrijs2005/techblog/internal/logging"
	"github.com/dmitrijs2005/techblog/internal/netx"
	"github.com/dmitrijs2005/techblog/internal/server/auth"
	"github.com/dmitrijs2005/techblog/internal/server/config"
	"github.com/dmitrijs2005/techblog/internal/server/models"
	"github.com/dmitrijs2005/techblog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/techblog/internal/server/services"
)

var readPassword = term.ReadPassword

func usage() {
	fmt.Fprintln(os.Stderr, "usage: blogctl create-admin <username> <email>")
	fmt.Fprintln(os.Stderr, "       blogctl upload-image <path>")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	// Strip the subcommand so the config flag parser only sees its own flags.
	os.Args = os.Args[:1]
	cfg := config.LoadConfig()

	var err error
	switch cmd {
	case "create-admin":
		if len(args) != 2 {
			usage()
		}
		err = createAdmin(cfg, args[0], args[1])
	case "upload-image":
		if len(args) != 1 {
			usage()
		}
		err = uploadImage(cfg, args[0])
	default:
		usage()
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func createAdmin(cfg *config.Config, username, email string) error {
	password, err := promptPassword()
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	issuer, err := auth.NewIssuer([]byte(cfg.SecretKey), cfg.Issuer, cfg.Audience, cfg.AccessTokenValidityDuration)
	if err != nil {
		return err
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	guard := services.NewBruteForceGuard(db, rm, cfg)
	authSvc := services.NewAuthService(db, rm, issuer, guard, cfg, logger)

	id, err := authSvc.Register(context.Background(), services.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("creating admin account: %w", err)
	}

	fmt.Printf("admin account %q created (id %s)\n", username, id)
	return nil
}

func uploadImage(cfg *config.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	ctx := context.Background()
	imageSvc := services.NewImageService(cfg)

	key, url, err := imageSvc.PresignedUploadURL(ctx)
	if err != nil {
		return fmt.Errorf("requesting upload url: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if err := netx.PutToPresignedURL(ctx, url, data, contentType); err != nil {
		return fmt.Errorf("uploading image: %w", err)
	}

	fmt.Printf("uploaded %s as %s\n", path, key)
	return nil
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	first, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	fmt.Print("Repeat password: ")
	second, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	password := strings.TrimSpace(string(first))
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	if password != strings.TrimSpace(string(second)) {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}
