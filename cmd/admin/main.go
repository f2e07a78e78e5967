package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"civictriage/backend/internal/api/handler"
	"civictriage/backend/internal/complaint"
	"civictriage/backend/internal/config"
	"civictriage/backend/internal/lifecycle"
	"civictriage/backend/internal/models"
	"civictriage/backend/internal/stats"
	"civictriage/backend/internal/storage"

	"github.com/apex/log"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const usage = `Usage: admin <command> [args]

Commands:
  set-status <complaint_id> <status>
  add-department <name> <category> [contact_email] [contact_phone]
  issue-token <subject> [ttl_hours]
  stats
  performance`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	settings, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	command := os.Args[1]

	// issue-token не потребує бази даних
	if command == "issue-token" {
		if len(os.Args) < 3 {
			fmt.Println("Usage: admin issue-token <subject> [ttl_hours]")
			os.Exit(1)
		}
		ttl := settings.TokenTTL
		if len(os.Args) > 3 {
			hours, err := strconv.Atoi(os.Args[3])
			if err != nil || hours <= 0 {
				fmt.Println("Invalid ttl. Please provide a positive number of hours.")
				os.Exit(1)
			}
			ttl = time.Duration(hours) * time.Hour
		}
		token, err := handler.GenerateStaffToken([]byte(settings.JWTSecret), os.Args[2], ttl, time.Now())
		if err != nil {
			log.WithError(err).Fatal("failed to issue token")
		}
		fmt.Println(token)
		return
	}

	db, err := gorm.Open(postgres.Open(settings.PostgresDSN()), &gorm.Config{})
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}
	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI
	ctx := context.Background()

	switch command {
	case "set-status":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin set-status <complaint_id> <status>")
			os.Exit(1)
		}
		policy, err := lifecycle.ParsePolicy(settings.LifecyclePolicy)
		if err != nil {
			log.WithError(err).Fatal("invalid lifecycle policy")
		}
		status := models.Status(os.Args[3])
		if !status.Valid() {
			fmt.Printf("Unknown status %q.\n", os.Args[3])
			os.Exit(1)
		}
		c, err := complaint.NewService(storageSvc, policy).SetStatus(ctx, os.Args[2], status)
		if err != nil {
			log.WithError(err).Fatal("error updating complaint")
		}
		fmt.Printf("Complaint %s is now %s.\n", c.ID, c.Status)
	case "add-department":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin add-department <name> <category> [contact_email] [contact_phone]")
			os.Exit(1)
		}
		if err := addDepartment(ctx, storageSvc, os.Args[2:]); err != nil {
			log.WithError(err).Fatal("error adding department")
		}
	case "stats":
		summary, err := stats.NewEngine(storageSvc).Dashboard(ctx, time.Now())
		if err != nil {
			log.WithError(err).Fatal("error computing dashboard")
		}
		printJSON(summary)
	case "performance":
		report, err := stats.NewEngine(storageSvc).Report(ctx)
		if err != nil {
			log.WithError(err).Fatal("error computing performance")
		}
		printJSON(report)
	default:
		fmt.Println("Unknown command")
		fmt.Println(usage)
		os.Exit(1)
	}
}

func addDepartment(ctx context.Context, s storage.Storage, args []string) error {
	category := models.Category(args[1])
	if !category.Valid() {
		return fmt.Errorf("unknown category %q", args[1])
	}
	dept := &models.Department{Name: args[0], Category: category}
	if len(args) > 2 {
		email := args[2]
		dept.ContactEmail = &email
	}
	if len(args) > 3 {
		phone := args[3]
		dept.ContactPhone = &phone
	}
	if err := s.CreateDepartment(ctx, dept); err != nil {
		return err
	}
	fmt.Printf("Department %s (%s) created with id %s.\n", dept.Name, dept.Category, dept.ID)
	return nil
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.WithError(err).Fatal("failed to encode output")
	}
	fmt.Println(string(out))
}
