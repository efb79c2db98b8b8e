package main

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"notes-service/internal/model"
	"notes-service/internal/store"
	"notes-service/pkg/config"
	"notes-service/pkg/database"
	"notes-service/pkg/logger"
)

// Seeds the development database with two free-plan tenants and an admin
// and member account for each. Safe to run repeatedly.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger.InitLogger(cfg)
	log := logger.GetLogger()

	db, err := database.Initialize(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}

	st := store.NewGormStore(db)
	ctx := context.Background()

	tenants := []model.Tenant{
		{Name: "Acme Corporation", Slug: "acme", Plan: model.PlanFree},
		{Name: "Globex Corporation", Slug: "globex", Plan: model.PlanFree},
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password", zap.Error(err))
	}

	for i := range tenants {
		existing, err := st.FindTenantBySlug(ctx, tenants[i].Slug)
		switch {
		case err == nil:
			tenants[i] = *existing
			log.Info("Tenant already exists", zap.String("slug", tenants[i].Slug))
		case errors.Is(err, store.ErrTenantNotFound):
			if err := st.CreateTenant(ctx, &tenants[i]); err != nil {
				log.Fatal("Failed to create tenant", zap.String("slug", tenants[i].Slug), zap.Error(err))
			}
			log.Info("Tenant created", zap.String("slug", tenants[i].Slug))
		default:
			log.Fatal("Failed to look up tenant", zap.String("slug", tenants[i].Slug), zap.Error(err))
		}

		users := []model.User{
			{Email: "admin@" + tenants[i].Slug + ".test", Role: model.RoleAdmin, TenantID: tenants[i].ID},
			{Email: "user@" + tenants[i].Slug + ".test", Role: model.RoleMember, TenantID: tenants[i].ID},
		}
		for j := range users {
			users[j].Password = string(hashed)
			if err := st.CreateUser(ctx, &users[j]); err != nil {
				if errors.Is(err, store.ErrEmailTaken) {
					log.Info("User already exists", zap.String("email", users[j].Email))
					continue
				}
				log.Fatal("Failed to create user", zap.String("email", users[j].Email), zap.Error(err))
			}
			log.Info("User created",
				zap.String("email", users[j].Email),
				zap.String("role", string(users[j].Role)))
		}
	}

	log.Info("Database seeded successfully. Password for all accounts: password")
}
