package main

import (
	"context"
	"fmt"
	"os"

	"github.com/AlibekovAA/nexus-admin/backend/internal/common/bootstrap"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/nexus-admin/backend/internal/common/crypto"
	"github.com/AlibekovAA/nexus-admin/backend/internal/user/seed"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.NewSeedApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start seeder: %v\n", err)
		os.Exit(1)
	}
	defer app.Pool.Close()

	seeder := seed.NewSeeder(app.UserRepo, app.Hasher, commoncrypto.NewUUIDGenerator(), clock.NewRealClock(), app.Log)

	created, err := seeder.Run(ctx, seed.DefaultAccounts)
	if err != nil {
		app.Log.Errorf("seeding failed: %v", err)
		app.Pool.Close()
		os.Exit(1)
	}
	app.Log.Infof("database seeded: %d account(s) created", created)
}
