// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

//go:build integration

package database_test

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/hytalab/hytalib/pkg/database"
	"github.com/hytalab/hytalib/pkg/errutil"
)

var _ = Describe("Postgres", Ordered, func() {
	var (
		ctx       context.Context
		cancel    context.CancelFunc
		container *postgres.PostgresContainer
		base      database.Config
	)

	BeforeAll(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 2*time.Minute)

		var err error
		container, err = postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("hytalib_test"),
			postgres.WithUsername("hytalib"),
			postgres.WithPassword("hytalib"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		connStr, err := container.ConnectionString(ctx)
		Expect(err).NotTo(HaveOccurred())
		u, err := url.Parse(connStr)
		Expect(err).NotTo(HaveOccurred())
		port, err := strconv.Atoi(u.Port())
		Expect(err).NotTo(HaveOccurred())

		base = database.NewBuilder().
			Kind(database.KindPostgres).
			Host(u.Hostname()).
			Port(port).
			Database("hytalib_test").
			User("hytalib").
			Password("hytalib").
			Property("sslmode", "disable").
			MaxPoolSize(4).
			MinIdle(1).
			ConnectionTimeout(10 * time.Second).
			Config()
	})

	AfterAll(func() {
		if container != nil {
			_ = container.Terminate(context.Background())
		}
		cancel()
	})

	It("opens a pool and runs queries", func() {
		db, err := database.Open(ctx, base, database.WithLogger(slog.New(slog.DiscardHandler)))
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()

		pg, ok := db.(*database.PostgresDB)
		Expect(ok).To(BeTrue())
		Expect(pg.Pool()).NotTo(BeNil())

		conn, err := pg.Conn(ctx)
		Expect(err).NotTo(HaveOccurred())
		defer conn.Release()

		var n int
		Expect(conn.QueryRow(ctx, "SELECT 41 + 1").Scan(&n)).To(Succeed())
		Expect(n).To(Equal(42))
		Expect(pg.Stats().MaxOpen).To(Equal(4))
	})

	It("fails fast on a wrong password", func() {
		cfg := base
		cfg.Password = "wrong"

		start := time.Now()
		_, err := database.OpenPostgres(ctx, cfg, database.WithLogger(slog.New(slog.DiscardHandler)))

		Expect(errutil.HasCode(err, database.CodeConnFailed)).To(BeTrue())
		Expect(time.Since(start)).To(BeNumerically("<", 5*time.Second))
	})
})
