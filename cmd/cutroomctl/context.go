package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"cutroom/internal/config"
	"cutroom/internal/repository/postgres"
	postgresMedia "cutroom/internal/repository/postgres/media"
	serviceAuth "cutroom/internal/service/auth"
	serviceMedia "cutroom/internal/service/media"
	"cutroom/internal/storage/blobfs"
)

// commandContext lazily builds the process configuration and service graph shared by subcommands
type commandContext struct {
	actorFlag   *string
	envFileFlag *string
	jsonFlag    *bool

	configOnce sync.Once
	config     *config.Config
	logger     *slog.Logger
	logCloser  io.Closer
	configErr  error

	pool     *pgxpool.Pool
	services *serviceMedia.Services
}

func newCommandContext(actorFlag, envFileFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		actorFlag:   actorFlag,
		envFileFlag: envFileFlag,
		jsonFlag:    jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if path := strings.TrimSpace(*c.envFileFlag); path != "" {
			if err := godotenv.Load(path); err != nil {
				c.configErr = fmt.Errorf("load env file %s: %w", path, err)
				return
			}
		} else {
			_ = godotenv.Load()
		}

		c.config = config.Load()
		var out io.Writer
		out, c.logCloser = config.SetupLogOutput(c.config, "cutroomctl")
		// The CLI prints results on stdout; logs only go to the rotated file when configured
		if c.config.LogDir == "" {
			out = io.Discard
		}
		c.logger = config.NewLogger(c.config, out)
	})
	return c.config, c.configErr
}

func (c *commandContext) actor() (string, error) {
	actor := strings.TrimSpace(*c.actorFlag)
	if actor == "" {
		return "", errors.New("--actor (or CUTROOM_ACTOR) is required for this command")
	}
	return actor, nil
}

func (c *commandContext) asJSON() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// openPool connects to the database named by DATABASE_URL
func (c *commandContext) openPool(ctx context.Context) (*pgxpool.Pool, error) {
	if c.pool != nil {
		return c.pool, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	c.pool = pool
	return pool, nil
}

// ensureServices wires the same service graph as the API server
func (c *commandContext) ensureServices(ctx context.Context) (*serviceMedia.Services, error) {
	if c.services != nil {
		return c.services, nil
	}
	pool, err := c.openPool(ctx)
	if err != nil {
		return nil, err
	}
	cfg := c.config

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(),
		Logger: c.logger,
	}

	blobStore, err := blobfs.NewOSStore(cfg.BlobRoot, cfg.BlobBaseURL)
	if err != nil {
		return nil, err
	}

	policy, err := serviceAuth.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}
	authorizer := serviceAuth.NewPolicyAuthorizer(policy,
		serviceAuth.NewRoleGate(postgresMedia.NewCollaboratorRepository(repoConfig), c.logger))

	c.services = serviceMedia.SetupServices(
		serviceMedia.Repositories{
			Folders:  postgresMedia.NewFolderRepository(repoConfig),
			Assets:   postgresMedia.NewAssetRepository(repoConfig),
			Versions: postgresMedia.NewVersionRepository(repoConfig),
		},
		blobStore,
		postgres.NewTransactionManager(pool, c.logger),
		postgres.NewAdvisoryLockManager(pool),
		authorizer,
		cfg,
		c.logger,
	)
	return c.services, nil
}

func (c *commandContext) close() {
	if c.pool != nil {
		c.pool.Close()
	}
	if c.logCloser != nil {
		c.logCloser.Close()
	}
}
