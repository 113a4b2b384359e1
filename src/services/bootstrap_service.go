package services

import (
	"context"
	"errors"
	"fmt"

	"investmentapp/src/config"
	"investmentapp/src/models"
	"investmentapp/src/utils"

	"github.com/shopspring/decimal"
)

// SecretReader fetches a secret payload by id.
type SecretReader interface {
	GetSecretValue(ctx context.Context, secretID string) (string, error)
}

type devHolder struct {
	email, firstName, lastName string
	street, state, zipcode     string
	role                       string
}

const devPassword = "Hello1234!"

var devHolders = []devHolder{
	{"email@email.com", "Edward", "Barcenas", "123 Main St", "CA", "12345", models.RoleAdmin},
	{"janedoe@example.com", "Jane", "Doe", "456 Elm St", "NY", "10001", models.RoleAdmin},
	{"bobsmith@example.com", "Bob", "Smith", "789 Oak St", "TX", "75001", models.RoleUser},
	{"alicejohnson@example.com", "Alice", "Johnson", "987 Pine St", "FL", "33428", models.RoleUser},
	{"sambrown@example.com", "Sam", "Brown", "654 Cedar Ave", "IL", "60601", models.RoleUser},
}

var devInstruments = []models.Instrument{
	{Ticker: "AAPL", Name: "Apple Inc.", Price: decimal.RequireFromString("189.84"), Description: "Consumer electronics and software"},
	{Ticker: "MSFT", Name: "Microsoft Corporation", Price: decimal.RequireFromString("415.50"), Description: "Software and cloud services"},
	{Ticker: "GOOGL", Name: "Alphabet Inc.", Price: decimal.RequireFromString("171.95"), Description: "Search, advertising and cloud"},
	{Ticker: "AMZN", Name: "Amazon.com Inc.", Price: decimal.RequireFromString("183.63"), Description: "E-commerce and cloud infrastructure"},
	{Ticker: "TSLA", Name: "Tesla Inc.", Price: decimal.RequireFromString("177.29"), Description: "Electric vehicles and energy storage"},
	{Ticker: "NVDA", Name: "NVIDIA Corporation", Price: decimal.RequireFromString("903.63"), Description: "Graphics and accelerated computing"},
	{Ticker: "JPM", Name: "JPMorgan Chase & Co.", Price: decimal.RequireFromString("198.48"), Description: "Banking and financial services"},
}

type BootstrapService struct {
	holders     *HolderService
	instruments *InstrumentService
	secrets     SecretReader
}

// NewBootstrapService builds the startup seeder. secrets may be nil when no
// admin password is kept in a secret store.
func NewBootstrapService(holders *HolderService, instruments *InstrumentService, secrets SecretReader) *BootstrapService {
	return &BootstrapService{holders: holders, instruments: instruments, secrets: secrets}
}

// Run applies the bootstrap section of the config. It is safe to call on
// every startup.
func (s *BootstrapService) Run(ctx context.Context, cfg config.BootstrapConfig) error {
	if cfg.Admin {
		if err := s.EnsureAdmin(ctx, cfg); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}
	if cfg.SeedDevData {
		if err := s.SeedDevData(ctx); err != nil {
			return fmt.Errorf("seed dev data: %w", err)
		}
	}
	return nil
}

// EnsureAdmin creates the configured admin if missing and grants it
// ROLE_ADMIN.
func (s *BootstrapService) EnsureAdmin(ctx context.Context, cfg config.BootstrapConfig) error {
	if err := utils.ValidateEmail(cfg.AdminEmail); err != nil {
		return err
	}
	logger := utils.LoggerFromContext(ctx).WithField("email", cfg.AdminEmail)

	_, err := s.holders.resolver.ResolveHolderByEmail(ctx, cfg.AdminEmail, nil)
	switch {
	case err == nil:
		logger.Debug("admin already exists")
	case utils.IsNotFound(err):
		password, err := s.adminPassword(ctx, cfg)
		if err != nil {
			return err
		}
		hash, err := utils.HashPassword(password)
		if err != nil {
			return err
		}
		_, err = s.holders.Register(ctx, models.Holder{
			Email:        cfg.AdminEmail,
			FirstName:    "Admin",
			LastName:     "Admin",
			PasswordHash: hash,
		})
		if err != nil && !utils.IsConflict(err) {
			return err
		}
		logger.Info("admin created")
	default:
		return err
	}

	return s.holders.GrantRole(ctx, cfg.AdminEmail, models.RoleAdmin)
}

func (s *BootstrapService) adminPassword(ctx context.Context, cfg config.BootstrapConfig) (string, error) {
	if cfg.AdminPasswordSecretID != "" {
		if s.secrets == nil {
			return "", errors.New("admin password secret configured without a secret reader")
		}
		return s.secrets.GetSecretValue(ctx, cfg.AdminPasswordSecretID)
	}
	if cfg.AdminPassword == "" {
		return "", utils.NewValidationError("adminPassword", "must not be blank")
	}
	return cfg.AdminPassword, nil
}

// SeedDevData loads the instrument catalog and a fixed set of holders with
// addresses and roles. Holders that already exist keep their password.
func (s *BootstrapService) SeedDevData(ctx context.Context) error {
	for _, i := range devInstruments {
		existing, err := s.instruments.store.Instruments.GetByTicker(ctx, i.Ticker, nil)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if _, err := s.instruments.CreateOrUpdateInstrument(ctx, i); err != nil {
			return err
		}
	}

	hash, err := utils.HashPassword(devPassword)
	if err != nil {
		return err
	}

	for _, d := range devHolders {
		holder := models.Holder{Email: d.email, FirstName: d.firstName, LastName: d.lastName, PasswordHash: hash}
		if _, err := s.holders.Register(ctx, holder); err != nil && !utils.IsConflict(err) {
			return err
		}

		address := models.Address{Street: d.street, State: d.state, Zipcode: d.zipcode}
		if _, err := s.holders.AttachOrUpdateAddress(ctx, d.email, address); err != nil {
			return err
		}
		if err := s.holders.GrantRole(ctx, d.email, d.role); err != nil {
			return err
		}
	}

	utils.LoggerFromContext(ctx).WithField("holders", len(devHolders)).Info("dev data seeded")
	return nil
}
