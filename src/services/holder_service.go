package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"investmentapp/src/models"
	"investmentapp/src/repositories"
	"investmentapp/src/utils"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

type HolderServiceI interface {
	CreateOrUpdateHolder(ctx context.Context, holder models.Holder) (*models.Holder, error)
	UpdateNames(ctx context.Context, email, firstName, lastName string) (*models.Holder, error)
	Register(ctx context.Context, holder models.Holder) (*models.Holder, error)
	Authenticate(ctx context.Context, email, password string) (*models.Holder, error)
	AttachOrUpdateAddress(ctx context.Context, email string, address models.Address) (*models.Holder, error)
	GetProfile(ctx context.Context, email string) (*models.Holder, *models.Address, error)
	GrantRole(ctx context.Context, email, role string) error
	HasRole(ctx context.Context, email, role string) (bool, error)
}

type HolderService struct {
	store    *repositories.Store
	resolver *IdentityResolver
	cache    PortfolioCache

	conflictBackoff time.Duration
}

func NewHolderService(store *repositories.Store, cache PortfolioCache) *HolderService {
	if cache == nil {
		cache = NoopPortfolioCache()
	}
	return &HolderService{
		store:           store,
		resolver:        NewIdentityResolver(store),
		cache:           cache,
		conflictBackoff: defaultConflictBackoff,
	}
}

func validateHolder(holder models.Holder) error {
	if err := utils.ValidateEmail(holder.Email); err != nil {
		return err
	}
	if err := utils.ValidateName("firstName", holder.FirstName); err != nil {
		return err
	}
	return utils.ValidateName("lastName", holder.LastName)
}

// CreateOrUpdateHolder upserts by email. An existing holder gets its names
// and email overwritten; a new one is stored together with its ROLE_USER
// grant.
func (s *HolderService) CreateOrUpdateHolder(ctx context.Context, holder models.Holder) (*models.Holder, error) {
	if err := validateHolder(holder); err != nil {
		return nil, err
	}
	holder.Email = strings.TrimSpace(holder.Email)
	logger := utils.LoggerFromContext(ctx).WithField("email", holder.Email)

	var result *models.Holder
	err := retryOnConflict(ctx, s.conflictBackoff, func(ctx context.Context) error {
		return s.store.Transactor.WithTx(ctx, func(tx pgx.Tx) error {
			existing, err := s.store.Holders.GetByEmail(ctx, holder.Email, tx)
			if err != nil {
				return err
			}
			if existing != nil {
				existing.FirstName = holder.FirstName
				existing.LastName = holder.LastName
				existing.Email = holder.Email
				if err := s.store.Holders.Update(ctx, existing, tx); err != nil {
					return err
				}
				logger.Warn("holder already exists, updated")
				result = existing
				return nil
			}

			created, err := s.createWithRole(ctx, holder, tx)
			if err != nil {
				return err
			}
			logger.Debug("holder created")
			result = created
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, result.Email)
	return result, nil
}

// UpdateNames edits an existing holder's names. Unlike CreateOrUpdateHolder
// it never creates: an unknown email is a NotFoundError.
func (s *HolderService) UpdateNames(ctx context.Context, email, firstName, lastName string) (*models.Holder, error) {
	if err := utils.ValidateName("firstName", firstName); err != nil {
		return nil, err
	}
	if err := utils.ValidateName("lastName", lastName); err != nil {
		return nil, err
	}

	var result *models.Holder
	err := s.store.Transactor.WithTx(ctx, func(tx pgx.Tx) error {
		holder, err := s.resolver.ResolveHolderByEmail(ctx, email, tx)
		if err != nil {
			return err
		}
		holder.FirstName = firstName
		holder.LastName = lastName
		if err := s.store.Holders.Update(ctx, holder, tx); err != nil {
			return err
		}
		result = holder
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Register creates a holder and fails with ConflictError when the email is
// already taken. PasswordHash must already be hashed.
func (s *HolderService) Register(ctx context.Context, holder models.Holder) (*models.Holder, error) {
	if err := validateHolder(holder); err != nil {
		return nil, err
	}
	if err := utils.RequireNotBlank("password", holder.PasswordHash); err != nil {
		return nil, err
	}
	holder.Email = strings.TrimSpace(holder.Email)

	var result *models.Holder
	err := s.store.Transactor.WithTx(ctx, func(tx pgx.Tx) error {
		existing, err := s.store.Holders.GetByEmail(ctx, holder.Email, tx)
		if err != nil {
			return err
		}
		if existing != nil {
			return &utils.ConflictError{Kind: utils.KindHolder, Key: utils.NormalizeEmail(holder.Email)}
		}
		result, err = s.createWithRole(ctx, holder, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// createWithRole stores the holder and its default grant in the caller's
// transaction and checks that the holder ends up with at least one role.
func (s *HolderService) createWithRole(ctx context.Context, holder models.Holder, tx pgx.Tx) (*models.Holder, error) {
	holder.ID = 0
	holder.AddressID = nil
	if err := s.store.Holders.Create(ctx, &holder, tx); err != nil {
		return nil, err
	}

	grant := &models.RoleGrant{Email: holder.Email, Role: models.RoleUser}
	if err := s.store.Roles.Grant(ctx, grant, tx); err != nil {
		return nil, err
	}

	grants, err := s.store.Roles.GetByEmail(ctx, holder.Email, tx)
	if err != nil {
		return nil, err
	}
	if len(grants) == 0 {
		return nil, fmt.Errorf("holder %s was created without a role grant", holder.Email)
	}
	return &holder, nil
}

// Authenticate checks a raw password against the stored hash.
func (s *HolderService) Authenticate(ctx context.Context, email, password string) (*models.Holder, error) {
	holder, err := s.resolver.ResolveHolderByEmail(ctx, email, nil)
	if err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if holder.PasswordHash == "" || !utils.CheckPassword(holder.PasswordHash, password) {
		return nil, utils.Unauthorized("invalid credentials")
	}
	return holder, nil
}

func validateAddress(address models.Address) error {
	if err := utils.RequireNotBlank("street", address.Street); err != nil {
		return err
	}
	if err := utils.RequireNotBlank("state", address.State); err != nil {
		return err
	}
	return utils.ValidateZipcode(address.Zipcode)
}

// AttachOrUpdateAddress keeps at most one address per holder. The holder's
// current address is updated in place whether or not the caller sent its
// id; an id naming someone else's address is rejected.
func (s *HolderService) AttachOrUpdateAddress(ctx context.Context, email string, address models.Address) (*models.Holder, error) {
	if err := validateAddress(address); err != nil {
		return nil, err
	}
	logger := utils.LoggerFromContext(ctx).WithField("email", email)

	var result *models.Holder
	err := s.store.Transactor.WithTx(ctx, func(tx pgx.Tx) error {
		holder, err := s.resolver.ResolveHolderByEmail(ctx, email, tx)
		if err != nil {
			return err
		}

		ownID := 0
		if holder.AddressID != nil {
			ownID = *holder.AddressID
		}

		if address.ID != 0 && address.ID != ownID {
			other, err := s.store.Addresses.GetByID(ctx, address.ID, tx)
			if err != nil {
				return err
			}
			if other != nil {
				return utils.NewValidationError("address.id", "belongs to another holder")
			}
		}
		address.ID = ownID

		if address.ID != 0 {
			existing, err := s.store.Addresses.GetByID(ctx, address.ID, tx)
			if err != nil {
				return err
			}
			if existing != nil {
				if err := s.store.Addresses.Update(ctx, &address, tx); err != nil {
					return err
				}
				logger.WithField("addressId", address.ID).Warn("address already exists, updated")
				result = holder
				return nil
			}
		}

		address.ID = 0
		if err := s.store.Addresses.Create(ctx, &address, tx); err != nil {
			return err
		}
		if err := s.store.Holders.SetAddress(ctx, holder.ID, address.ID, tx); err != nil {
			return err
		}
		id := address.ID
		holder.AddressID = &id
		logger.WithField("addressId", address.ID).Debug("address attached")
		result = holder
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetProfile returns the holder and its address, if any.
func (s *HolderService) GetProfile(ctx context.Context, email string) (*models.Holder, *models.Address, error) {
	holder, err := s.resolver.ResolveHolderByEmail(ctx, email, nil)
	if err != nil {
		return nil, nil, err
	}
	if holder.AddressID == nil {
		return holder, nil, nil
	}
	address, err := s.store.Addresses.GetByID(ctx, *holder.AddressID, nil)
	if err != nil {
		return nil, nil, err
	}
	return holder, address, nil
}

// GrantRole is idempotent.
func (s *HolderService) GrantRole(ctx context.Context, email, role string) error {
	if err := utils.RequireNotBlank("role", role); err != nil {
		return err
	}
	return s.store.Transactor.WithTx(ctx, func(tx pgx.Tx) error {
		holder, err := s.resolver.ResolveHolderByEmail(ctx, email, tx)
		if err != nil {
			return err
		}
		grant := &models.RoleGrant{Email: holder.Email, Role: role}
		if err := s.store.Roles.Grant(ctx, grant, tx); err != nil {
			return err
		}
		utils.LoggerFromContext(ctx).WithFields(logrus.Fields{"email": holder.Email, "role": role}).Debug("role granted")
		return nil
	})
}

func (s *HolderService) HasRole(ctx context.Context, email, role string) (bool, error) {
	grants, err := s.store.Roles.GetByEmail(ctx, utils.NormalizeEmail(email), nil)
	if err != nil {
		return false, err
	}
	for _, g := range grants {
		if strings.EqualFold(g.Role, role) {
			return true, nil
		}
	}
	return false, nil
}
