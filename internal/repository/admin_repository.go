package repository

import (
	"context"
	"time"

	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/persistence"
)

// AdminRepository handles persistence for admin accounts.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.AdminAccount) error
	Update(ctx context.Context, id string, patch AdminPatch) error
	GetByID(ctx context.Context, id string) (*domain.AdminAccount, error)
	FindByUsername(ctx context.Context, username string) ([]domain.AdminAccount, error)
	FindByEmail(ctx context.Context, email string) ([]domain.AdminAccount, error)
	List(ctx context.Context) ([]domain.AdminAccount, error)
	ListPending(ctx context.Context) ([]domain.AdminAccount, error)
}

// AdminPatch lists the admin fields an update may touch. Nil fields are left unchanged.
type AdminPatch struct {
	Name                *string             `json:"name,omitempty"`
	Role                *domain.AdminRole   `json:"role,omitempty"`
	PasswordHash        *string             `json:"passwordHash,omitempty"`
	LegacyPassword      *string             `json:"password,omitempty"`
	IsActive            *bool               `json:"isActive,omitempty"`
	IsAuthorized        *bool               `json:"isAuthorized,omitempty"`
	Status              *domain.AdminStatus `json:"status,omitempty"`
	LoginCount          *int                `json:"loginCount,omitempty"`
	LastLogin           *time.Time          `json:"lastLogin,omitempty"`
	PasswordLastChanged *time.Time          `json:"passwordLastChanged,omitempty"`
	UpdatedAt           *time.Time          `json:"updatedAt,omitempty"`
	AuthorizedAt        *time.Time          `json:"authorizedAt,omitempty"`
	AuthorizedBy        *string             `json:"authorizedBy,omitempty"`
	RevokedAt           *time.Time          `json:"revokedAt,omitempty"`
	RevokedBy           *string             `json:"revokedBy,omitempty"`
	DeactivatedAt       *time.Time          `json:"deactivatedAt,omitempty"`
}

type adminRepository struct {
	store persistence.DocumentStore
}

// NewAdminRepository returns a document-backed implementation.
func NewAdminRepository(store persistence.DocumentStore) AdminRepository {
	return &adminRepository{store: store}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.AdminAccount) error {
	doc, err := encode(admin)
	if err != nil {
		return err
	}
	id, err := r.store.Create(ctx, persistence.CollectionAdmins, doc)
	if err != nil {
		return err
	}
	admin.ID = id
	return nil
}

func (r *adminRepository) Update(ctx context.Context, id string, patch AdminPatch) error {
	fields, err := encode(patch)
	if err != nil {
		return err
	}
	return r.store.Update(ctx, persistence.CollectionAdmins, id, fields)
}

func (r *adminRepository) GetByID(ctx context.Context, id string) (*domain.AdminAccount, error) {
	doc, err := r.store.Get(ctx, persistence.CollectionAdmins, id)
	if err != nil {
		return nil, err
	}
	var admin domain.AdminAccount
	if err := decode(doc, &admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) FindByUsername(ctx context.Context, username string) ([]domain.AdminAccount, error) {
	return r.find(ctx, map[string]any{"username": username})
}

func (r *adminRepository) FindByEmail(ctx context.Context, email string) ([]domain.AdminAccount, error) {
	return r.find(ctx, map[string]any{"email": email})
}

func (r *adminRepository) List(ctx context.Context) ([]domain.AdminAccount, error) {
	docs, err := r.store.FindAll(ctx, persistence.CollectionAdmins)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.AdminAccount](docs)
}

func (r *adminRepository) ListPending(ctx context.Context) ([]domain.AdminAccount, error) {
	return r.find(ctx, map[string]any{"status": string(domain.AdminStatusPendingAuthorization)})
}

func (r *adminRepository) find(ctx context.Context, where map[string]any) ([]domain.AdminAccount, error) {
	docs, err := r.store.Find(ctx, persistence.CollectionAdmins, persistence.Query{Where: where})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.AdminAccount](docs)
}
