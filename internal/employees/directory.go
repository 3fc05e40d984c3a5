package employees

import (
	"context"

	"github.com/google/uuid"

	pkgerrors "github.com/fieldhr/fieldhr-backend/pkg/errors"
)

// Directory resolves the employee profile behind an authenticated user.
type Directory interface {
	EmployeeIDForUser(ctx context.Context, companyID, userID uuid.UUID) (uuid.UUID, error)
}

type directory struct {
	repo Repository
}

// NewDirectory wires a Directory on top of the employee repository.
func NewDirectory(repo Repository) (Directory, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "employee repository required")
	}
	return &directory{repo: repo}, nil
}

func (d *directory) EmployeeIDForUser(ctx context.Context, companyID, userID uuid.UUID) (uuid.UUID, error) {
	if companyID == uuid.Nil || userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "company and user ids required")
	}
	employee, err := d.repo.FindByUser(ctx, companyID, userID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup employee profile")
	}
	if employee == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "no employee profile linked to your account")
	}
	return employee.ID, nil
}
