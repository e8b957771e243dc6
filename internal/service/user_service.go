package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/crestline-labs/backoffice/internal/audit"
	"github.com/crestline-labs/backoffice/internal/metrics"
	"github.com/crestline-labs/backoffice/internal/models"
	"github.com/crestline-labs/backoffice/internal/repository"
	"github.com/crestline-labs/backoffice/pkg/dynquery"
)

type UserService struct {
	repo     repository.Repository
	auditLog *audit.Logger
}

func NewUserService(repo repository.Repository, auditLog *audit.Logger) *UserService {
	return &UserService{repo: repo, auditLog: auditLog}
}

func (s *UserService) List(ctx context.Context, pageIndex, pageSize int) (*dynquery.PaginatedResponse[models.User], error) {
	return s.repo.ListUsers(ctx, pageIndex, pageSize)
}

func (s *UserService) ListDynamic(ctx context.Context, q dynquery.DynamicQuery) (*dynquery.PaginatedResponse[models.User], error) {
	metrics.DynamicQueriesTotal.WithLabelValues("users").Inc()
	return s.repo.ListUsersDynamic(ctx, q)
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func validateCreateUser(req *models.CreateUserRequest) error {
	verr := newValidationError()
	if req.Email == "" {
		verr.add("email", "email is required")
	} else if !strings.Contains(req.Email, "@") {
		verr.add("email", "email is invalid")
	}
	if req.FirstName == "" {
		verr.add("firstName", "first name is required")
	}
	if req.LastName == "" {
		verr.add("lastName", "last name is required")
	}
	if len(req.Password) < 8 {
		verr.add("password", "password must be at least 8 characters")
	}
	return verr.orNil()
}

func (s *UserService) Create(ctx context.Context, req *models.CreateUserRequest, actor string) (*models.User, error) {
	if err := validateCreateUser(req); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var roles []models.Role
	if len(req.RoleIDs) > 0 {
		for _, roleID := range req.RoleIDs {
			role, err := s.repo.GetRoleByID(ctx, roleID)
			if err != nil {
				return nil, err
			}
			roles = append(roles, *role)
		}
	} else {
		all, err := s.repo.ListRoles(ctx)
		if err != nil {
			return nil, err
		}
		for _, role := range all {
			if role.IsDefault {
				roles = append(roles, role)
			}
		}
	}

	userID, _ := uuid.NewV7()
	now := time.Now()
	user := &models.User{
		ID:           userID.String(),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hashedPassword),
		Roles:        roles,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if err == repository.ErrUserExists {
			verr := newValidationError()
			verr.add("email", "email is already in use")
			return nil, verr
		}
		return nil, err
	}

	s.auditLog.Record(ctx, actor, models.ActionCreate, models.EntityUser, user.ID,
		fmt.Sprintf("created user %s", user.Email))
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, req *models.UpdateUserRequest, actor string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != "" {
		if !strings.Contains(req.Email, "@") {
			verr := newValidationError()
			verr.add("email", "email is invalid")
			return nil, verr
		}
		user.Email = req.Email
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	user.UpdatedAt = time.Now()

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.auditLog.Record(ctx, actor, models.ActionUpdate, models.EntityUser, user.ID,
		fmt.Sprintf("updated user %s", user.Email))
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id, actor string) error {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.auditLog.Record(ctx, actor, models.ActionDelete, models.EntityUser, id,
		fmt.Sprintf("deleted user %s", user.Email))
	return nil
}

// PatchRoles adds or removes one role assignment.
func (s *UserService) PatchRoles(ctx context.Context, id string, req *models.PatchUserRolesRequest, actor string) (*models.User, error) {
	switch req.Operation {
	case models.RoleOpAdd:
		if err := s.repo.AddUserRole(ctx, id, req.RoleID); err != nil {
			return nil, err
		}
	case models.RoleOpRemove:
		if err := s.repo.RemoveUserRole(ctx, id, req.RoleID); err != nil {
			return nil, err
		}
	default:
		verr := newValidationError()
		verr.add("operation", "operation must be Add or Remove")
		return nil, verr
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditLog.Record(ctx, actor, models.ActionUpdate, models.EntityUser, id,
		fmt.Sprintf("%s role %s", strings.ToLower(req.Operation), req.RoleID))
	return user, nil
}

func (s *UserService) Roles(ctx context.Context) ([]models.Role, error) {
	return s.repo.ListRoles(ctx)
}

func (s *UserService) Permissions(ctx context.Context) ([]models.Permission, error) {
	return s.repo.ListPermissions(ctx)
}
