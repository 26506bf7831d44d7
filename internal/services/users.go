package services

import (
	"context"
	"errors"

	"github.com/routegenius/logistics-backend/internal/apperr"
	"github.com/routegenius/logistics-backend/internal/models"
	"gorm.io/gorm"
)

// UserService is the account directory: registration, lookup for login,
// profile updates and admin user management.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// UserUpdate carries the mutable account fields. Nil fields are left
// unchanged. Role is applied only when present; the boundary layer is
// responsible for allowing it on admin calls only.
type UserUpdate struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Password  string
	Role      *models.Role
}

func (s *UserService) exists(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

// Register creates a self-service account. The role is always USER.
func (s *UserService) Register(ctx context.Context, user *models.User) (*models.User, error) {
	taken, err := s.exists(ctx, user.Username, user.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.BadRequest("User with this email or username already exists.")
	}

	user.Role = models.RoleUser
	if err := user.HashPassword(); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.BadRequest("User with this email or username already exists.")
		}
		return nil, err
	}
	return user, nil
}

// CreateByAdmin creates an account with a caller-supplied role.
func (s *UserService) CreateByAdmin(ctx context.Context, user *models.User, role models.Role) (*models.User, error) {
	taken, err := s.exists(ctx, user.Username, user.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.BadRequest("User with this email or username already exists.")
	}

	user.Role = role
	if err := user.HashPassword(); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.BadRequest("User with this email or username already exists.")
		}
		return nil, err
	}
	return user, nil
}

// FindByIdentifier looks an account up by username or email. Used for login.
func (s *UserService) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found: %s", identifier)
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User not found with ID: %d", id)
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update overwrites the supplied mutable fields. A new credential is hashed
// only when non-empty.
func (s *UserService) Update(ctx context.Context, id uint, patch UserUpdate) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Password != "" {
		user.Password = patch.Password
		if err := user.HashPassword(); err != nil {
			return nil, err
		}
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.BadRequest("User with this email or username already exists.")
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("User not found with ID: %d", id)
	}
	return nil
}
